package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hirewire/hirewire/internal/cache"
	"github.com/hirewire/hirewire/pkg/errors"
	"github.com/hirewire/hirewire/pkg/response"
)

// RateLimit limits requests per (clientIP, path) within a fixed window using
// the shared cache store. This is independent of the per-destination resend
// throttle on verification codes.
func RateLimit(store cache.Store, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		key := "ratelimit:" + c.ClientIP() + "|" + c.FullPath()

		count, ttl, err := store.IncrementWithTTL(c.Request.Context(), key, window)
		if err != nil {
			// Fail open: a broken limiter should not take the API down.
			c.Next()
			return
		}

		remaining := maxRequests - int(count)
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(ttl.Seconds())))

		if int(count) > maxRequests {
			response.Error(c, errors.New("RATE_LIMIT_EXCEEDED", "Too many requests, please slow down", http.StatusTooManyRequests))
			c.Abort()
			return
		}

		c.Next()
	}
}
