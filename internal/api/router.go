package api

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hirewire/hirewire/internal/auth"
	"github.com/hirewire/hirewire/internal/cache"
	"github.com/hirewire/hirewire/internal/handlers"
	"github.com/hirewire/hirewire/internal/middleware"
)

// RouterConfig bundles the dependencies required to build the HTTP router.
type RouterConfig struct {
	Accounts *handlers.AccountHandler
	Sessions *handlers.SessionHandler
	Profile  *handlers.ProfileHandler
	JWT      *auth.JWTService

	// Cache drives the per-IP request limiter. Nil disables it.
	Cache            cache.Store
	RateLimitMax     int
	RateLimitWindow  time.Duration
	TrustedPlatform  string
	EnableRequestLog bool
}

// NewRouter assembles the gin engine with middleware and routes.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if cfg.Accounts == nil {
		return nil, errors.New("router: account handler is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("router: session handler is required")
	}
	if cfg.Profile == nil {
		return nil, errors.New("router: profile handler is required")
	}
	if cfg.JWT == nil {
		return nil, errors.New("router: jwt service is required")
	}

	router := gin.New()
	if cfg.TrustedPlatform != "" {
		router.TrustedPlatform = cfg.TrustedPlatform
	}

	router.Use(middleware.Recovery())
	if cfg.EnableRequestLog {
		router.Use(middleware.Logger())
	}
	router.Use(middleware.Metrics())

	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	if cfg.Cache != nil && cfg.RateLimitMax > 0 {
		api.Use(middleware.RateLimit(cfg.Cache, cfg.RateLimitMax, cfg.RateLimitWindow))
	}

	api.POST("/send-code", cfg.Accounts.SendCode)
	api.POST("/register", cfg.Accounts.Register)
	api.POST("/login/password", cfg.Accounts.LoginPassword)
	api.POST("/login/code", cfg.Accounts.LoginCode)
	api.POST("/password-reset", cfg.Accounts.PasswordReset)
	api.POST("/auth/refresh", cfg.Sessions.Refresh)

	authed := api.Group("")
	authed.Use(middleware.Auth(cfg.JWT))
	authed.POST("/logout", cfg.Sessions.Logout)
	authed.GET("/profile", cfg.Profile.Get)
	authed.PATCH("/profile", cfg.Profile.Patch)

	router.NoRoute(middleware.NotFoundHandler)

	return router, nil
}
