package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hirewire/hirewire/internal/cache"
)

const (
	// DefaultResendWindow is the minimum interval between two codes to the same destination.
	DefaultResendWindow = 60 * time.Second
	// DefaultRetention is how long the last-sent timestamp is kept in the cache.
	// It is deliberately longer than the resend window; once the cache entry
	// lapses the destination silently resets, which is accepted drift.
	DefaultRetention = 600 * time.Second

	lastSentKeyPrefix = "verification:last_sent:"
)

// ResendLimiter throttles code issuance per destination. The check-and-set is
// guarded by a mutex so two concurrent Allow calls for the same destination
// cannot both pass inside one process.
type ResendLimiter struct {
	mu        sync.Mutex
	store     cache.Store
	window    time.Duration
	retention time.Duration
	now       func() time.Time
}

// LimiterOption customises the ResendLimiter.
type LimiterOption func(*ResendLimiter)

// WithResendWindow overrides the minimum interval between sends.
func WithResendWindow(d time.Duration) LimiterOption {
	return func(l *ResendLimiter) {
		if d > 0 {
			l.window = d
		}
	}
}

// WithRetention overrides the cache TTL for last-sent timestamps.
func WithRetention(d time.Duration) LimiterOption {
	return func(l *ResendLimiter) {
		if d > 0 {
			l.retention = d
		}
	}
}

// WithLimiterClock injects a custom time source.
func WithLimiterClock(clock func() time.Time) LimiterOption {
	return func(l *ResendLimiter) {
		if clock != nil {
			l.now = clock
		}
	}
}

// NewResendLimiter builds a limiter over the supplied cache store.
func NewResendLimiter(store cache.Store, opts ...LimiterOption) (*ResendLimiter, error) {
	if store == nil {
		return nil, errors.New("resend limiter: cache store is required")
	}

	limiter := &ResendLimiter{
		store:     store,
		window:    DefaultResendWindow,
		retention: DefaultRetention,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(limiter)
	}

	return limiter, nil
}

// Allow reports whether a code may be issued to the destination. When it
// allows, it always refreshes the stored timestamp with the retention TTL.
func (l *ResendLimiter) Allow(ctx context.Context, destination string) (bool, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return false, errors.New("resend limiter: destination is required")
	}

	key := lastSentKeyPrefix + destination
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	raw, found, err := l.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("resend limiter: read last sent: %w", err)
	}

	if found {
		lastSent, parseErr := time.Parse(time.RFC3339Nano, string(raw))
		if parseErr == nil && now.Sub(lastSent) < l.window {
			return false, nil
		}
	}

	if err := l.store.Set(ctx, key, []byte(now.Format(time.RFC3339Nano)), l.retention); err != nil {
		return false, fmt.Errorf("resend limiter: record send: %w", err)
	}

	return true, nil
}
