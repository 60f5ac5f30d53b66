package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by flow (password|code) and result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hirewire_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"flow", "result"},
	)

	// CodesIssued counts issued verification codes by delivery kind (email|phone).
	CodesIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hirewire_verification_codes_issued_total",
			Help: "Total number of verification codes issued",
		},
		[]string{"kind"},
	)

	// CodesRateLimited counts send-code requests rejected by the resend throttle.
	CodesRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hirewire_verification_codes_rate_limited_total",
			Help: "Total number of rate limited code requests",
		},
	)

	// ActiveSessions tracks active sessions (not expired/revoked).
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hirewire_active_sessions",
			Help: "Number of active sessions",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hirewire_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
