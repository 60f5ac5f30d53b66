package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hirewire/hirewire/internal/models"
	"github.com/hirewire/hirewire/internal/notify"
	"github.com/hirewire/hirewire/pkg/crypto"
	"github.com/hirewire/hirewire/pkg/logger"
	"github.com/hirewire/hirewire/pkg/metrics"
)

const (
	// DefaultCodeTTL is the logical lifetime of an issued code.
	DefaultCodeTTL = 10 * time.Minute

	codeDigits = 6
)

// IssuerOption customises the Issuer.
type IssuerOption func(*Issuer)

// WithCodeTTL overrides the code lifetime.
func WithCodeTTL(d time.Duration) IssuerOption {
	return func(i *Issuer) {
		if d > 0 {
			i.ttl = d
		}
	}
}

// WithIssuerClock injects a custom time source.
func WithIssuerClock(clock func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if clock != nil {
			i.now = clock
		}
	}
}

// WithGenerator replaces the random code generator, mainly for tests.
func WithGenerator(generate func() (string, error)) IssuerOption {
	return func(i *Issuer) {
		if generate != nil {
			i.generate = generate
		}
	}
}

// Issuer orchestrates the issue path: throttle check, code generation,
// persistence and delivery.
type Issuer struct {
	codes    *CodeStore
	limiter  *ResendLimiter
	email    notify.EmailSender
	sms      notify.SMSSender
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
	log      *zap.Logger
}

// NewIssuer constructs an Issuer with the provided collaborators.
func NewIssuer(codes *CodeStore, limiter *ResendLimiter, email notify.EmailSender, sms notify.SMSSender, opts ...IssuerOption) (*Issuer, error) {
	if codes == nil {
		return nil, errors.New("issuer: code store is required")
	}
	if limiter == nil {
		return nil, errors.New("issuer: resend limiter is required")
	}

	issuer := &Issuer{
		codes:   codes,
		limiter: limiter,
		email:   email,
		sms:     sms,
		ttl:     DefaultCodeTTL,
		now:     time.Now,
		generate: func() (string, error) {
			return crypto.GenerateNumericCode(codeDigits)
		},
		log: logger.WithModule("verification"),
	}

	for _, opt := range opts {
		opt(issuer)
	}

	return issuer, nil
}

// Issue generates, stores and delivers a code for the destination.
// Email delivery failures are fatal to the operation; SMS failures are
// logged and swallowed so the stored code stays usable.
func (i *Issuer) Issue(ctx context.Context, destination, kind string) (*models.VerificationCode, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, errors.New("issuer: destination is required")
	}
	if kind != models.CodeKindEmail && kind != models.CodeKindPhone {
		return nil, fmt.Errorf("issuer: unknown code kind %q", kind)
	}

	allowed, err := i.limiter.Allow(ctx, destination)
	if err != nil {
		return nil, err
	}
	if !allowed {
		metrics.CodesRateLimited.Inc()
		return nil, ErrRateLimited
	}

	code, err := i.generate()
	if err != nil {
		return nil, fmt.Errorf("issuer: generate code: %w", err)
	}

	now := i.now()
	record := &models.VerificationCode{
		Code:        code,
		Destination: destination,
		Kind:        kind,
		ExpiresAt:   now.Add(i.ttl),
	}

	if err := i.codes.Create(ctx, record); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Your verification code is %s", code)

	switch kind {
	case models.CodeKindEmail:
		if i.email == nil {
			return nil, errors.New("issuer: email sender not configured")
		}
		if err := i.email.SendEmail(ctx, destination, "Your verification code", message); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
		}
	case models.CodeKindPhone:
		if i.sms == nil {
			return nil, errors.New("issuer: sms sender not configured")
		}
		if err := i.sms.SendSMS(ctx, destination, message); err != nil {
			i.log.Warn("sms delivery failed",
				zap.String("destination", destination),
				zap.Error(err),
			)
		}
	}

	metrics.CodesIssued.WithLabelValues(strings.ToLower(kind)).Inc()
	return record, nil
}
