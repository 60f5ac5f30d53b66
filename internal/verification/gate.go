package verification

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/hirewire/hirewire/internal/models"
)

// Gate validates supplied codes against a destination. Verify never consumes:
// callers mark the code used only after their own operation succeeds, so a
// failed downstream write leaves the code reusable.
type Gate struct {
	codes *CodeStore
	now   func() time.Time
}

// GateOption customises the Gate.
type GateOption func(*Gate)

// WithGateClock injects a custom time source.
func WithGateClock(clock func() time.Time) GateOption {
	return func(g *Gate) {
		if clock != nil {
			g.now = clock
		}
	}
}

// NewGate constructs a Gate over the code store.
func NewGate(codes *CodeStore, opts ...GateOption) (*Gate, error) {
	if codes == nil {
		return nil, errors.New("gate: code store is required")
	}

	gate := &Gate{codes: codes, now: time.Now}
	for _, opt := range opts {
		opt(gate)
	}
	return gate, nil
}

// Verify returns the matching unconsumed code or ErrCodeInvalid/ErrCodeExpired.
// An expired match is left untouched.
func (g *Gate) Verify(ctx context.Context, destination, code string) (*models.VerificationCode, error) {
	record, err := g.codes.FindActive(ctx, destination, code)
	if err != nil {
		return nil, err
	}

	if record.Expired(g.now()) {
		return nil, ErrCodeExpired
	}

	return record, nil
}

// Consume marks the code used. Safe to race: only one caller wins.
func (g *Gate) Consume(ctx context.Context, record *models.VerificationCode) error {
	if record == nil {
		return ErrCodeInvalid
	}
	return g.codes.Consume(ctx, record.ID)
}

// ConsumeTx consumes within an existing transaction.
func (g *Gate) ConsumeTx(ctx context.Context, tx *gorm.DB, record *models.VerificationCode) error {
	if record == nil {
		return ErrCodeInvalid
	}
	return g.codes.ConsumeTx(ctx, tx, record.ID)
}
