package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/hirewire/hirewire/internal/models"
)

var (
	// ErrCodeInvalid indicates no unconsumed code matches the destination/code pair.
	ErrCodeInvalid = errors.New("verification: no such code")
	// ErrCodeExpired indicates the matched code is past its logical expiry.
	ErrCodeExpired = errors.New("verification: code expired")
	// ErrRateLimited signals the destination was throttled by the resend window.
	ErrRateLimited = errors.New("verification: rate limited")
	// ErrDeliveryFailed marks a code whose email delivery did not succeed.
	ErrDeliveryFailed = errors.New("verification: delivery failed")
)

// CodeStore persists verification codes. Codes are retained forever;
// expiry is logical and consumption is a single conditional update.
type CodeStore struct {
	db *gorm.DB
}

// NewCodeStore constructs a store over the primary database.
func NewCodeStore(db *gorm.DB) (*CodeStore, error) {
	if db == nil {
		return nil, errors.New("code store: db is required")
	}
	return &CodeStore{db: db}, nil
}

// Create persists a new verification code record.
func (s *CodeStore) Create(ctx context.Context, code *models.VerificationCode) error {
	if err := s.db.WithContext(ctx).Create(code).Error; err != nil {
		return fmt.Errorf("code store: create: %w", err)
	}
	return nil
}

// FindActive looks up the single unconsumed code matching (destination, code).
// Expiry is not checked here; callers decide what an expired match means.
func (s *CodeStore) FindActive(ctx context.Context, destination, code string) (*models.VerificationCode, error) {
	destination = strings.TrimSpace(destination)
	code = strings.TrimSpace(code)

	var record models.VerificationCode
	err := s.db.WithContext(ctx).
		Where("destination = ? AND code = ? AND consumed = ?", destination, code, false).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCodeInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("code store: find: %w", err)
	}

	return &record, nil
}

// Consume marks a code as used. The conditional update guards against two
// concurrent requests both consuming the same code: zero affected rows means
// someone else got there first and the code no longer counts as valid.
func (s *CodeStore) Consume(ctx context.Context, id string) error {
	return s.consume(ctx, s.db, id)
}

// ConsumeTx is Consume inside an existing transaction, used when consumption
// must commit or roll back together with another write.
func (s *CodeStore) ConsumeTx(ctx context.Context, tx *gorm.DB, id string) error {
	return s.consume(ctx, tx, id)
}

func (s *CodeStore) consume(ctx context.Context, db *gorm.DB, id string) error {
	result := db.WithContext(ctx).
		Model(&models.VerificationCode{}).
		Where("id = ? AND consumed = ?", id, false).
		Update("consumed", true)

	if result.Error != nil {
		return fmt.Errorf("code store: consume: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCodeInvalid
	}
	return nil
}
