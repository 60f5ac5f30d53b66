package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Verification code delivery kinds.
const (
	CodeKindEmail = "EMAIL"
	CodeKindPhone = "PHONE"
)

// VerificationCode is a one-time 6-digit code bound to a destination
// (email address or phone number). Codes are never deleted; expiry is
// logical and consumption flips Consumed exactly once.
type VerificationCode struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Code        string    `gorm:"size:6;not null;index:idx_codes_destination" json:"-"`
	Destination string    `gorm:"size:100;not null;index:idx_codes_destination" json:"destination"`
	Kind        string    `gorm:"size:5;not null" json:"kind"`
	Consumed    bool      `gorm:"default:false" json:"consumed"`
	ExpiresAt   time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (v *VerificationCode) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// Expired reports whether the code is past its logical expiry at the given instant.
func (v *VerificationCode) Expired(now time.Time) bool {
	return v.ExpiresAt.Before(now)
}
