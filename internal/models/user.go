package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account status values. Employers carry a company name, applicants never do.
const (
	StatusApplicant = "APPLICANT"
	StatusEmployer  = "EMPLOYER"
)

// Gender values accepted on profiles.
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
)

// User is a registered account. Either Email or Phone must be set; both are
// unique when present and immutable once stored.
type User struct {
	ID       string  `gorm:"primaryKey;type:uuid" json:"id"`
	Email    *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone    *string `gorm:"uniqueIndex" json:"phone,omitempty"`
	Password string  `gorm:"not null" json:"-"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	Status      string     `gorm:"size:9;default:APPLICANT;not null" json:"status"`
	CompanyName string     `json:"company_name,omitempty"`
	Gender      *string    `gorm:"size:6" json:"gender,omitempty"`
	BirthDay    *time.Time `json:"birth_day,omitempty"`
	Avatar      string     `json:"avatar,omitempty"`

	IsActive bool `gorm:"default:false" json:"is_active"`
	IsAdmin  bool `gorm:"default:false" json:"-"`

	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	PhoneVerifiedAt *time.Time `json:"phone_verified_at,omitempty"`

	Sessions []Session `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// ContactEmail returns the email value or an empty string.
func (u *User) ContactEmail() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// ContactPhone returns the phone value or an empty string.
func (u *User) ContactPhone() string {
	if u.Phone == nil {
		return ""
	}
	return *u.Phone
}
