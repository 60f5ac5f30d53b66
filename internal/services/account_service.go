package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/hirewire/hirewire/internal/models"
	"github.com/hirewire/hirewire/internal/verification"
	"github.com/hirewire/hirewire/pkg/crypto"
	appErrors "github.com/hirewire/hirewire/pkg/errors"
)

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

// AccountOption customises the AccountService.
type AccountOption func(*AccountService)

// WithAccountClock injects a custom time source.
func WithAccountClock(clock func() time.Time) AccountOption {
	return func(s *AccountService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// AccountService implements registration, login and password-reset flows on
// top of the verification gate.
type AccountService struct {
	db   *gorm.DB
	gate *verification.Gate
	now  func() time.Time
}

// NewAccountService constructs the service with the provided dependencies.
func NewAccountService(db *gorm.DB, gate *verification.Gate, opts ...AccountOption) (*AccountService, error) {
	if db == nil {
		return nil, errors.New("account service: db is required")
	}
	if gate == nil {
		return nil, errors.New("account service: verification gate is required")
	}

	service := &AccountService{
		db:   db,
		gate: gate,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// RegisterInput captures the details required to register a new account.
type RegisterInput struct {
	Email       string
	Phone       string
	Password    string
	Status      string
	CompanyName string
	Code        string
}

// Register validates the input in order, verifies the supplied code and
// creates the account. Account creation and code consumption commit in a
// single transaction: if persistence fails the code stays unconsumed.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := normaliseEmail(input.Email)
	phone := strings.TrimSpace(input.Phone)

	if email == "" && phone == "" {
		return nil, appErrors.NewBadRequest("Provide an email address or phone number")
	}

	if email != "" {
		taken, err := s.contactExists(ctx, "email", email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, appErrors.ErrEmailTaken
		}
	}

	if phone != "" {
		taken, err := s.contactExists(ctx, "phone", phone)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, appErrors.ErrPhoneTaken
		}
	}

	status := strings.TrimSpace(input.Status)
	companyName := strings.TrimSpace(input.CompanyName)
	switch status {
	case models.StatusEmployer:
		if companyName == "" {
			return nil, appErrors.NewBadRequest("Company name is required for employers")
		}
	case models.StatusApplicant:
		if companyName != "" {
			return nil, appErrors.NewBadRequest("Applicants cannot provide a company name")
		}
	default:
		return nil, appErrors.NewBadRequest("Status must be APPLICANT or EMPLOYER")
	}

	destination := email
	if destination == "" {
		destination = phone
	}

	code, err := s.gate.Verify(ctx, destination, input.Code)
	if err != nil {
		return nil, mapVerificationError(err)
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("account service: hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		Password:    hashed,
		Status:      status,
		CompanyName: companyName,
		IsActive:    true,
	}
	if email != "" {
		user.Email = &email
		user.EmailVerifiedAt = &now
	}
	if phone != "" {
		user.Phone = &phone
		user.PhoneVerifiedAt = &now
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if isUniqueConstraintError(err) {
				if email != "" {
					return appErrors.ErrEmailTaken
				}
				return appErrors.ErrPhoneTaken
			}
			return fmt.Errorf("account service: create user: %w", err)
		}

		if err := s.gate.ConsumeTx(ctx, tx, code); err != nil {
			return mapVerificationError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// LoginWithPassword authenticates by destination and password.
// A missing account is reported distinctly; a wrong password is not.
func (s *AccountService) LoginWithPassword(ctx context.Context, email, phone, password string) (*models.User, error) {
	user, err := s.resolveAccount(ctx, email, phone)
	if err != nil {
		return nil, err
	}

	if !user.IsActive || !crypto.VerifyPassword(user.Password, password) {
		return nil, appErrors.ErrInvalidCredentials
	}

	return user, nil
}

// LoginWithCode authenticates by destination and verification code. The code
// is consumed as part of validation, before the caller mints a session.
func (s *AccountService) LoginWithCode(ctx context.Context, email, phone, code string) (*models.User, error) {
	user, err := s.resolveAccount(ctx, email, phone)
	if err != nil {
		return nil, err
	}

	if !codePattern.MatchString(strings.TrimSpace(code)) {
		return nil, appErrors.NewBadRequest("The code must be exactly 6 digits")
	}

	destination := s.destinationOf(user, email)

	record, err := s.gate.Verify(ctx, destination, code)
	if err != nil {
		return nil, mapVerificationError(err)
	}

	if err := s.gate.Consume(ctx, record); err != nil {
		return nil, mapVerificationError(err)
	}

	return user, nil
}

// ResetPassword verifies the code and replaces the account password.
// The new password must differ from the current one.
func (s *AccountService) ResetPassword(ctx context.Context, email, phone, code, newPassword string) (*models.User, error) {
	user, err := s.resolveAccount(ctx, email, phone)
	if err != nil {
		return nil, err
	}

	destination := s.destinationOf(user, email)

	record, err := s.gate.Verify(ctx, destination, code)
	if err != nil {
		return nil, mapVerificationError(err)
	}

	if crypto.VerifyPassword(user.Password, newPassword) {
		return nil, appErrors.NewBadRequest("New password must differ from the current password")
	}

	hashed, err := crypto.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("account service: hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(user).Update("password", hashed).Error; err != nil {
		return nil, fmt.Errorf("account service: update password: %w", err)
	}
	user.Password = hashed

	if err := s.gate.Consume(ctx, record); err != nil {
		return nil, mapVerificationError(err)
	}

	return user, nil
}

// GetAccount loads an account by its identifier.
func (s *AccountService) GetAccount(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Take(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("account service: find user: %w", err)
	}
	return &user, nil
}

// resolveAccount finds the account for the given contact details.
// Email takes precedence over phone when both are present.
func (s *AccountService) resolveAccount(ctx context.Context, email, phone string) (*models.User, error) {
	email = normaliseEmail(email)
	phone = strings.TrimSpace(phone)

	if email == "" && phone == "" {
		return nil, appErrors.NewBadRequest("Provide an email address or phone number")
	}

	var user models.User
	var err error
	if email != "" {
		err = s.db.WithContext(ctx).Take(&user, "email = ?", email).Error
	} else {
		err = s.db.WithContext(ctx).Take(&user, "phone = ?", phone).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("account service: find user: %w", err)
	}

	return &user, nil
}

func (s *AccountService) contactExists(ctx context.Context, column, value string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where(column+" = ?", value).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("account service: check %s: %w", column, err)
	}
	return count > 0, nil
}

// destinationOf mirrors the login resolution rule for verification lookups:
// the email destination when the caller supplied one, otherwise the phone.
func (s *AccountService) destinationOf(user *models.User, email string) string {
	if normaliseEmail(email) != "" {
		return user.ContactEmail()
	}
	return user.ContactPhone()
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func mapVerificationError(err error) error {
	switch {
	case errors.Is(err, verification.ErrCodeInvalid):
		return appErrors.ErrCodeInvalid
	case errors.Is(err, verification.ErrCodeExpired):
		return appErrors.ErrCodeExpired
	default:
		return err
	}
}
