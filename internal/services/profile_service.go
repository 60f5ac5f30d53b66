package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hirewire/hirewire/internal/models"
	appErrors "github.com/hirewire/hirewire/pkg/errors"
)

var earliestBirthDay = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

const minimumAgeYears = 14

// UpdateProfileInput holds the optional profile fields of a PATCH request.
// Nil pointers leave the stored value untouched.
type UpdateProfileInput struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Phone       *string
	CompanyName *string
	Gender      *string
	BirthDay    *time.Time
	Avatar      *string
}

// UpdateProfile applies a partial profile update. Contact fields are
// immutable once set and company names are reserved for employers; such
// fields are silently dropped rather than rejected.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}

	if input.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.Avatar != nil {
		updates["avatar"] = strings.TrimSpace(*input.Avatar)
	}

	if input.Email != nil && user.Email == nil {
		email := normaliseEmail(*input.Email)
		if email != "" {
			updates["email"] = email
		}
	}
	if input.Phone != nil && user.Phone == nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone != "" {
			updates["phone"] = phone
		}
	}

	if input.CompanyName != nil && user.Status == models.StatusEmployer {
		updates["company_name"] = strings.TrimSpace(*input.CompanyName)
	}

	if input.Gender != nil {
		gender := strings.TrimSpace(*input.Gender)
		if gender != models.GenderMale && gender != models.GenderFemale {
			return nil, appErrors.NewBadRequest("Gender must be MALE or FEMALE")
		}
		updates["gender"] = gender
	}

	if input.BirthDay != nil {
		if err := s.validateBirthDay(*input.BirthDay); err != nil {
			return nil, err
		}
		updates["birth_day"] = *input.BirthDay
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			if _, ok := updates["email"]; ok {
				return nil, appErrors.ErrEmailTaken
			}
			return nil, appErrors.ErrPhoneTaken
		}
		return nil, fmt.Errorf("account service: update profile: %w", err)
	}

	return s.GetAccount(ctx, userID)
}

func (s *AccountService) validateBirthDay(birthDay time.Time) error {
	now := s.now()
	if birthDay.After(now) {
		return appErrors.NewBadRequest("Birth date cannot be in the future")
	}
	if birthDay.Before(earliestBirthDay) {
		return appErrors.NewBadRequest("Birth date is too early")
	}
	if birthDay.After(now.AddDate(-minimumAgeYears, 0, 0)) {
		return appErrors.NewBadRequest("Users must be at least 14 years old")
	}
	return nil
}
