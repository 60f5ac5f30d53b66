package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hirewire/hirewire/internal/database"
	"github.com/hirewire/hirewire/internal/models"
	"github.com/hirewire/hirewire/internal/verification"
	appErrors "github.com/hirewire/hirewire/pkg/errors"
)

type accountFixture struct {
	db       *gorm.DB
	codes    *verification.CodeStore
	accounts *AccountService
	clock    *time.Time
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1",
		strings.ReplaceAll(t.Name(), "/", "_"))

	db, err := database.Open(database.Config{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	current := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	clock := &current

	codes, err := verification.NewCodeStore(db)
	require.NoError(t, err)

	gate, err := verification.NewGate(codes,
		verification.WithGateClock(func() time.Time { return *clock }),
	)
	require.NoError(t, err)

	accounts, err := NewAccountService(db, gate,
		WithAccountClock(func() time.Time { return *clock }),
	)
	require.NoError(t, err)

	return &accountFixture{
		db:       db,
		codes:    codes,
		accounts: accounts,
		clock:    clock,
	}
}

func (f *accountFixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func (f *accountFixture) seedCode(t *testing.T, destination, code string) *models.VerificationCode {
	t.Helper()

	kind := models.CodeKindEmail
	if !strings.Contains(destination, "@") {
		kind = models.CodeKindPhone
	}

	record := &models.VerificationCode{
		Code:        code,
		Destination: destination,
		Kind:        kind,
		ExpiresAt:   f.clock.Add(10 * time.Minute),
	}
	require.NoError(t, f.codes.Create(context.Background(), record))
	return record
}

func (f *accountFixture) register(t *testing.T, email, phone, password string) *models.User {
	t.Helper()

	destination := email
	if destination == "" {
		destination = phone
	}
	f.seedCode(t, destination, "123456")

	user, err := f.accounts.Register(context.Background(), RegisterInput{
		Email:    email,
		Phone:    phone,
		Password: password,
		Status:   models.StatusApplicant,
		Code:     "123456",
	})
	require.NoError(t, err)
	return user
}

func requireBadRequest(t *testing.T, err error, message string) {
	t.Helper()

	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrBadRequest.Code, appErr.Code)
	require.Equal(t, message, appErr.Message)
}
