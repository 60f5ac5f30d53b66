package verification

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hirewire/hirewire/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
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

	return db
}

type fakeEmailSender struct {
	sent []sentMessage
	err  error
}

type sentMessage struct {
	to   string
	body string
}

func (f *fakeEmailSender) SendEmail(_ context.Context, to, _, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{to: to, body: body})
	return nil
}

type fakeSMSSender struct {
	sent []sentMessage
	err  error
}

func (f *fakeSMSSender) SendSMS(_ context.Context, to, message string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{to: to, body: message})
	return nil
}
