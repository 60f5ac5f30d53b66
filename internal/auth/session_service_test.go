package auth

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hirewire/hirewire/internal/cache"
	"github.com/hirewire/hirewire/internal/database"
	"github.com/hirewire/hirewire/internal/models"
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

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	email := fmt.Sprintf("%s@example.com", strings.ToLower(strings.ReplaceAll(t.Name(), "/", "-")))
	user := &models.User{
		Email:    &email,
		Password: "hashed",
		Status:   models.StatusApplicant,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newTestSessionService(t *testing.T, db *gorm.DB, cfg SessionConfig) *SessionService {
	t.Helper()

	jwtService, err := NewJWTService(JWTConfig{Secret: "test-secret", Issuer: "hirewire-test"})
	require.NoError(t, err)

	svc, err := NewSessionService(db, jwtService, cfg)
	require.NoError(t, err)
	return svc
}

func TestCreateSession(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newTestSessionService(t, db, SessionConfig{})

	pair, session, err := svc.CreateSession(user.ID, SessionMetadata{
		IPAddress: "203.0.113.9",
		UserAgent: "test-agent",
	})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, user.ID, session.UserID)
	require.Equal(t, "203.0.113.9", session.IPAddress)
	require.Nil(t, session.RevokedAt)
	require.True(t, session.ExpiresAt.After(time.Now()))
}

func TestRefreshSessionRotatesToken(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newTestSessionService(t, db, SessionConfig{})

	pair, session, err := svc.CreateSession(user.ID, SessionMetadata{})
	require.NoError(t, err)

	newPair, refreshed, err := svc.RefreshSession(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, session.ID, refreshed.ID)
	require.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

	// The old refresh token no longer resolves.
	_, _, err = svc.RefreshSession(pair.RefreshToken)
	require.ErrorIs(t, err, ErrSessionNotFound)

	// The rotated token keeps working.
	_, _, err = svc.RefreshSession(newPair.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshSessionExpired(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)

	current := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestSessionService(t, db, SessionConfig{
		RefreshTokenTTL: time.Hour,
		Clock:           func() time.Time { return current },
	})

	pair, _, err := svc.CreateSession(user.ID, SessionMetadata{})
	require.NoError(t, err)

	current = current.Add(2 * time.Hour)
	_, _, err = svc.RefreshSession(pair.RefreshToken)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestRevokeByRefreshToken(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newTestSessionService(t, db, SessionConfig{})

	pair, _, err := svc.CreateSession(user.ID, SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeByRefreshToken(pair.RefreshToken))

	// Revoked sessions cannot refresh and cannot be revoked twice.
	_, _, err = svc.RefreshSession(pair.RefreshToken)
	require.ErrorIs(t, err, ErrSessionRevoked)
	require.ErrorIs(t, svc.RevokeByRefreshToken(pair.RefreshToken), ErrSessionNotFound)
}

func TestRevokeUnknownToken(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(t, db, SessionConfig{})

	require.ErrorIs(t, svc.RevokeByRefreshToken("no-such-token"), ErrSessionNotFound)
	require.ErrorIs(t, svc.RevokeByRefreshToken("   "), ErrSessionInvalidToken)
}

func TestSessionCacheRoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)

	store := cache.NewMemoryStore()
	svc := newTestSessionService(t, db, SessionConfig{Cache: NewStoreSessionCache(store)})

	pair, _, err := svc.CreateSession(user.ID, SessionMetadata{})
	require.NoError(t, err)

	// Refresh still resolves and rotates when a cache sits in front of the DB.
	newPair, _, err := svc.RefreshSession(pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

	_, _, err = svc.RefreshSession(pair.RefreshToken)
	require.ErrorIs(t, err, ErrSessionNotFound)
}
