package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestJWTService(t *testing.T, clock func() time.Time) *JWTService {
	t.Helper()

	svc, err := NewJWTService(JWTConfig{
		Secret: "test-secret",
		Issuer: "hirewire-test",
		Clock:  clock,
	})
	require.NoError(t, err)
	return svc
}

func TestJWTGenerateAndValidate(t *testing.T) {
	svc := newTestJWTService(t, nil)

	token, err := svc.GenerateAccessToken(AccessTokenInput{
		UserID:    "user-1",
		SessionID: "session-1",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "session-1", claims.SessionID)
	require.Equal(t, "hirewire-test", claims.Issuer)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	current := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestJWTService(t, func() time.Time { return current })

	token, err := svc.GenerateAccessToken(AccessTokenInput{UserID: "user-1"})
	require.NoError(t, err)

	current = current.Add(DefaultAccessTokenTTL + time.Minute)
	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	svc := newTestJWTService(t, nil)

	other, err := NewJWTService(JWTConfig{Secret: "other-secret", Issuer: "hirewire-test"})
	require.NoError(t, err)

	token, err := other.GenerateAccessToken(AccessTokenInput{UserID: "user-1"})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestJWTRejectsWrongIssuer(t *testing.T) {
	svc := newTestJWTService(t, nil)

	other, err := NewJWTService(JWTConfig{Secret: "test-secret", Issuer: "someone-else"})
	require.NoError(t, err)

	token, err := other.GenerateAccessToken(AccessTokenInput{UserID: "user-1"})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestJWTRequiresSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.Error(t, err)
}

func TestJWTRequiresUserID(t *testing.T) {
	svc := newTestJWTService(t, nil)

	_, err := svc.GenerateAccessToken(AccessTokenInput{})
	require.Error(t, err)
}
