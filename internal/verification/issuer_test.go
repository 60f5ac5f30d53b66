package verification

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hirewire/hirewire/internal/cache"
	"github.com/hirewire/hirewire/internal/models"
)

func newTestIssuer(t *testing.T, email *fakeEmailSender, sms *fakeSMSSender, opts ...IssuerOption) (*Issuer, *CodeStore) {
	t.Helper()

	db := newTestDB(t)
	codes, err := NewCodeStore(db)
	require.NoError(t, err)

	limiter, err := NewResendLimiter(cache.NewMemoryStore())
	require.NoError(t, err)

	issuer, err := NewIssuer(codes, limiter, email, sms, opts...)
	require.NoError(t, err)

	return issuer, codes
}

func TestIssuerDeliversEmailCode(t *testing.T) {
	email := &fakeEmailSender{}
	issuer, codes := newTestIssuer(t, email, &fakeSMSSender{})

	record, err := issuer.Issue(context.Background(), "user@example.com", models.CodeKindEmail)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^[0-9]{6}$`), record.Code)
	require.Equal(t, "user@example.com", record.Destination)
	require.Equal(t, models.CodeKindEmail, record.Kind)
	require.False(t, record.Consumed)

	require.Len(t, email.sent, 1)
	require.Equal(t, "user@example.com", email.sent[0].to)
	require.Contains(t, email.sent[0].body, record.Code)

	stored, err := codes.FindActive(context.Background(), "user@example.com", record.Code)
	require.NoError(t, err)
	require.Equal(t, record.ID, stored.ID)
}

func TestIssuerDeliversSMSCode(t *testing.T) {
	sms := &fakeSMSSender{}
	issuer, _ := newTestIssuer(t, &fakeEmailSender{}, sms)

	record, err := issuer.Issue(context.Background(), "+15551234567", models.CodeKindPhone)
	require.NoError(t, err)
	require.Len(t, sms.sent, 1)
	require.Contains(t, sms.sent[0].body, record.Code)
}

func TestIssuerThrottlesRepeatSends(t *testing.T) {
	issuer, _ := newTestIssuer(t, &fakeEmailSender{}, &fakeSMSSender{})

	ctx := context.Background()
	_, err := issuer.Issue(ctx, "user@example.com", models.CodeKindEmail)
	require.NoError(t, err)

	_, err = issuer.Issue(ctx, "user@example.com", models.CodeKindEmail)
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestIssuerEmailDeliveryFailureIsFatal(t *testing.T) {
	email := &fakeEmailSender{err: errors.New("smtp unreachable")}
	issuer, _ := newTestIssuer(t, email, &fakeSMSSender{})

	_, err := issuer.Issue(context.Background(), "user@example.com", models.CodeKindEmail)
	require.ErrorIs(t, err, ErrDeliveryFailed)
}

func TestIssuerSMSDeliveryFailureIsSwallowed(t *testing.T) {
	sms := &fakeSMSSender{err: errors.New("sns unavailable")}
	issuer, codes := newTestIssuer(t, &fakeEmailSender{}, sms)

	record, err := issuer.Issue(context.Background(), "+15551234567", models.CodeKindPhone)
	require.NoError(t, err)

	// The stored code stays usable even though delivery failed.
	stored, err := codes.FindActive(context.Background(), "+15551234567", record.Code)
	require.NoError(t, err)
	require.Equal(t, record.ID, stored.ID)
}

func TestIssuerUsesInjectedGenerator(t *testing.T) {
	issuer, _ := newTestIssuer(t, &fakeEmailSender{}, &fakeSMSSender{},
		WithGenerator(func() (string, error) { return "123456", nil }),
	)

	record, err := issuer.Issue(context.Background(), "user@example.com", models.CodeKindEmail)
	require.NoError(t, err)
	require.Equal(t, "123456", record.Code)
}

func TestIssuerAppliesCodeTTL(t *testing.T) {
	current := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	issuer, _ := newTestIssuer(t, &fakeEmailSender{}, &fakeSMSSender{},
		WithIssuerClock(func() time.Time { return current }),
	)

	record, err := issuer.Issue(context.Background(), "user@example.com", models.CodeKindEmail)
	require.NoError(t, err)
	require.Equal(t, current.Add(DefaultCodeTTL), record.ExpiresAt)
}

func TestIssuerRejectsUnknownKind(t *testing.T) {
	issuer, _ := newTestIssuer(t, &fakeEmailSender{}, &fakeSMSSender{})

	_, err := issuer.Issue(context.Background(), "user@example.com", "CARRIER_PIGEON")
	require.Error(t, err)
}
