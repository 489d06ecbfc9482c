package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/api/internal/core/domain"
)

func newTestTokenService(t *testing.T, options ...TokenServiceOption) *TokenService {
	t.Helper()

	svc, err := NewTokenService("access-secret", "refresh-secret", options...)
	require.NoError(t, err)
	return svc
}

func TestNewTokenServiceRejectsBadSecrets(t *testing.T) {
	_, err := NewTokenService("", "refresh-secret")
	assert.Error(t, err)

	_, err = NewTokenService("same", "same")
	assert.Error(t, err)
}

func TestIssuePairRoundTrip(t *testing.T) {
	svc := newTestTokenService(t)
	userID := uuid.New()

	pair, err := svc.IssuePair(userID)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	gotID, err := svc.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)

	gotID, err = svc.VerifyRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	svc := newTestTokenService(t)

	pair, err := svc.IssuePair(uuid.New())
	require.NoError(t, err)

	// Signed with different secrets, so each verifier must reject the
	// other's token.
	_, err = svc.VerifyAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = svc.VerifyRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestVerifyAccessTokenExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt

	svc := newTestTokenService(t, WithNowFunc(func() time.Time { return now }))

	pair, err := svc.IssuePair(uuid.New())
	require.NoError(t, err)

	now = issuedAt.Add(AccessTokenTTL - time.Second)
	_, err = svc.VerifyAccessToken(pair.AccessToken)
	assert.NoError(t, err, "just under the TTL must be accepted")

	now = issuedAt.Add(AccessTokenTTL + time.Second)
	_, err = svc.VerifyAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenExpired, "just past the TTL must be rejected")
}

func TestVerifyRefreshTokenExpiry(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt

	svc := newTestTokenService(t, WithNowFunc(func() time.Time { return now }))

	pair, err := svc.IssuePair(uuid.New())
	require.NoError(t, err)

	now = issuedAt.Add(RefreshTokenTTL + time.Second)
	_, err = svc.VerifyRefreshToken(pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestVerifyMalformedToken(t *testing.T) {
	svc := newTestTokenService(t)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.VerifyAccessToken(token)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	svc := newTestTokenService(t)

	other, err := NewTokenService("other-access-secret", "other-refresh-secret")
	require.NoError(t, err)

	pair, err := other.IssuePair(uuid.New())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
