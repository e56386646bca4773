package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmanzanog/bond-tracker/internal/domain"
)

const testSigningKey = "test-signing-key-0123456789"

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := NewTokenService(testSigningKey, "bond-tracker")
	expiresAt := time.Now().Add(time.Hour)

	token, err := svc.Issue("user-1", "session-1", expiresAt)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "session-1", claims.ID)
	assert.Equal(t, "bond-tracker", claims.Issuer)
	assert.WithinDuration(t, expiresAt, claims.ExpiresAt.Time, time.Second)

	userID, sessionID, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "session-1", sessionID)
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService(testSigningKey, "bond-tracker")

	token, err := svc.Issue("user-1", "session-1", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestTokenService_Rejects(t *testing.T) {
	svc := NewTokenService(testSigningKey, "bond-tracker")
	expiresAt := time.Now().Add(time.Hour)

	otherKey, err := NewTokenService("another-signing-key-9876543210", "bond-tracker").Issue("user-1", "session-1", expiresAt)
	require.NoError(t, err)

	otherIssuer, err := NewTokenService(testSigningKey, "someone-else").Issue("user-1", "session-1", expiresAt)
	require.NoError(t, err)

	noneSigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{ID: "session-1", Issuer: "bond-tracker"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSession, err := svc.Issue("user-1", "", expiresAt)
	require.NoError(t, err)

	testCases := map[string]string{
		"garbage":         "invalid-token-string",
		"wrong key":       otherKey,
		"wrong issuer":    otherIssuer,
		"unsigned":        noneSigned,
		"missing session": noSession,
	}

	for name, token := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Validate(token)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}
