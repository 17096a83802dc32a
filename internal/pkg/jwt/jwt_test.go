package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(7, "user@clinic.test", "doctor", testSecret, 15)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "user@clinic.test", claims.Email)
	assert.Equal(t, "doctor", claims.Role)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken(7, "token-id-1", testSecret, 7)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "token-id-1", claims.TokenID)
}

func TestWrongSecretIsRejected(t *testing.T) {
	token, err := GenerateAccessToken(7, "user@clinic.test", "doctor", testSecret, 15)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	token, err := GenerateAccessToken(7, "user@clinic.test", "doctor", testSecret, -1)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	refresh, err := GenerateRefreshToken(7, "token-id-1", testSecret, 7)
	require.NoError(t, err)

	// A refresh token parses as access claims but carries no email or role
	claims, err := ValidateAccessToken(refresh, testSecret)
	require.NoError(t, err)
	assert.Empty(t, claims.Email)
	assert.Empty(t, claims.Role)
}
