package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	authority := []string{"사용자", "영상관리자"}
	raw, exp, err := NewAccessToken(testSecret, "hong", "홍길동", authority, 30)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp, 5*time.Second)

	claims, err := ParseTokenOfType(testSecret, raw, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "hong", claims.ID)
	assert.Equal(t, "홍길동", claims.Name)
	assert.Equal(t, authority, claims.Authority)
	assert.Equal(t, TokenTypeAccess, claims.Type)
}

func TestRefreshTokenCarriesOnlyIdentity(t *testing.T) {
	raw, _, err := NewRefreshToken(testSecret, "hong", 3)
	require.NoError(t, err)

	claims, err := ParseTokenOfType(testSecret, raw, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "hong", claims.ID)
	assert.Empty(t, claims.Name)
	assert.Empty(t, claims.Authority)
}

func TestParseTokenOfTypeRejectsWrongType(t *testing.T) {
	refresh, _, err := NewRefreshToken(testSecret, "hong", 3)
	require.NoError(t, err)

	_, err = ParseTokenOfType(testSecret, refresh, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestParseTokenRejectsBadSecret(t *testing.T) {
	raw, _, err := NewAccessToken(testSecret, "hong", "홍길동", nil, 30)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", raw)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	now := time.Now().UTC().Add(-time.Hour)
	claims := AuthClaims{
		Type: TokenTypeAccess,
		ID:   "hong",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseToken(testSecret, raw)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
