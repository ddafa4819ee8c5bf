package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Token types carried in the "type" claim. Only access tokens may authorize
// protected operations; refresh tokens are exchanged for new pairs.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrWrongTokenType is returned by the Parse helpers when a token carries
// an unexpected "type" claim, e.g. a refresh token presented as a bearer.
var ErrWrongTokenType = errors.New("wrong token type")

// AuthClaims is the claim set for both token kinds. Access tokens carry the
// user's name and resolved authorities; refresh tokens carry only the id so
// that authorities are re-resolved when a new pair is issued.
type AuthClaims struct {
	Type      string   `json:"type"`
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	Authority []string `json:"authority,omitempty"`
	jwt.RegisteredClaims
}

// NewAccessToken builds and signs an HS256 access token embedding the
// user's id, name and authority set. It returns the signed string and its
// expiration time.
func NewAccessToken(secret, id, name string, authority []string, ttlMin int) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := AuthClaims{
		Type:      TokenTypeAccess,
		ID:        id,
		Name:      name,
		Authority: authority,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// NewRefreshToken builds and signs an HS256 refresh token. The claim set is
// deliberately minimal: type and user id only.
func NewRefreshToken(secret, id string, ttlDays int) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := AuthClaims{
		Type: TokenTypeRefresh,
		ID:   id,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseToken verifies signature and expiry of a token and returns its
// claims. The signing method must be HMAC; tokens signed otherwise are
// rejected.
func ParseToken(secret, raw string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// ParseTokenOfType is ParseToken plus a check on the "type" claim.
func ParseTokenOfType(secret, raw, wantType string) (*AuthClaims, error) {
	claims, err := ParseToken(secret, raw)
	if err != nil {
		return nil, err
	}
	if claims.Type != wantType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
