package utils

import "golang.org/x/crypto/bcrypt"

// Password length bounds accepted at signup and password change.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 256
)

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// IsPasswordStrong reports whether a password satisfies the signup policy:
// length within [MinPasswordLen, MaxPasswordLen] and at least three of the
// four character classes (uppercase, lowercase, digit, symbol).
func IsPasswordStrong(password string) bool {
	if len(password) < MinPasswordLen || len(password) > MaxPasswordLen {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}
	classes := 0
	for _, ok := range []bool{upper, lower, digit, symbol} {
		if ok {
			classes++
		}
	}
	return classes >= 3
}
