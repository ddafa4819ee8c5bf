package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPasswordStrong(t *testing.T) {
	cases := []struct {
		name     string
		password string
		want     bool
	}{
		{"three classes upper lower digit", "Abcdefg1", true},
		{"three classes with symbol", "Abcd123!", true},
		{"all four classes", "Abc123!xyz", true},
		{"lower digit symbol", "abcd123!", true},
		{"only lowercase", "abcdefgh", false},
		{"only two classes", "abcdefg1", false},
		{"too short", "Ab1!", false},
		{"too long", strings.Repeat("Ab1!", 65), false},
		{"max length accepted", strings.Repeat("Ab1!", 64), true},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsPasswordStrong(tc.password))
		})
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Abcd123!", 4) // low cost keeps the test fast
	require.NoError(t, err)
	require.NotEqual(t, "Abcd123!", hash)

	assert.True(t, VerifyPassword(hash, "Abcd123!"))
	assert.False(t, VerifyPassword(hash, "Abcd123?"))
	assert.False(t, VerifyPassword("not-a-hash", "Abcd123!"))
}
