package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssizenet/intranet-api/internal/utils"
)

const testSecret = "middleware-test-secret"

func runGuard(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, *Identity) {
	t.Helper()
	var seen *Identity
	h := mw(func(c echo.Context) error {
		if id, ok := IdentityFrom(c); ok {
			seen = &id
		}
		return c.NoContent(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h(echo.New().NewContext(req, rec)))
	return rec, seen
}

func TestJWTAuthAttachesIdentity(t *testing.T) {
	raw, _, err := utils.NewAccessToken(testSecret, "hong", "홍길동", []string{"사용자"}, 30)
	require.NoError(t, err)

	rec, ident := runGuard(t, JWTAuth(testSecret), "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, ident)
	assert.Equal(t, "hong", ident.ID)
	assert.Equal(t, "홍길동", ident.Name)
	assert.True(t, ident.HasAuthority("사용자"))
	assert.False(t, ident.HasAuthority("관리자"))
}

func TestJWTAuthRejectsRefreshToken(t *testing.T) {
	raw, _, err := utils.NewRefreshToken(testSecret, "hong", 3)
	require.NoError(t, err)

	rec, ident := runGuard(t, JWTAuth(testSecret), "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, ident)
}

func TestJWTAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	rec, _ := runGuard(t, JWTAuth(testSecret), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = runGuard(t, JWTAuth(testSecret), "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = runGuard(t, JWTAuth(testSecret), "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsForeignSignature(t *testing.T) {
	raw, _, err := utils.NewAccessToken("other-secret", "hong", "홍길동", nil, 30)
	require.NoError(t, err)

	rec, _ := runGuard(t, JWTAuth(testSecret), "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
