package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runAuthority(t *testing.T, ident *Identity, required ...string) *httptest.ResponseRecorder {
	t.Helper()
	h := RequireAuthority(required...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if ident != nil {
		c.Set(identityKey, *ident)
	}
	require.NoError(t, h(c))
	return rec
}

func TestRequireAuthority(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		rec := runAuthority(t, nil, "사용자")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("no intersection", func(t *testing.T) {
		rec := runAuthority(t, &Identity{ID: "hong", Authority: []string{"사용자"}}, "관리자")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("empty authority list", func(t *testing.T) {
		rec := runAuthority(t, &Identity{ID: "hong"}, "사용자")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("one match suffices", func(t *testing.T) {
		rec := runAuthority(t, &Identity{ID: "hong", Authority: []string{"사용자", "영상관리자"}},
			"장비관리자", "영상관리자")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
