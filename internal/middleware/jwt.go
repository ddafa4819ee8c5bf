package middleware // middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ssizenet/intranet-api/internal/utils"
)

// identityKey is the echo context key under which the guard stores the
// authenticated Identity.
const identityKey = "identity"

// Identity is the decoded caller attached to the request context by
// JWTAuth. Handlers use it for ownership checks instead of re-parsing the
// token.
type Identity struct {
	ID        string
	Name      string
	Authority []string
}

// HasAuthority reports whether the identity carries the given authority.
func (i Identity) HasAuthority(a string) bool {
	for _, v := range i.Authority {
		if v == a {
			return true
		}
	}
	return false
}

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and attaches the decoded Identity to the request context. Tokens whose
// "type" claim is not "access" are rejected: a refresh token must never
// authorize an operation.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseTokenOfType(secret, raw, utils.TokenTypeAccess)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(identityKey, Identity{
				ID:        claims.ID,
				Name:      claims.Name,
				Authority: claims.Authority,
			})
			return next(c)
		}
	}
}

// IdentityFrom returns the Identity stored by JWTAuth, or false when the
// request was not authenticated.
func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}
