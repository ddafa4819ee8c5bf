package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAuthority returns a middleware that enforces a non-empty
// intersection between the caller's authorities and the given required
// set. It assumes JWTAuth already attached the Identity; requests without
// one are rejected with 401, requests without a matching authority with
// 403.
func RequireAuthority(required ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(required))
	for _, a := range required {
		allowed[a] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := IdentityFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
			}
			for _, a := range ident.Authority {
				if allowed[a] {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
}
