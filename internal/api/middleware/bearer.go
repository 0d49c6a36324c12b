package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nutridata/portal/internal/api/authctx"
)

// ForwardBearer replaces any client supplied Authorization header with the
// session's bearer token so proxied calls reach the practice API as the
// signed-in user. Mount it behind Guard.
func ForwardBearer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := authctx.From(c).Token()
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session token")
			}
			req := c.Request()
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
			req.Header.Del(echo.HeaderCookie)
			return next(c)
		}
	}
}
