package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nutridata/portal/internal/core/ports"
)

// requestMeta collects the request attributes recorded on audit events.
func requestMeta(c echo.Context) ports.RequestMeta {
	return ports.RequestMeta{RemoteIP: c.RealIP()}
}

// csrfToken returns the token set by Echo's CSRF middleware, or "" when the
// middleware is not mounted.
func csrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
