// Package httpx holds the request classification shared by the portal's
// middleware, handlers and error handler.
package httpx

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

// WantsJSON reports whether the caller posted JSON or asked for it.
func WantsJSON(c echo.Context) bool {
	req := c.Request()
	return strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) ||
		strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// WantsHTML reports whether the caller is a browser navigation: it accepts
// HTML and did not ask for JSON.
func WantsHTML(c echo.Context) bool {
	return !WantsJSON(c) && strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}
