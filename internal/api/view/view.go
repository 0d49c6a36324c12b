// Package view renders the portal's server-side pages as templ components.
package view

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/nutridata/portal/internal/core/domain"
)

// AuthPage is the data behind the login and forgot-password forms.
type AuthPage struct {
	Notifications []domain.Notification
	Email         string
	CSRF          string
}

// DashboardPage is the role shell: sidebar, user menu and page heading.
type DashboardPage struct {
	User          domain.User
	Nav           []domain.NavItem
	Active        string
	Title         string
	Notifications []domain.Notification
	CSRF          string
}

// Render writes component as an HTML response with status. The component is
// rendered into a buffer first so a failure still leaves the response
// uncommitted for the error handler.
func Render(c echo.Context, status int, component templ.Component) error {
	var buf bytes.Buffer
	if err := component.Render(c.Request().Context(), &buf); err != nil {
		return err
	}
	return c.HTMLBlob(status, buf.Bytes())
}

// printer writes markup and keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(parts ...string) {
	for _, s := range parts {
		if p.err != nil {
			return
		}
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *printer) url(s string) {
	p.raw(templ.EscapeString(string(templ.URL(s))))
}

func (p *printer) component(ctx context.Context, c templ.Component) {
	if p.err == nil {
		p.err = c.Render(ctx, p.w)
	}
}

func initials(name string) string {
	var out []rune
	start := true
	for _, r := range name {
		switch {
		case r == ' ':
			start = true
		case start && len(out) < 2:
			out = append(out, r)
			start = false
		default:
			start = false
		}
	}
	return string(out)
}
