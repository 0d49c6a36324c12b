package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nutridata/portal/internal/api/authctx"
	"github.com/nutridata/portal/internal/api/view"
	"github.com/nutridata/portal/internal/api/websession"
	"github.com/nutridata/portal/internal/core/domain"
)

// PagesHandler renders the role dashboards. Page content is loaded by the
// browser through /api, so every page shares the same shell.
type PagesHandler struct {
	cookie *websession.Cookie
	log    zerolog.Logger
}

func NewPagesHandler(cookie *websession.Cookie, log zerolog.Logger) *PagesHandler {
	return &PagesHandler{cookie: cookie, log: log}
}

// Dashboard must be mounted behind the role guard.
func (h *PagesHandler) Dashboard(c echo.Context) error {
	user := authctx.From(c).User()
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	nav := domain.Navigation(user.Role)
	active := c.Path()
	title := ""
	for _, it := range nav {
		if it.Path == active {
			title = it.Label
			break
		}
	}

	flashes, err := h.cookie.Flashes(c)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to read flashes")
	}

	return view.Render(c, http.StatusOK, view.Dashboard(view.DashboardPage{
		User:          *user,
		Nav:           nav,
		Active:        active,
		Title:         title,
		Notifications: flashes,
		CSRF:          csrfToken(c),
	}))
}
