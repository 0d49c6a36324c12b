package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/nutridata/portal/internal/api/authctx"
	"github.com/nutridata/portal/internal/api/httpx"
	"github.com/nutridata/portal/internal/api/metrics"
	"github.com/nutridata/portal/internal/api/view"
	"github.com/nutridata/portal/internal/core/domain"
)

// Guard gates a route group on authentication and role. Decisions, first
// match wins: still loading renders a placeholder, anonymous goes to the
// login page, a role outside roles goes to that role's landing route.
// Without roles any authenticated user passes.
func Guard(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			a := authctx.From(c)

			switch a.State() {
			case authctx.Initializing:
				metrics.GuardDecisionsTotal.WithLabelValues("loading").Inc()
				c.Response().Header().Set("Retry-After", "1")
				c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
				return view.Render(c, http.StatusServiceUnavailable, view.Loading())
			case authctx.Anonymous:
				metrics.GuardDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				return redirect(c, domain.RouteAuth, http.StatusUnauthorized)
			}

			user := a.User()
			if len(roles) > 0 && !slices.Contains(roles, user.Role) {
				metrics.GuardDecisionsTotal.WithLabelValues("wrong_role").Inc()
				return redirect(c, domain.LandingRoute(user.Role), http.StatusForbidden)
			}

			metrics.GuardDecisionsTotal.WithLabelValues("allow").Inc()
			return next(c)
		}
	}
}

// redirect sends a browser to target. htmx requests get HX-Redirect with
// htmxStatus so the client performs a full navigation.
func redirect(c echo.Context, target string, htmxStatus int) error {
	if httpx.IsHTMX(c) {
		c.Response().Header().Set("HX-Redirect", target)
		return c.NoContent(htmxStatus)
	}
	return c.Redirect(http.StatusFound, target)
}
