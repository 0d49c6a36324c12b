package middleware

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nutridata/portal/internal/api/authctx"
	"github.com/nutridata/portal/internal/api/metrics"
	"github.com/nutridata/portal/internal/api/websession"
	"github.com/nutridata/portal/internal/core/ports"
)

const defaultLoadTimeout = 2 * time.Second

// ProviderConfig wires the auth context provider.
type ProviderConfig struct {
	Sessions    authctx.Sessions
	Cookie      *websession.Cookie
	LoadTimeout time.Duration
	Logger      zerolog.Logger
}

// Provider mounts an auth context on every request and hydrates it from the
// session store. A store failure leaves the context loading; the request
// still proceeds so public routes keep working.
func Provider(cfg ProviderConfig) echo.MiddlewareFunc {
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = defaultLoadTimeout
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := cfg.Cookie.SessionID(c)
			a := authctx.New(cfg.Sessions, sid, ports.RequestMeta{RemoteIP: c.RealIP()})

			ctx, cancel := context.WithTimeout(c.Request().Context(), cfg.LoadTimeout)
			err := a.Hydrate(ctx)
			cancel()

			if err != nil {
				metrics.SessionHydrationsTotal.WithLabelValues("error").Inc()
				cfg.Logger.Warn().
					Err(err).
					Str("path", c.Request().URL.Path).
					Msg("session hydration failed")
			} else {
				metrics.SessionHydrationsTotal.WithLabelValues(a.State().String()).Inc()
			}

			authctx.Attach(c, a)
			return next(c)
		}
	}
}
