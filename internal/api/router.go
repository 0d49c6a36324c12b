package api

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/nutridata/portal/internal/api/handler"
	"github.com/nutridata/portal/internal/api/middleware"
	"github.com/nutridata/portal/internal/api/websession"
	"github.com/nutridata/portal/internal/core/domain"
	"github.com/nutridata/portal/internal/core/ports"
	"github.com/nutridata/portal/internal/infrastructure/config"

	_ "github.com/nutridata/portal/internal/docs"
)

// Options carries what NewRouter wires together.
type Options struct {
	Config      *config.Config
	Logger      zerolog.Logger
	AuthService ports.AuthService
	Checks      map[string]handler.Check

	// Registerer and Gatherer default to the Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(opts Options) (*echo.Echo, error) {
	cfg, log := opts.Config, opts.Logger
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	upstream, err := url.Parse(cfg.Upstream.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("router: parse API_BASE_URL: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "portal",
		Registerer: opts.Registerer,
	}))
	e.Use(echomiddleware.Secure())

	// --- Dependencies ---
	cookie := websession.New(cfg.Session.CookieName)
	store := websession.CreateSessionStore(cfg.Session.Secret, cfg.Session.SecureCookies, cfg.Session.TTL)
	authHandler := handler.NewAuthHandler(opts.AuthService, cookie, log)
	pagesHandler := handler.NewPagesHandler(cookie, log)

	// Every browser-facing route carries the cookie, CSRF protection and
	// the auth context; guards are appended per route.
	web := []echo.MiddlewareFunc{
		session.Middleware(store),
		echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
			TokenLookup:    "header:X-CSRF-Token,form:_csrf",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSecure:   cfg.Session.SecureCookies,
			CookieSameSite: http.SameSiteLaxMode,
		}),
		middleware.Provider(middleware.ProviderConfig{
			Sessions:    opts.AuthService,
			Cookie:      cookie,
			LoadTimeout: cfg.Session.LoadTimeout,
			Logger:      log,
		}),
	}
	with := func(extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		return append(append([]echo.MiddlewareFunc{}, web...), extra...)
	}

	// --- Auth routes ---
	e.GET(domain.RouteAuth, authHandler.LoginPage, with()...)
	e.POST(domain.RouteAuth, authHandler.Login, with()...)
	e.GET("/auth/session", authHandler.Session, with()...)
	e.POST("/forgot-password", authHandler.ForgotPassword, with()...)
	e.POST("/logout", authHandler.Logout, with()...)

	// --- Role dashboards ---
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RolePatient, domain.RoleSuperadmin} {
		for _, item := range domain.Navigation(role) {
			e.GET(item.Path, pagesHandler.Dashboard, with(middleware.Guard(role))...)
		}
	}

	// --- Practice API passthrough ---
	proxy := echomiddleware.ProxyWithConfig(echomiddleware.ProxyConfig{
		Balancer: echomiddleware.NewRoundRobinBalancer([]*echomiddleware.ProxyTarget{{Name: "practice-api", URL: upstream}}),
		Rewrite:  map[string]string{"/api/*": "/$1"},
	})
	e.Any("/api/*", echo.NotFoundHandler, with(middleware.Guard(), middleware.ForwardBearer(), proxy)...)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(opts.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: opts.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}
