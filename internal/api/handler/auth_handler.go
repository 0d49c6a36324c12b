package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nutridata/portal/internal/api/authctx"
	"github.com/nutridata/portal/internal/api/httpx"
	"github.com/nutridata/portal/internal/api/metrics"
	"github.com/nutridata/portal/internal/api/view"
	"github.com/nutridata/portal/internal/api/websession"
	"github.com/nutridata/portal/internal/core/domain"
	"github.com/nutridata/portal/internal/core/ports"
)

const (
	msgInvalidCredentials = "Credenciales incorrectas"
	msgServerDown         = "El servidor no responde"
	msgResetFailed        = "No se pudo realizar la solicitud."
	msgResetUnreachable   = "No se pudo enviar el enlace. Inténtalo de nuevo."
	msgResetSent          = "Si el correo existe, recibirás instrucciones para restablecer tu contraseña."
)

type AuthHandler struct {
	authService  ports.AuthService
	cookie       *websession.Cookie
	log          zerolog.Logger
	newSessionID func() string
}

func NewAuthHandler(authService ports.AuthService, cookie *websession.Cookie, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookie:       cookie,
		log:          log,
		newSessionID: uuid.NewString,
	}
}

type loginRequest struct {
	Email    string `json:"email"    form:"email"    validate:"required,email,max=254"`
	Password string `json:"password" form:"password" validate:"required,max=256"`

	// Profile fields some login forms collect; forwarded untouched.
	Nombres         string `json:"nombres"          form:"nombres"`
	Apellidos       string `json:"apellidos"        form:"apellidos"`
	Telefono        string `json:"telefono"         form:"telefono"`
	FechaNacimiento string `json:"fecha_nacimiento" form:"fecha_nacimiento"`
	Genero          string `json:"genero"           form:"genero"`
	Direccion       string `json:"direccion"        form:"direccion"`
}

func (r loginRequest) extra() map[string]string {
	fields := map[string]string{
		"nombres":          r.Nombres,
		"apellidos":        r.Apellidos,
		"telefono":         r.Telefono,
		"fecha_nacimiento": r.FechaNacimiento,
		"genero":           r.Genero,
		"direccion":        r.Direccion,
	}
	for k, v := range fields {
		if v == "" {
			delete(fields, k)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

type forgotPasswordRequest struct {
	Email string `json:"email" form:"email" validate:"required,email,max=254"`
}

type authResponse struct {
	Notification *domain.Notification `json:"notification,omitempty"`
	Redirect     string               `json:"redirect,omitempty"`
}

type sessionResponse struct {
	State   string       `json:"state"`
	User    *domain.User `json:"user,omitempty"`
	Landing string       `json:"landing"`
}

// LoginPage renders the login form with any pending notifications.
//
// @Summary      Login page
// @Tags         auth
// @Produce      html
// @Success      200
// @Success      302  "already signed in, redirected to the landing route"
// @Router       /auth [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	a := authctx.From(c)
	if user := a.User(); user != nil {
		return c.Redirect(http.StatusFound, domain.LandingRoute(user.Role))
	}

	flashes, err := h.cookie.Flashes(c)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to read flashes")
	}
	return view.Render(c, http.StatusOK, view.Auth(view.AuthPage{
		Notifications: flashes,
		CSRF:          csrfToken(c),
	}))
}

// Login authenticates against the practice API and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json,html
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Success      303   "form submissions are redirected to the landing route"
// @Failure      400   {object}  authResponse
// @Failure      401   {object}  authResponse
// @Failure      503   {object}  authResponse
// @Router       /auth [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		return h.showForm(c, http.StatusBadRequest, domain.Failure("Error", msgInvalidCredentials), "")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		return h.showForm(c, http.StatusBadRequest, domain.Failure("Error", err.Error()), req.Email)
	}

	a := authctx.From(c)
	ctx := c.Request().Context()
	meta := requestMeta(c)
	sid := h.newSessionID()

	session, err := h.authService.Login(ctx, sid, ports.Credentials{
		Email:    req.Email,
		Password: req.Password,
		Extra:    req.extra(),
	}, meta)
	if err != nil {
		status, outcome, n := loginFailure(err)
		metrics.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
		if outcome == "error" {
			h.log.Error().Err(err).Msg("login failed")
		}
		return h.showForm(c, status, n, req.Email)
	}

	// The previous session id, if any, is retired so a fixated id stays useless.
	if old := a.SessionID(); old != "" && old != sid {
		if err := h.authService.Logout(ctx, old, nil, meta); err != nil {
			h.log.Warn().Err(err).Msg("failed to retire previous session")
		}
	}
	if err := h.cookie.SetSessionID(c, sid); err != nil {
		h.log.Error().Err(err).Msg("failed to write session cookie")
		if err := h.authService.Logout(ctx, sid, &session.User, meta); err != nil {
			h.log.Warn().Err(err).Msg("failed to discard unreachable session")
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return h.showForm(c, http.StatusServiceUnavailable, domain.Failure("Error de conexión", msgServerDown), req.Email)
	}
	a.SetUser(sid, session)
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	n := domain.Success("Bienvenido", "Sesión iniciada como "+session.User.Name)
	return h.navigate(c, n, domain.LandingRoute(session.User.Role))
}

// ForgotPassword asks the practice API to send a reset link.
//
// @Summary      Request a password reset link
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json,html
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  authResponse
// @Failure      503   {object}  authResponse
// @Router       /forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		metrics.PasswordResetRequestsTotal.WithLabelValues("invalid").Inc()
		return h.showForm(c, http.StatusBadRequest, domain.Failure("Error", msgResetFailed), "")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		metrics.PasswordResetRequestsTotal.WithLabelValues("invalid").Inc()
		return h.showForm(c, http.StatusBadRequest, domain.Failure("Error", err.Error()), req.Email)
	}

	msg, err := h.authService.ForgotPassword(c.Request().Context(), req.Email, requestMeta(c))
	if err != nil {
		status, outcome, n := resetFailure(err)
		metrics.PasswordResetRequestsTotal.WithLabelValues(outcome).Inc()
		return h.showForm(c, status, n, req.Email)
	}

	metrics.PasswordResetRequestsTotal.WithLabelValues("accepted").Inc()
	if msg == "" {
		msg = msgResetSent
	}
	return h.showForm(c, http.StatusOK, domain.Success("Enlace enviado", msg), "")
}

// Logout ends the session and sends the browser to the login page with a
// full navigation. Calling it without a session behaves the same.
//
// @Summary      Logout
// @Tags         auth
// @Success      303  "redirected to /auth"
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	a := authctx.From(c)
	if err := a.Logout(c.Request().Context()); err != nil {
		h.log.Warn().Err(err).Msg("failed to clear session on logout")
	}
	metrics.LogoutsTotal.Inc()

	if err := h.cookie.Expire(c); err != nil {
		h.log.Warn().Err(err).Msg("failed to expire session cookie")
	}
	c.Response().Header().Set("Clear-Site-Data", `"storage"`)

	if httpx.IsHTMX(c) {
		c.Response().Header().Set("HX-Redirect", domain.RouteAuth)
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, domain.RouteAuth)
}

// Session reports the caller's auth state.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	a := authctx.From(c)
	resp := sessionResponse{State: a.State().String(), Landing: domain.RouteAuth}
	if user := a.User(); user != nil {
		resp.User = user
		resp.Landing = domain.LandingRoute(user.Role)
	}
	return c.JSON(http.StatusOK, resp)
}

// showForm answers with the login page carrying exactly one notification,
// or with the JSON envelope for API callers.
func (h *AuthHandler) showForm(c echo.Context, status int, n domain.Notification, email string) error {
	if httpx.WantsJSON(c) {
		return c.JSON(status, authResponse{Notification: &n})
	}
	return view.Render(c, status, view.Auth(view.AuthPage{
		Notifications: []domain.Notification{n},
		Email:         email,
		CSRF:          csrfToken(c),
	}))
}

// navigate sends the caller to target. Browsers get the notification as a
// flash shown on the next page.
func (h *AuthHandler) navigate(c echo.Context, n domain.Notification, target string) error {
	if httpx.WantsJSON(c) {
		return c.JSON(http.StatusOK, authResponse{Notification: &n, Redirect: target})
	}
	if err := h.cookie.AddFlash(c, n); err != nil {
		h.log.Warn().Err(err).Msg("failed to queue notification")
	}
	if httpx.IsHTMX(c) {
		c.Response().Header().Set("HX-Redirect", target)
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, target)
}

func loginFailure(err error) (int, string, domain.Notification) {
	var apiErr *domain.APIError
	switch {
	case errors.As(err, &apiErr):
		detail := apiErr.Detail
		if detail == "" {
			detail = msgInvalidCredentials
		}
		return http.StatusUnauthorized, "rejected", domain.Failure("Error", detail)
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "unavailable", domain.Failure("Error de conexión", msgServerDown)
	case errors.Is(err, domain.ErrLoginRejected),
		errors.Is(err, domain.ErrInvalidUser),
		errors.Is(err, domain.ErrTokenRejected):
		return http.StatusUnauthorized, "rejected", domain.Failure("Error", msgInvalidCredentials)
	default:
		return http.StatusServiceUnavailable, "error", domain.Failure("Error de conexión", msgServerDown)
	}
}

func resetFailure(err error) (int, string, domain.Notification) {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		detail := apiErr.Detail
		if detail == "" {
			detail = msgResetFailed
		}
		return apiErr.Status, "rejected", domain.Failure("Error", detail)
	}
	return http.StatusServiceUnavailable, "unavailable", domain.Failure("Error", msgResetUnreachable)
}
