package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nutridata/portal/internal/core/domain"
	"github.com/nutridata/portal/internal/core/ports"
)

const (
	defaultSessionTTL   = 30 * 24 * time.Hour
	defaultResetMessage = "Si el correo existe, recibirás instrucciones para restablecer tu contraseña."
)

// AuditSink accepts audit events without blocking the caller.
type AuditSink interface {
	Enqueue(event domain.AuthEvent) bool
}

// ResetThrottle limits how often a password reset may be requested for one email.
type ResetThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
}

// AuthOptions carries the optional collaborators of AuthService.
type AuthOptions struct {
	SessionTTL time.Duration
	Tokens     *TokenInspector
	Audit      AuditSink
	Throttle   ResetThrottle
	Logger     zerolog.Logger
}

// AuthService implements the login, password-reset and session lifecycle.
type AuthService struct {
	gateway    ports.AuthGateway
	store      ports.SessionStore
	tokens     *TokenInspector
	audit      AuditSink
	throttle   ResetThrottle
	sessionTTL time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(gateway ports.AuthGateway, store ports.SessionStore, opts AuthOptions) *AuthService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	if opts.Tokens == nil {
		opts.Tokens = NewTokenInspector("")
	}
	return &AuthService{
		gateway:    gateway,
		store:      store,
		tokens:     opts.Tokens,
		audit:      opts.Audit,
		throttle:   opts.Throttle,
		sessionTTL: opts.SessionTTL,
		log:        opts.Logger,
		now:        time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, sid string, creds ports.Credentials, meta ports.RequestMeta) (*domain.Session, error) {
	if sid == "" {
		return nil, errors.New("login: empty session id")
	}
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return nil, fmt.Errorf("login: %w: email and password are required", domain.ErrLoginRejected)
	}

	res, err := s.gateway.Login(ctx, creds)
	if err != nil {
		s.record(domain.AuthEvent{Kind: domain.EventLoginFailed, Email: creds.Email, Reason: failureReason(err), RemoteIP: meta.RemoteIP})
		return nil, fmt.Errorf("login: %w", err)
	}
	if !res.Success || res.Token == "" {
		s.record(domain.AuthEvent{Kind: domain.EventLoginFailed, Email: creds.Email, Reason: "rejected", RemoteIP: meta.RemoteIP})
		return nil, fmt.Errorf("login: %w", domain.ErrLoginRejected)
	}

	user := res.User
	user.Email = creds.Email
	user.ProfileComplete = res.ProfileComplete
	if user.CreatedAt.IsZero() {
		user.CreatedAt = domain.NewTimestamp(s.now().UTC())
	}
	if err := user.Validate(); err != nil {
		s.record(domain.AuthEvent{Kind: domain.EventLoginFailed, Email: creds.Email, Reason: "invalid_user", RemoteIP: meta.RemoteIP})
		return nil, fmt.Errorf("login: %w", err)
	}

	ttl, err := s.tokens.SessionTTL(res.Token, user.Role, s.sessionTTL)
	if err != nil {
		s.record(domain.AuthEvent{Kind: domain.EventLoginFailed, Email: creds.Email, UserID: user.ID, Role: user.Role, Reason: "token", RemoteIP: meta.RemoteIP})
		return nil, fmt.Errorf("login: %w", err)
	}

	session := &domain.Session{Token: res.Token, User: user}
	if err := s.store.Save(ctx, sid, session, ttl); err != nil {
		return nil, fmt.Errorf("login: save session: %w", err)
	}

	s.record(domain.AuthEvent{Kind: domain.EventLoginSucceeded, Email: user.Email, UserID: user.ID, Role: user.Role, RemoteIP: meta.RemoteIP})
	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Dur("ttl", ttl).
		Msg("login succeeded")

	return session, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string, meta ports.RequestMeta) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", errors.New("forgot password: email is required")
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Msg("reset throttle unavailable, forwarding request")
		} else if !allowed {
			s.log.Debug().Msg("password reset throttled")
			return defaultResetMessage, nil
		}
	}

	msg, err := s.gateway.ForgotPassword(ctx, email)
	if err != nil {
		return "", fmt.Errorf("forgot password: %w", err)
	}

	s.record(domain.AuthEvent{Kind: domain.EventPasswordResetRequested, Email: email, RemoteIP: meta.RemoteIP})
	if msg == "" {
		msg = defaultResetMessage
	}
	return msg, nil
}

func (s *AuthService) Hydrate(ctx context.Context, sid string) (*domain.Session, error) {
	if sid == "" {
		return nil, domain.ErrSessionNotFound
	}

	session, err := s.store.Load(ctx, sid)
	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, domain.ErrMalformedSession):
		s.log.Warn().Err(err).Msg("discarding malformed session")
		if clearErr := s.store.Clear(ctx, sid); clearErr != nil {
			s.log.Warn().Err(clearErr).Msg("failed to clear malformed session")
		}
		return nil, domain.ErrSessionNotFound
	default:
		return nil, err
	}
}

func (s *AuthService) Logout(ctx context.Context, sid string, user *domain.User, meta ports.RequestMeta) error {
	if sid != "" {
		if err := s.store.Clear(ctx, sid); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
	}
	if user != nil {
		s.record(domain.AuthEvent{Kind: domain.EventLogout, Email: user.Email, UserID: user.ID, Role: user.Role, RemoteIP: meta.RemoteIP})
	}
	return nil
}

func (s *AuthService) record(ev domain.AuthEvent) {
	if s.audit == nil {
		return
	}
	ev.CreatedAt = s.now().UTC()
	if !s.audit.Enqueue(ev) {
		s.log.Warn().Str("kind", string(ev.Kind)).Msg("audit queue full, event dropped")
	}
}

func failureReason(err error) string {
	var apiErr *domain.APIError
	switch {
	case errors.As(err, &apiErr):
		return fmt.Sprintf("status_%d", apiErr.Status)
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	default:
		return "error"
	}
}
