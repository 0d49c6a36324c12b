package ports

import (
	"context"

	"github.com/nutridata/portal/internal/core/domain"
)

// RequestMeta describes who issued a request, for the audit trail.
type RequestMeta struct {
	RemoteIP string
}

type AuthService interface {
	// Login exchanges credentials with the practice API and persists the
	// resulting session under sid. Nothing is written on failure.
	Login(ctx context.Context, sid string, creds Credentials, meta RequestMeta) (*domain.Session, error)
	// ForgotPassword returns the message to show on acceptance.
	ForgotPassword(ctx context.Context, email string, meta RequestMeta) (string, error)
	// Hydrate loads the session stored under sid. A corrupt record is
	// cleared and reported as domain.ErrSessionNotFound.
	Hydrate(ctx context.Context, sid string) (*domain.Session, error)
	// Logout clears the session stored under sid. Idempotent.
	Logout(ctx context.Context, sid string, user *domain.User, meta RequestMeta) error
}
