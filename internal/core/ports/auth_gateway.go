package ports

import (
	"context"

	"github.com/nutridata/portal/internal/core/domain"
)

// Credentials is what the login form collects. Extra carries the
// additional profile fields the form submits; they are forwarded as-is.
type Credentials struct {
	Email    string
	Password string
	Extra    map[string]string
}

// LoginResult is the practice API's answer to a successful login call.
type LoginResult struct {
	Success         bool
	Token           string
	ProfileComplete bool
	User            domain.User
}

// AuthGateway talks to the practice API's unauthenticated endpoints.
//
// Non-2xx answers come back as *domain.APIError; transport failures wrap
// domain.ErrUpstreamUnavailable.
type AuthGateway interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
}
