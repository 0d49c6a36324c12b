package ports

import (
	"context"
	"time"

	"github.com/nutridata/portal/internal/core/domain"
)

// SessionStore persists sessions keyed by the browser's session id.
type SessionStore interface {
	// Save writes token and user together. A ttl <= 0 uses the store default.
	Save(ctx context.Context, sid string, s *domain.Session, ttl time.Duration) error
	// Load returns domain.ErrSessionNotFound when nothing is stored and
	// domain.ErrMalformedSession when the stored record cannot be decoded.
	Load(ctx context.Context, sid string) (*domain.Session, error)
	// Clear is idempotent.
	Clear(ctx context.Context, sid string) error
}
