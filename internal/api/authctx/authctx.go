// Package authctx holds the per-request authentication state shared by the
// provider middleware, the role guard and the handlers.
package authctx

import (
	"context"
	"errors"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/nutridata/portal/internal/core/domain"
	"github.com/nutridata/portal/internal/core/ports"
)

type State int

const (
	Initializing State = iota
	Anonymous
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return "initializing"
	}
}

// Sessions is the part of the auth service the context drives.
type Sessions interface {
	Hydrate(ctx context.Context, sid string) (*domain.Session, error)
	Logout(ctx context.Context, sid string, user *domain.User, meta ports.RequestMeta) error
}

// Context is the auth state of one request. It is safe for concurrent use.
type Context struct {
	sessions Sessions
	meta     ports.RequestMeta

	mu    sync.RWMutex
	state State
	sid   string
	token string
	user  *domain.User
}

// New returns a context in the Initializing state for the given session id.
func New(sessions Sessions, sid string, meta ports.RequestMeta) *Context {
	return &Context{sessions: sessions, sid: sid, meta: meta}
}

// Hydrate loads the session once. A missing or discarded session leaves the
// context Anonymous; any other error leaves it Initializing and is returned.
func (a *Context) Hydrate(ctx context.Context) error {
	a.mu.RLock()
	sid, state := a.sid, a.state
	a.mu.RUnlock()
	if state != Initializing {
		return nil
	}

	if sid == "" {
		a.transition(Anonymous, "", nil)
		return nil
	}

	session, err := a.sessions.Hydrate(ctx, sid)
	switch {
	case err == nil:
		a.transition(Authenticated, sid, session)
		return nil
	case errors.Is(err, domain.ErrSessionNotFound):
		a.transition(Anonymous, sid, nil)
		return nil
	default:
		return err
	}
}

// User returns a copy of the signed-in user, or nil.
func (a *Context) User() *domain.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

// Loading reports whether hydration has not completed.
func (a *Context) Loading() bool {
	return a.State() == Initializing
}

func (a *Context) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// SessionID returns the session id the context is bound to.
func (a *Context) SessionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sid
}

// Token returns the bearer token of the signed-in user, or "".
func (a *Context) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

// SetUser records a completed login. The caller has already persisted
// session under sid.
func (a *Context) SetUser(sid string, session *domain.Session) {
	a.transition(Authenticated, sid, session)
}

// Logout clears the stored session and drops to Anonymous. The context is
// Anonymous afterwards even when the store could not be cleared.
func (a *Context) Logout(ctx context.Context) error {
	a.mu.Lock()
	sid, user := a.sid, a.user
	a.state, a.sid, a.token, a.user = Anonymous, "", "", nil
	a.mu.Unlock()

	return a.sessions.Logout(ctx, sid, user, a.meta)
}

func (a *Context) transition(state State, sid string, session *domain.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state, a.sid, a.token, a.user = state, sid, "", nil
	if session != nil {
		user := session.User
		a.token, a.user = session.Token, &user
	}
}

const echoKey = "authctx"

// Attach makes a available to downstream handlers.
func Attach(c echo.Context, a *Context) {
	c.Set(echoKey, a)
}

// From returns the auth context attached by the provider middleware. It
// panics when the provider is not mounted.
func From(c echo.Context) *Context {
	a, ok := c.Get(echoKey).(*Context)
	if !ok || a == nil {
		panic("authctx: From called outside the auth provider")
	}
	return a
}
