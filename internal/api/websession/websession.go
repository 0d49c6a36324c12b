// Package websession manages the signed browser cookie that carries the
// opaque session id and pending notifications between redirects.
package websession

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/nutridata/portal/internal/core/domain"
)

const (
	DefaultCookieName = "nutridata_session"

	keySessionID = "sid"
	keyFlash     = "notifications"
)

// CreateSessionStore creates the cookie store signing the portal cookie.
func CreateSessionStore(secret string, secure bool, maxAge time.Duration) sessions.Store {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Cookie reads and writes the portal cookie through echo-contrib's session
// middleware, which must be installed ahead of any handler using it.
type Cookie struct {
	name string
}

func New(name string) *Cookie {
	if name == "" {
		name = DefaultCookieName
	}
	return &Cookie{name: name}
}

// get never fails for a tampered or undecodable cookie: gorilla returns a
// fresh session alongside the error and that is what the caller gets.
func (k *Cookie) get(c echo.Context) (*sessions.Session, error) {
	sess, err := session.Get(k.name, c)
	if sess == nil {
		return nil, fmt.Errorf("websession: %w", err)
	}
	return sess, nil
}

// SessionID returns the session id carried by the cookie, or "".
func (k *Cookie) SessionID(c echo.Context) string {
	sess, err := k.get(c)
	if err != nil {
		return ""
	}
	sid, _ := sess.Values[keySessionID].(string)
	return sid
}

// SetSessionID stores sid in the cookie and writes it to the response.
func (k *Cookie) SetSessionID(c echo.Context, sid string) error {
	sess, err := k.get(c)
	if err != nil {
		return err
	}
	sess.Values[keySessionID] = sid
	return sess.Save(c.Request(), c.Response())
}

// Expire removes the cookie from the browser.
func (k *Cookie) Expire(c echo.Context) error {
	sess, err := k.get(c)
	if err != nil {
		return err
	}
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// AddFlash queues n for the next page render.
func (k *Cookie) AddFlash(c echo.Context, n domain.Notification) error {
	sess, err := k.get(c)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("websession: encode flash: %w", err)
	}
	sess.AddFlash(string(raw), keyFlash)
	return sess.Save(c.Request(), c.Response())
}

// Flashes pops every queued notification. Entries that fail to decode are
// skipped.
func (k *Cookie) Flashes(c echo.Context) ([]domain.Notification, error) {
	sess, err := k.get(c)
	if err != nil {
		return nil, err
	}
	raw := sess.Flashes(keyFlash)
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]domain.Notification, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var n domain.Notification
		if err := json.Unmarshal([]byte(s), &n); err != nil {
			continue
		}
		out = append(out, n)
	}
	return out, sess.Save(c.Request(), c.Response())
}
