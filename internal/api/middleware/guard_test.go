package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/nutridata/portal/internal/api/authctx"
	"github.com/nutridata/portal/internal/core/domain"
	"github.com/nutridata/portal/internal/core/ports"
)

type stubSessions struct {
	session *domain.Session
	err     error
}

func (s *stubSessions) Hydrate(_ context.Context, _ string) (*domain.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return s.session, nil
}

func (s *stubSessions) Logout(context.Context, string, *domain.User, ports.RequestMeta) error {
	return nil
}

// contextFor returns an auth context already hydrated into the state
// implied by user: nil is anonymous.
func contextFor(t *testing.T, user *domain.User) *authctx.Context {
	t.Helper()
	sessions := &stubSessions{}
	if user != nil {
		sessions.session = &domain.Session{Token: "tok", User: *user}
	}
	a := authctx.New(sessions, "sid", ports.RequestMeta{})
	if err := a.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	return a
}

func runGuard(t *testing.T, a *authctx.Context, htmx bool, roles ...domain.Role) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	authctx.Attach(c, a)

	called := false
	handler := Guard(roles...)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, called
}

func TestGuard_LoadingRendersPlaceholder(t *testing.T) {
	tests := []struct {
		name  string
		roles []domain.Role
		htmx  bool
	}{
		{"no allow-list", nil, false},
		{"single role", []domain.Role{domain.RoleAdmin}, false},
		{"every role", []domain.Role{domain.RolePatient, domain.RoleAdmin, domain.RoleSuperadmin}, false},
		{"htmx request", []domain.Role{domain.RolePatient}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := authctx.New(&stubSessions{err: errors.New("redis down")}, "sid", ports.RequestMeta{})
			_ = a.Hydrate(context.Background())

			rec, called := runGuard(t, a, tt.htmx, tt.roles...)
			if called {
				t.Fatalf("next must not run while loading")
			}
			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("expected 503, got %d", rec.Code)
			}
			if rec.Header().Get("Retry-After") != "1" {
				t.Fatalf("expected Retry-After header")
			}
			if rec.Header().Get(echo.HeaderLocation) != "" || rec.Header().Get("HX-Redirect") != "" {
				t.Fatalf("loading must not redirect")
			}
			if !strings.Contains(rec.Body.String(), `aria-busy="true"`) {
				t.Fatalf("expected the loading placeholder, got %q", rec.Body.String())
			}
		})
	}
}

func TestGuard_AnonymousRedirectsToAuth(t *testing.T) {
	rec, called := runGuard(t, contextFor(t, nil), false, domain.RoleAdmin)
	if called {
		t.Fatalf("next must not run for anonymous users")
	}
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/auth" {
		t.Fatalf("expected 302 to /auth, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestGuard_AnonymousHTMX(t *testing.T) {
	rec, _ := runGuard(t, contextFor(t, nil), true)
	if rec.Code != http.StatusUnauthorized || rec.Header().Get("HX-Redirect") != "/auth" {
		t.Fatalf("expected 401 with HX-Redirect, got %d %q", rec.Code, rec.Header().Get("HX-Redirect"))
	}
}

func TestGuard_RoleGating(t *testing.T) {
	tests := []struct {
		name     string
		role     domain.Role
		allowed  []domain.Role
		wantNext bool
		wantLoc  string
	}{
		{"patient on admin route", domain.RolePatient, []domain.Role{domain.RoleAdmin}, false, "/patient"},
		{"admin on patient route", domain.RoleAdmin, []domain.Role{domain.RolePatient}, false, "/"},
		{"admin on superadmin route", domain.RoleAdmin, []domain.Role{domain.RoleSuperadmin}, false, "/"},
		{"superadmin on admin route", domain.RoleSuperadmin, []domain.Role{domain.RoleAdmin}, false, "/superadmin"},
		{"superadmin on own route", domain.RoleSuperadmin, []domain.Role{domain.RoleSuperadmin}, true, ""},
		{"patient on shared route", domain.RolePatient, []domain.Role{domain.RoleAdmin, domain.RolePatient}, true, ""},
		{"no allow-list", domain.RolePatient, nil, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &domain.User{ID: "1", Name: "Ana", Role: tt.role}
			rec, called := runGuard(t, contextFor(t, user), false, tt.allowed...)
			if called != tt.wantNext {
				t.Fatalf("next called = %v, want %v", called, tt.wantNext)
			}
			if tt.wantNext {
				if rec.Code != http.StatusOK {
					t.Fatalf("expected 200, got %d", rec.Code)
				}
				return
			}
			if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != tt.wantLoc {
				t.Fatalf("expected 302 to %s, got %d %q", tt.wantLoc, rec.Code, rec.Header().Get(echo.HeaderLocation))
			}
		})
	}
}

func TestGuard_WrongRoleHTMX(t *testing.T) {
	user := &domain.User{ID: "1", Name: "Ana", Role: domain.RolePatient}
	rec, _ := runGuard(t, contextFor(t, user), true, domain.RoleAdmin)
	if rec.Code != http.StatusForbidden || rec.Header().Get("HX-Redirect") != "/patient" {
		t.Fatalf("expected 403 with HX-Redirect to /patient, got %d %q", rec.Code, rec.Header().Get("HX-Redirect"))
	}
}
