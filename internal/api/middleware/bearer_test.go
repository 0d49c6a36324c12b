package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/nutridata/portal/internal/api/authctx"
	"github.com/nutridata/portal/internal/core/domain"
)

func TestForwardBearer_ReplacesAuthorization(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer forged")
	req.Header.Set(echo.HeaderCookie, "nutridata_session=abc")
	c := e.NewContext(req, httptest.NewRecorder())
	authctx.Attach(c, contextFor(t, &domain.User{ID: "1", Name: "Ana", Role: domain.RoleAdmin}))

	handler := ForwardBearer()(func(c echo.Context) error {
		if got := c.Request().Header.Get(echo.HeaderAuthorization); got != "Bearer tok" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		if c.Request().Header.Get(echo.HeaderCookie) != "" {
			t.Fatalf("portal cookie must not reach the practice api")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestForwardBearer_NoToken(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/patients", nil), httptest.NewRecorder())
	authctx.Attach(c, contextFor(t, nil))

	err := ForwardBearer()(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
