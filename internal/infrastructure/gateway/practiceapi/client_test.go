package practiceapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutridata/portal/internal/core/domain"
	"github.com/nutridata/portal/internal/core/ports"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Login_Success(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/login", r.URL.Path)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "doc@example.com", body["email"])
		assert.Equal(t, "x", body["password"])
		assert.Equal(t, "Ana", body["nombres"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"token":"abc","profile_complete":true,"user":{"id":7,"name":"Dra. X","role":"admin"}}`))
	})
	client := New(Config{BaseURL: srv.URL + "/api/", Timeout: time.Second})

	res, err := client.Login(context.Background(), ports.Credentials{
		Email:    "doc@example.com",
		Password: "x",
		Extra:    map[string]string{"nombres": "Ana", "email": "spoofed@example.com"},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "abc", res.Token)
	assert.True(t, res.ProfileComplete)
	assert.Equal(t, domain.UserID("7"), res.User.ID)
	assert.Equal(t, "Dra. X", res.User.Name)
	assert.Equal(t, domain.RoleAdmin, res.User.Role)
}

func TestClient_Login_CreatedAtFormats(t *testing.T) {
	tests := []struct {
		name      string
		createdAt string
	}{
		{"sql text", "2024-05-01 10:00:00"},
		{"rfc3339", "2024-05-01T10:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"success":true,"token":"abc","user":{"id":7,"name":"Dra. X","role":"admin","created_at":"` + tt.createdAt + `"}}`))
			})
			client := New(Config{BaseURL: srv.URL, Timeout: time.Second})

			res, err := client.Login(context.Background(), ports.Credentials{Email: "doc@example.com", Password: "x"})
			require.NoError(t, err)
			assert.Equal(t, "abc", res.Token)
			assert.True(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).Equal(res.User.CreatedAt.Time))
		})
	}
}

func TestClient_Login_Rejected(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Credenciales incorrectas"}`))
	})
	client := New(Config{BaseURL: srv.URL, Timeout: time.Second})

	_, err := client.Login(context.Background(), ports.Credentials{Email: "a@b.com", Password: "bad"})
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Credenciales incorrectas", apiErr.Detail)
}

func TestClient_Login_ValidationDetailList(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","email"],"msg":"value is not a valid email address","type":"value_error"}]}`))
	})
	client := New(Config{BaseURL: srv.URL, Timeout: time.Second})

	_, err := client.Login(context.Background(), ports.Credentials{Email: "nope", Password: "p"})
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "value is not a valid email address", apiErr.Detail)
}

func TestClient_Login_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(Config{BaseURL: url, Timeout: time.Second})
	_, err := client.Login(context.Background(), ports.Credentials{Email: "a@b.com", Password: "p"})
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable), "got %v", err)
}

func TestClient_Login_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	client := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Login(context.Background(), ports.Credentials{Email: "a@b.com", Password: "p"})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestClient_ForgotPassword(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forgot-password", r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"email": "a@b.com"}, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"Si el correo existe..."}`))
	})
	client := New(Config{BaseURL: srv.URL, Timeout: time.Second})

	msg, err := client.ForgotPassword(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "Si el correo existe...", msg)
}

func TestClient_ForgotPassword_Error(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"mail relay down"}`))
	})
	client := New(Config{BaseURL: srv.URL, Timeout: time.Second})

	_, err := client.ForgotPassword(context.Background(), "a@b.com")
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "mail relay down", apiErr.Detail)
}
