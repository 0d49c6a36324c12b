// Package practiceapi is the portal's client for the practice REST API's
// unauthenticated endpoints (login and password reset).
package practiceapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nutridata/portal/internal/api/metrics"
	"github.com/nutridata/portal/internal/core/domain"
	"github.com/nutridata/portal/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// Config holds the API base (e.g. http://localhost:8000/api) and the
// per-request timeout.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements ports.AuthGateway. Requests are not retried: a login
// that timed out is reported to the user, who may submit again.
type Client struct {
	http *resty.Client
}

var _ ports.AuthGateway = (*Client)(nil)

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: rc}
}

type loginResponse struct {
	Success         bool        `json:"success"`
	Token           string      `json:"token"`
	ProfileComplete bool        `json:"profile_complete"`
	User            domain.User `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse is FastAPI's error body. detail is a string for
// HTTPException and a list of {msg, loc, type} for validation errors.
type errorResponse struct {
	Detail any `json:"detail"`
}

func (e errorResponse) message() string {
	switch d := e.Detail.(type) {
	case string:
		return d
	case []any:
		if len(d) == 0 {
			return ""
		}
		if first, ok := d[0].(map[string]any); ok {
			if msg, ok := first["msg"].(string); ok {
				return msg
			}
		}
	}
	return ""
}

// Login posts the credentials, plus any extra form fields, to /login.
func (c *Client) Login(ctx context.Context, creds ports.Credentials) (*ports.LoginResult, error) {
	body := make(map[string]string, len(creds.Extra)+2)
	for k, v := range creds.Extra {
		body[k] = v
	}
	body["email"] = creds.Email
	body["password"] = creds.Password

	var out loginResponse
	if err := c.post(ctx, "login", "/login", body, &out); err != nil {
		return nil, err
	}

	return &ports.LoginResult{
		Success:         out.Success,
		Token:           out.Token,
		ProfileComplete: out.ProfileComplete,
		User:            out.User,
	}, nil
}

// ForgotPassword posts the email to /forgot-password and returns the API's message.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var out messageResponse
	if err := c.post(ctx, "forgot_password", "/forgot-password", map[string]string{"email": email}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) post(ctx context.Context, endpoint, path string, body, out any) error {
	start := time.Now()
	var apiErr errorResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(out).
		SetError(&apiErr).
		Post(path)
	if err != nil {
		metrics.UpstreamRequestDuration.WithLabelValues(endpoint, "error").Observe(time.Since(start).Seconds())
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	metrics.UpstreamRequestDuration.
		WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode())).
		Observe(time.Since(start).Seconds())

	if resp.IsError() {
		return &domain.APIError{Status: resp.StatusCode(), Detail: apiErr.message()}
	}
	return nil
}
