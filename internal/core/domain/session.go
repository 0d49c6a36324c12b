package domain

import (
	"errors"
	"fmt"
)

// Session is the durable pairing of a bearer token and the principal it
// was issued for. Both halves are written and cleared together.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrMalformedSession    = errors.New("malformed session")
	ErrInvalidUser         = errors.New("invalid user")
	ErrLoginRejected       = errors.New("login rejected")
	ErrTokenRejected       = errors.New("token rejected")
	ErrUpstreamUnavailable = errors.New("practice api unavailable")
)

// APIError is a non-2xx answer from the practice API.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("practice api: status %d", e.Status)
	}
	return fmt.Sprintf("practice api: status %d: %s", e.Status, e.Detail)
}
