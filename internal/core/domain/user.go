package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role is one of the closed set of portal roles.
type Role string

const (
	RolePatient    Role = "patient"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// UserID is the practice API's user identifier. The API emits it as a
// number today, older payloads used strings; both decode.
type UserID string

func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

func (id UserID) String() string { return string(id) }

// Timestamp is a created_at value from the practice API. Rows written by
// older backends carry "2006-01-02 15:04:05" text instead of RFC 3339.
// Anything unparseable decodes to the zero time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	t.Time = time.Time{}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

// User models the authenticated principal.
type User struct {
	ID              UserID    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            Role      `json:"role"`
	Avatar          string    `json:"avatar,omitempty"`
	Height          *float64  `json:"height,omitempty"`
	ProfileComplete bool      `json:"profile_complete"`
	CreatedAt       Timestamp `json:"created_at"`
}

// Validate checks the fields the portal cannot work without.
func (u *User) Validate() error {
	if u == nil {
		return fmt.Errorf("%w: missing user", ErrInvalidUser)
	}
	if strings.TrimSpace(string(u.ID)) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidUser)
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidUser)
	}
	if !u.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidUser, u.Role)
	}
	return nil
}
