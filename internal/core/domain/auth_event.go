package domain

import "time"

type AuthEventKind string

const (
	EventLoginSucceeded         AuthEventKind = "login_succeeded"
	EventLoginFailed            AuthEventKind = "login_failed"
	EventLogout                 AuthEventKind = "logout"
	EventPasswordResetRequested AuthEventKind = "password_reset_requested"
)

// AuthEvent is one entry of the authentication audit trail.
type AuthEvent struct {
	Kind      AuthEventKind
	Email     string
	UserID    UserID
	Role      Role
	Reason    string
	RemoteIP  string
	CreatedAt time.Time
}
