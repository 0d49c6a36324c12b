package domain

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is the transient message shown after a login or reset attempt.
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
}

func Success(title, description string) Notification {
	return Notification{Kind: NotificationSuccess, Title: title, Description: description}
}

func Failure(title, description string) Notification {
	return Notification{Kind: NotificationError, Title: title, Description: description}
}
