package model

import "time"

// NotificationType selects the banner colour.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationSuccess NotificationType = "success"
)

// Notification is a transient banner shown to the user.
type Notification struct {
	// ID is unique and increases monotonically; it is derived from the
	// creation time in epoch milliseconds.
	ID int64 `json:"id"`

	Message string `json:"message"`

	Type NotificationType `json:"type"`

	// CreatedAt is when the banner was pushed.
	CreatedAt time.Time `json:"created_at"`
}

// NotificationRecord is a persisted entry in the local banner history.
type NotificationRecord struct {
	ID        string           `json:"id" db:"id"`
	Message   string           `json:"message" db:"message"`
	Type      NotificationType `json:"type" db:"type"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
