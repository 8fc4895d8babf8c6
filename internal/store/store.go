package store

import (
	"context"

	"github.com/nhle/safesignal/internal/model"
)

// KeyWasOffline marks that the current user went offline under auto mode
// and the reconnect has not been handled yet.
const KeyWasOffline = "wasOffline"

// Flags persists boolean markers that must outlive a dashboard session.
// A missing key reads as false.
type Flags interface {
	GetFlag(ctx context.Context, key string) (bool, error)
	SetFlag(ctx context.Context, key string) error
	ClearFlag(ctx context.Context, key string) error
}

// History keeps a local log of banners shown to the user.
type History interface {
	AppendNotification(ctx context.Context, n model.Notification) error
	RecentNotifications(ctx context.Context, limit int) ([]model.NotificationRecord, error)
}

// Store is the full persistence interface backed by SQLite.
type Store interface {
	Flags
	History
	Close() error
}
