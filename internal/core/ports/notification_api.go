package ports

import (
	"context"

	"github.com/pharmalink/portal-client/internal/core/domain"
)

// NotificationAPI is the notification feed surface the client consumes.
type NotificationAPI interface {
	// List returns one page of the actor's feed, newest first.
	List(ctx context.Context, token string, limit, skip int) ([]domain.Notification, error)

	// UnreadCount returns the current badge snapshot.
	UnreadCount(ctx context.Context, token string) (domain.UnreadSnapshot, error)

	// MarkRead flags a single record as read and returns the updated record.
	MarkRead(ctx context.Context, token, id string) (*domain.Notification, error)

	// MarkAllRead flags the whole feed as read and returns how many records
	// the server actually transitioned.
	MarkAllRead(ctx context.Context, token string) (int, error)

	// Delete removes a record from the feed.
	Delete(ctx context.Context, token, id string) error
}
