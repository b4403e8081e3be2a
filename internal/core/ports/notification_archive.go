package ports

import (
	"context"

	"github.com/pharmalink/portal-client/internal/core/domain"
)

// NotificationArchive is an optional local cache of the last successfully
// fetched feed state, read back when the backend is unreachable. A nil
// archive disables offline fallback.
type NotificationArchive interface {
	// ReplaceAll overwrites the archived feed with the given records.
	ReplaceAll(ctx context.Context, records []domain.Notification) error

	// LoadRecent returns up to limit archived records, newest first.
	LoadRecent(ctx context.Context, limit int) ([]domain.Notification, error)

	// SaveSnapshot stores the last observed unread snapshot.
	SaveSnapshot(ctx context.Context, snap domain.UnreadSnapshot) error

	// LoadSnapshot returns the archived unread snapshot, if any.
	LoadSnapshot(ctx context.Context) (*domain.UnreadSnapshot, error)
}
