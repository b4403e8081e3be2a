package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pharmalink/portal-client/internal/core/domain"
)

const (
	notificationCollection = "notifications"
	snapshotCollection     = "unread_snapshot"
	snapshotDocID          = "current"
)

// NotificationArchive implements ports.NotificationArchive on MongoDB.
type NotificationArchive struct {
	notifications *mongo.Collection
	snapshots     *mongo.Collection
}

func NewNotificationArchive(db *mongo.Database) *NotificationArchive {
	return &NotificationArchive{
		notifications: db.Collection(notificationCollection),
		snapshots:     db.Collection(snapshotCollection),
	}
}

type archivedNotification struct {
	ID         string            `bson:"_id"`
	Type       string            `bson:"type"`
	Priority   string            `bson:"priority"`
	Title      string            `bson:"title"`
	Message    string            `bson:"message"`
	IsRead     bool              `bson:"is_read"`
	CreatedAt  int64             `bson:"created_at"`
	ActionLink string            `bson:"action_link,omitempty"`
	Metadata   map[string]string `bson:"metadata,omitempty"`
}

type archivedSnapshot struct {
	ID              string `bson:"_id"`
	Count           int    `bson:"count"`
	HasHighPriority bool   `bson:"has_high_priority"`
	UpdatedAt       int64  `bson:"updated_at"`
}

// ReplaceAll overwrites the archived feed with the given records.
func (a *NotificationArchive) ReplaceAll(ctx context.Context, records []domain.Notification) error {
	if _, err := a.notifications.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("archive clear: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(records))
	for _, n := range records {
		docs = append(docs, archivedNotification{
			ID:         n.ID,
			Type:       string(n.Type),
			Priority:   string(n.Priority),
			Title:      n.Title,
			Message:    n.Message,
			IsRead:     n.IsRead,
			CreatedAt:  n.CreatedAt.UnixMilli(),
			ActionLink: n.ActionLink,
			Metadata:   n.Metadata,
		})
	}
	if _, err := a.notifications.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("archive insert: %w", err)
	}
	return nil
}

// LoadRecent returns up to limit archived records, newest first.
func (a *NotificationArchive) LoadRecent(ctx context.Context, limit int) ([]domain.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := a.notifications.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("archive find: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []archivedNotification
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("archive decode: %w", err)
	}

	records := make([]domain.Notification, 0, len(docs))
	for _, doc := range docs {
		records = append(records, domain.Notification{
			ID:         doc.ID,
			Type:       domain.NotificationType(doc.Type),
			Priority:   domain.Priority(doc.Priority),
			Title:      doc.Title,
			Message:    doc.Message,
			IsRead:     doc.IsRead,
			CreatedAt:  time.UnixMilli(doc.CreatedAt).UTC(),
			ActionLink: doc.ActionLink,
			Metadata:   doc.Metadata,
		})
	}
	return records, nil
}

// SaveSnapshot upserts the single archived unread snapshot document.
func (a *NotificationArchive) SaveSnapshot(ctx context.Context, snap domain.UnreadSnapshot) error {
	doc := archivedSnapshot{
		ID:              snapshotDocID,
		Count:           snap.Count,
		HasHighPriority: snap.HasHighPriority,
		UpdatedAt:       time.Now().UnixMilli(),
	}
	_, err := a.snapshots.ReplaceOne(ctx, bson.M{"_id": snapshotDocID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("archive snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the archived unread snapshot, or nil when none exists.
func (a *NotificationArchive) LoadSnapshot(ctx context.Context) (*domain.UnreadSnapshot, error) {
	var doc archivedSnapshot
	if err := a.snapshots.FindOne(ctx, bson.M{"_id": snapshotDocID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("archive snapshot load: %w", err)
	}
	return &domain.UnreadSnapshot{Count: doc.Count, HasHighPriority: doc.HasHighPriority}, nil
}
