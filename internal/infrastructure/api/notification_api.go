package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pharmalink/portal-client/internal/core/domain"
)

// notificationPayload is the wire shape of a feed record.
type notificationPayload struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Priority   string            `json:"priority,omitempty"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"isRead"`
	CreatedAt  time.Time         `json:"createdAt"`
	ActionLink string            `json:"actionLink,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// toDomain maps a wire record into the domain, normalizing priority exactly
// once: the explicit field is canonical, and an URGENT_ALERT with no priority
// is promoted to high. Services never re-derive priority from type.
func (p notificationPayload) toDomain() domain.Notification {
	priority := domain.Priority(p.Priority)
	switch priority {
	case domain.PriorityNormal, domain.PriorityHigh:
	default:
		priority = domain.PriorityNormal
		if domain.NotificationType(p.Type) == domain.TypeUrgentAlert {
			priority = domain.PriorityHigh
		}
	}
	return domain.Notification{
		ID:         p.ID,
		Type:       domain.NotificationType(p.Type),
		Priority:   priority,
		Title:      p.Title,
		Message:    p.Message,
		IsRead:     p.IsRead,
		CreatedAt:  p.CreatedAt,
		ActionLink: p.ActionLink,
		Metadata:   p.Metadata,
	}
}

// List implements ports.NotificationAPI.
func (c *Client) List(ctx context.Context, token string, limit, skip int) ([]domain.Notification, error) {
	var data []notificationPayload
	path := fmt.Sprintf("/notifications?limit=%d&skip=%d", limit, skip)
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &data); err != nil {
		return nil, err
	}
	records := make([]domain.Notification, 0, len(data))
	for _, p := range data {
		records = append(records, p.toDomain())
	}
	return records, nil
}

type unreadCountData struct {
	UnreadCount     int  `json:"unreadCount"`
	HasHighPriority bool `json:"hasHighPriority"`
}

// UnreadCount implements ports.NotificationAPI.
func (c *Client) UnreadCount(ctx context.Context, token string) (domain.UnreadSnapshot, error) {
	var data unreadCountData
	if err := c.doJSON(ctx, http.MethodGet, "/notifications/unread-count", token, nil, &data); err != nil {
		return domain.UnreadSnapshot{}, err
	}
	count := data.UnreadCount
	if count < 0 {
		count = 0
	}
	return domain.UnreadSnapshot{Count: count, HasHighPriority: data.HasHighPriority}, nil
}

// MarkRead implements ports.NotificationAPI.
func (c *Client) MarkRead(ctx context.Context, token, id string) (*domain.Notification, error) {
	var data notificationPayload
	err := c.doJSON(ctx, http.MethodPut, "/notifications/"+id+"/read", token, nil, &data)
	if err != nil {
		return nil, translateNotFound(err)
	}
	record := data.toDomain()
	return &record, nil
}

type markAllReadData struct {
	MarkedCount int `json:"markedCount"`
}

// MarkAllRead implements ports.NotificationAPI.
func (c *Client) MarkAllRead(ctx context.Context, token string) (int, error) {
	var data markAllReadData
	if err := c.doJSON(ctx, http.MethodPut, "/notifications/read-all", token, nil, &data); err != nil {
		return 0, err
	}
	return data.MarkedCount, nil
}

// Delete implements ports.NotificationAPI.
func (c *Client) Delete(ctx context.Context, token, id string) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/notifications/"+id, token, nil, nil); err != nil {
		return translateNotFound(err)
	}
	return nil
}

func translateNotFound(err error) error {
	var he *HTTPError
	if errors.As(err, &he) && he.StatusCode == http.StatusNotFound {
		return domain.ErrNotificationNotFound
	}
	return err
}
