package domain

import "time"

// NotificationType is the closed set of notification categories the
// marketplace emits. Unknown future types are rendered with the generic
// system appearance, never rejected.
type NotificationType string

const (
	TypeUrgentAlert   NotificationType = "URGENT_ALERT"
	TypeStockWarning  NotificationType = "STOCK_WARNING"
	TypeExpiryWarning NotificationType = "EXPIRY_WARNING"
	TypeAnnouncement  NotificationType = "ANNOUNCEMENT"
	TypeSystem        NotificationType = "SYSTEM"
)

// Priority is the canonical urgency of a notification. The explicit field is
// the single source of truth; the API layer promotes URGENT_ALERT records
// with no priority to high exactly once, at decode time.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Notification is a single feed record. The client only ever moves IsRead
// from false to true, never back.
type Notification struct {
	ID         string            `json:"id"`
	Type       NotificationType  `json:"type"`
	Priority   Priority          `json:"priority"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	CreatedAt  time.Time         `json:"created_at"`
	ActionLink string            `json:"action_link,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Newer reports whether n sorts before other in the feed: newest CreatedAt
// first, ties broken by ID so the order is stable.
func (n Notification) Newer(other Notification) bool {
	if !n.CreatedAt.Equal(other.CreatedAt) {
		return n.CreatedAt.After(other.CreatedAt)
	}
	return n.ID < other.ID
}

// UnreadSnapshot is the cached badge state: how many records are unread and
// whether any of them is high priority. Count is never negative.
type UnreadSnapshot struct {
	Count           int  `json:"count"`
	HasHighPriority bool `json:"has_high_priority"`
}
