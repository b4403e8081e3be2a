package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pharmalink/portal-client/internal/core/domain"
	"github.com/pharmalink/portal-client/internal/core/service"
)

// NotificationHandler exposes the local notification store to presentation
// processes. Reads are pass-through views of shared state; mutations go
// through the store's optimistic operations.
type NotificationHandler struct {
	store    *service.NotificationStore
	pageSize int
}

func NewNotificationHandler(store *service.NotificationStore, pageSize int) *NotificationHandler {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &NotificationHandler{store: store, pageSize: pageSize}
}

type notificationView struct {
	domain.Notification
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Label string `json:"label"`
}

type listResponse struct {
	Notifications []notificationView `json:"notifications"`
	FetchError    string             `json:"fetch_error,omitempty"`
}

// List returns the in-memory feed with rendering hints attached. The
// fetch_error field carries the last failed fetch for the UI to render a
// banner; the list itself is the last-known state.
func (h *NotificationHandler) List(c echo.Context) error {
	records := h.store.Snapshot()
	views := make([]notificationView, 0, len(records))
	for _, n := range records {
		a := service.AppearanceFor(n.Type)
		views = append(views, notificationView{
			Notification: n,
			Icon:         a.Icon,
			Color:        a.Color,
			Label:        a.Label,
		})
	}

	resp := listResponse{Notifications: views}
	if err := h.store.Err(); err != nil {
		resp.FetchError = err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

// Fetch refreshes the feed from the backend, surfacing failures.
func (h *NotificationHandler) Fetch(c echo.Context) error {
	if err := h.store.FetchPage(c.Request().Context(), h.pageSize, 0); err != nil {
		return err
	}
	return h.List(c)
}

// MarkRead flags one record as read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	if err := h.store.MarkRead(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead flags the whole feed as read.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	if err := h.store.MarkAllRead(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes one record.
func (h *NotificationHandler) Delete(c echo.Context) error {
	if err := h.store.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
