package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pharmalink/portal-client/internal/core/domain"
	"github.com/pharmalink/portal-client/internal/core/service"
)

// StatusHandler exposes the session and badge state to local presentation
// processes.
type StatusHandler struct {
	sessions   *service.SessionStore
	engine     *service.SyncEngine
	dispatcher *service.AlertDispatcher
}

func NewStatusHandler(sessions *service.SessionStore, engine *service.SyncEngine, dispatcher *service.AlertDispatcher) *StatusHandler {
	return &StatusHandler{sessions: sessions, engine: engine, dispatcher: dispatcher}
}

type statusResponse struct {
	RestorePending bool                  `json:"restore_pending"`
	Actor          *domain.Actor         `json:"actor,omitempty"`
	Unread         domain.UnreadSnapshot `json:"unread"`
	Muted          bool                  `json:"muted"`
}

// Status returns the current session, badge, and mute state.
//
// @Summary      Session and badge state
// @Tags         status
// @Produce      json
// @Success      200  {object}  statusResponse
// @Router       /status [get]
func (h *StatusHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{
		RestorePending: h.sessions.Pending(),
		Actor:          h.sessions.Actor(),
		Unread:         h.engine.Snapshot(),
		Muted:          h.dispatcher.Muted(),
	})
}

// Refresh triggers an immediate unread poll on behalf of the user. Unlike
// background ticks, its failure is surfaced.
//
// @Summary      Manual sync
// @Tags         status
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      502  {object}  map[string]string
// @Router       /refresh [post]
func (h *StatusHandler) Refresh(c echo.Context) error {
	if err := h.engine.RefreshNow(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"unread": h.engine.Snapshot(),
	})
}

type muteRequest struct {
	Muted bool `json:"muted"`
}

// Mute toggles the alert mute flag. Takes effect for the next cue.
//
// @Summary      Toggle alert mute
// @Tags         status
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Router       /mute [put]
func (h *StatusHandler) Mute(c echo.Context) error {
	var req muteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	h.dispatcher.SetMuted(req.Muted)
	return c.JSON(http.StatusOK, map[string]bool{"muted": req.Muted})
}
