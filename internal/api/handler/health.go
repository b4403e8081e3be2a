package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pharmalink/portal-client/internal/core/service"
)

// HealthHandler handles GET /health — liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// ReadinessHandler handles GET /health/ready — the daemon is ready once
// session restore has settled, whatever its outcome.
type ReadinessHandler struct {
	sessions *service.SessionStore
}

func NewReadinessHandler(sessions *service.SessionStore) *ReadinessHandler {
	return &ReadinessHandler{sessions: sessions}
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	if h.sessions.Pending() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "restoring",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
	})
}
