package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/pharmalink/portal-client/internal/api/handler"
	"github.com/pharmalink/portal-client/internal/core/service"
)

// NewRouter builds the local status API. It serves loopback presentation
// processes; the marketplace backend enforces authorization on its own side.
func NewRouter(sessions *service.SessionStore, engine *service.SyncEngine, store *service.NotificationStore, dispatcher *service.AlertDispatcher, pageSize int, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("portal_client_status"))

	// --- Handlers ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(sessions)
	statusHandler := handler.NewStatusHandler(sessions, engine, dispatcher)
	notificationHandler := handler.NewNotificationHandler(store, pageSize)

	// --- Health probes ---
	e.GET("/health", healthHandler.Liveness)       // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – has restore settled?

	// --- Session / badge state ---
	e.GET("/status", statusHandler.Status)
	e.POST("/refresh", statusHandler.Refresh)
	e.PUT("/mute", statusHandler.Mute)

	// --- Notification feed ---
	e.GET("/notifications", notificationHandler.List)
	e.POST("/notifications/fetch", notificationHandler.Fetch)
	e.PUT("/notifications/:id/read", notificationHandler.MarkRead)
	e.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
	e.DELETE("/notifications/:id", notificationHandler.Delete)

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
