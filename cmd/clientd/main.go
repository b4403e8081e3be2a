// Command clientd runs the headless portal client core: it restores the
// session, keeps the notification badge synchronized with the marketplace
// backend, and serves session/feed state to local presentation processes over
// the status API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/pharmalink/portal-client/internal/api"
	"github.com/pharmalink/portal-client/internal/core/ports"
	"github.com/pharmalink/portal-client/internal/core/service"
	marketplace "github.com/pharmalink/portal-client/internal/infrastructure/api"
	"github.com/pharmalink/portal-client/internal/infrastructure/credentials"
	archivedb "github.com/pharmalink/portal-client/internal/infrastructure/db/mongo"
	redisdb "github.com/pharmalink/portal-client/internal/infrastructure/db/redis"
	"github.com/pharmalink/portal-client/internal/pkg/config"
	"github.com/pharmalink/portal-client/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Credential store: Redis for shared terminals, file otherwise ---
	var credStore ports.CredentialStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		credStore = credentials.NewRedisStore(rdb, cfg.TerminalID)
		log.Info().Str("terminal", cfg.TerminalID).Msg("using shared credential store")
	} else {
		credStore = credentials.NewFileStore(cfg.CredentialsPath)
	}

	// --- Optional offline archive ---
	var archive ports.NotificationArchive
	if cfg.Archive.URI != "" {
		db, disconnect, err := archivedb.Connect(ctx, archivedb.Config{
			URI:      cfg.Archive.URI,
			Database: cfg.Archive.Database,
		})
		if err != nil {
			// The archive only improves offline behaviour; run without it.
			log.Warn().Err(err).Msg("offline archive unavailable, continuing without it")
		} else {
			defer disconnect(context.Background())
			archive = archivedb.NewNotificationArchive(db)
		}
	}

	// --- Marketplace client and core services ---
	client := marketplace.NewClient(cfg.MarketplaceURL, 0, log)
	sessions := service.NewSessionStore(client, client, credStore, log)
	cache := service.NewUnreadCache()
	engine := service.NewSyncEngine(client, sessions, cache, archive, cfg.PollInterval, log)
	store := service.NewNotificationStore(client, sessions, cache, archive, log)
	dispatcher := service.NewAlertDispatcher(logCuePlayer{log: log}, log)

	if actor, _ := sessions.Restore(ctx); actor != nil {
		if err := store.FetchPage(ctx, cfg.PageSize, 0); err != nil {
			log.Warn().Err(err).Msg("initial feed fetch failed, loading offline archive")
			if err := store.LoadOffline(ctx, cfg.PageSize); err != nil {
				log.Warn().Err(err).Msg("offline archive load failed")
			}
		}
	}

	go engine.Run(ctx)
	go dispatcher.Run(ctx, engine)

	router := api.NewRouter(sessions, engine, store, dispatcher, cfg.PageSize, log)
	go func() {
		if err := router.Start(cfg.StatusAddr); err != nil {
			log.Info().Err(err).Msg("status api stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	_ = router.Close()
}

// logCuePlayer renders alert cues as log lines. Graphical shells replace it
// with a real audio/visual player over the status API event stream.
type logCuePlayer struct {
	log zerolog.Logger
}

func (p logCuePlayer) PlayUrgent() {
	p.log.Warn().Str("cue", "urgent").Msg("notification alert")
}

func (p logCuePlayer) PlaySubtle() {
	p.log.Info().Str("cue", "subtle").Msg("notification alert")
}
