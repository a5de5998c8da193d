// Package api serves the DebriDeck HTTP API.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/debrideck/debrideck/internal/clipboard"
	"github.com/debrideck/debrideck/internal/config"
	"github.com/debrideck/debrideck/internal/debrid"
	"github.com/debrideck/debrideck/internal/debrid/torbox"
	"github.com/debrideck/debrideck/internal/downloads"
	"github.com/debrideck/debrideck/internal/notify"
	"github.com/debrideck/debrideck/internal/preferences"
	"github.com/debrideck/debrideck/internal/scheduler"
	"github.com/debrideck/debrideck/internal/websocket"
)

// Server handles HTTP requests for the DebriDeck API.
type Server struct {
	echo   *echo.Echo
	hub    *websocket.Hub
	logger zerolog.Logger
	cfg    *config.Config
	sched  *scheduler.Scheduler

	client debrid.Client
	creds  downloads.CredentialSource

	downloadsService  *downloads.Service
	downloadsHandlers *downloads.Handlers
	prefsService      *preferences.Service
	prefsHandlers     *preferences.Handlers

	startTime time.Time
}

// NewServer creates a new API server instance and wires the services.
// instanceSecret protects the stored credential at rest.
func NewServer(db *sql.DB, hub *websocket.Hub, cfg *config.Config, sched *scheduler.Scheduler, instanceSecret string, logger zerolog.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		hub:       hub,
		logger:    logger,
		cfg:       cfg,
		sched:     sched,
		startTime: time.Now(),
	}

	s.prefsService = preferences.NewService(db, logger)
	if err := s.prefsService.InitSecrets(context.Background(), instanceSecret); err != nil {
		return nil, fmt.Errorf("failed to initialize secret store: %w", err)
	}
	s.prefsHandlers = preferences.NewHandlers(s.prefsService)

	s.client = torbox.New(torbox.Config{
		BaseURL: cfg.Debrid.BaseURL,
		Timeout: cfg.Debrid.Timeout(),
	})

	// Config/env credential wins over the stored preference.
	s.creds = downloads.CredentialChain{
		downloads.StaticCredential(cfg.Debrid.APIKey),
		s.prefsService,
	}

	aggregator := downloads.NewAggregator(s.client, logger)
	s.downloadsService = downloads.NewService(aggregator, s.creds, hub, logger)

	notifier := notify.NewHubNotifier(hub, logger)
	dispatcher := downloads.NewDispatcher(s.client, s.creds, clipboard.System{}, notifier, s.downloadsService, logger)
	s.downloadsHandlers = downloads.NewHandlers(s.downloadsService, dispatcher)

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// DownloadsService exposes the list service for scheduler wiring.
func (s *Server) DownloadsService() *downloads.Service {
	return s.downloadsService
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.logger.Info().Str("addr", addr).Msg("starting API server")
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying echo instance (used by tests).
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
