package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/debrideck/debrideck/internal/api"
	"github.com/debrideck/debrideck/internal/config"
	"github.com/debrideck/debrideck/internal/crypto"
	"github.com/debrideck/debrideck/internal/database"
	"github.com/debrideck/debrideck/internal/logger"
	"github.com/debrideck/debrideck/internal/scheduler"
	"github.com/debrideck/debrideck/internal/scheduler/tasks"
	"github.com/debrideck/debrideck/internal/websocket"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("logLevel", cfg.Logging.Level).
		Msg("starting DebriDeck")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	log.Info().Msg("running database migrations")
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	secretPath := filepath.Join(filepath.Dir(cfg.Database.Path), "debrideck.secret")
	instanceSecret, err := crypto.LoadOrCreateSecret(secretPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load instance secret")
	}

	hub := websocket.NewHub()
	go hub.Run()

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}

	server, err := api.NewServer(db.Conn(), hub, cfg, sched, instanceSecret, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	if cfg.Refresh.Auto {
		if err := tasks.RegisterRefreshTask(sched, server.DownloadsService(), cfg.Refresh.Cron); err != nil {
			log.Fatal().Err(err).Msg("failed to register refresh task")
		}
	}

	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	if err := sched.Stop(); err != nil {
		log.Warn().Err(err).Msg("scheduler shutdown error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
}
