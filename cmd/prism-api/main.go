// Package main runs the PRISM REST API server on its own.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codwats/prism/internal/api"
	"github.com/codwats/prism/internal/config"
	"github.com/codwats/prism/internal/events"
	"github.com/codwats/prism/internal/facade"
	"github.com/codwats/prism/internal/logging"
	"github.com/codwats/prism/internal/storage"
	"github.com/codwats/prism/internal/version"
)

var (
	configPath = flag.String("config", "", "Config file (default: ~/.prism/config.toml)")
	port       = flag.Int("port", 0, "API server port (default: api.port from the config)")
	dbPath     = flag.String("db-path", "", "Database path (default: ~/.prism/prism.db)")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = logging.DefaultLogFile()
	}
	_ = logging.Setup(logging.ParseLevel(cfg.Log.Level), os.Stderr, logFile)
	logger := logging.Get("api")
	logger.Info().Str("version", version.GetVersion()).Msg("PRISM API server")

	path := cfg.Storage.DBPath
	if path == "" {
		path = storage.DefaultPath()
	}
	db, err := storage.Open(storage.DefaultConfig(path))
	if err != nil {
		logger.Fatal().Err(err).Str("path", path).Msg("Failed to open database")
	}
	storageService := storage.NewService(db)
	storageService.SetSnapshotRetention(cfg.Storage.SnapshotRetention)
	defer func() {
		if err := storageService.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing storage service")
		}
	}()
	logger.Info().Str("path", path).Msg("Database opened")

	services := facade.NewServices(cfg, storageService, logger)
	services.Events = events.NewEventDispatcher(logging.Get("events"))
	services.Events.Register(events.NewLoggingObserver(logging.Get("events"), false))

	server := api.NewServer(&api.Config{
		Port:           cfg.API.Port,
		AllowedOrigins: cfg.API.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout(),
	}, services)

	if err := server.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start API server")
	}
	logger.Info().Msgf("API server running at http://localhost:%d (Ctrl+C to stop)", server.Port())

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
	}
	logger.Info().Msg("API server stopped")
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if *port != 0 {
		cfg.API.Port = *port
	}
	if *dbPath != "" {
		cfg.Storage.DBPath = *dbPath
	}
	return cfg, nil
}
