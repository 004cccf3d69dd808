package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wokaidabaoma/econ-site/internal/appstore"
	"github.com/wokaidabaoma/econ-site/internal/config"
	"github.com/wokaidabaoma/econ-site/internal/logger"
	"github.com/wokaidabaoma/econ-site/internal/storage"
	"github.com/wokaidabaoma/econ-site/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting reminder worker")

	// Initialize storage backend
	kv, cleanup, err := newStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer cleanup()

	reminderWorker := worker.NewReminderWorker(cfg.Reminder, appstore.NewStore(kv))

	if next, err := reminderWorker.NextRun(time.Now()); err == nil {
		log.Info().Time("next_run", next).Msg("Reminder schedule loaded")
	}

	// Create context that cancels on shutdown signal
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down reminder worker...")
		cancel()
	}()

	if err := reminderWorker.Start(ctx); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("Reminder worker failed")
	}

	reminderWorker.Stop()
	log.Info().Msg("Reminder worker exited")
}

func newStorage(cfg *config.Config) (storage.Store, func(), error) {
	switch cfg.Storage.Backend {
	case "redis":
		store, err := storage.NewRedisStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case "file":
		store, err := storage.NewFileStore(cfg.Storage.File.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}
