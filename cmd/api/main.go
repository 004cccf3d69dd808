package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/wokaidabaoma/econ-site/internal/api"
	"github.com/wokaidabaoma/econ-site/internal/appstore"
	"github.com/wokaidabaoma/econ-site/internal/config"
	"github.com/wokaidabaoma/econ-site/internal/favorites"
	"github.com/wokaidabaoma/econ-site/internal/feed"
	"github.com/wokaidabaoma/econ-site/internal/logger"
	"github.com/wokaidabaoma/econ-site/internal/storage"

	"github.com/gin-gonic/gin"
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

	log.Info().Str("version", cfg.App.Version).Msg("Starting API server")

	// Initialize storage backend
	kv, cleanup, err := newStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer cleanup()

	// Initialize stores and feed loader
	favoriteStore := favorites.NewStore(kv)
	appStore := appstore.NewStore(kv)
	loader := feed.NewLoader(cfg.Feed)

	// Initialize API handler
	handler := api.NewHandler(loader, favoriteStore, appStore, cfg)

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(api.CORSMiddleware())
	router.Use(api.LoggingMiddleware())
	router.Use(api.RecoveryMiddleware())

	// Setup routes
	api.SetupRoutes(router, handler)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Create context for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Shutdown server
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
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
