package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mira/lyrichase/internal/api"
	"github.com/mira/lyrichase/internal/config"
	"github.com/mira/lyrichase/internal/logger"
	"github.com/mira/lyrichase/internal/repository"
	"github.com/mira/lyrichase/internal/service"
	"github.com/mira/lyrichase/internal/source"
	"github.com/mira/lyrichase/internal/source/ytmusic"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		File:        cfg.Log.File,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAgeDays:  cfg.Log.MaxAgeDays,
		Compress:    cfg.Log.Compress,
		ServiceName: "lyrichase-api",
	})
	logger.SetDefaultLogger(appLogger)

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	songRepo := repository.NewSongRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	jobRepo := repository.NewJobRepository(db)

	// Initialize catalog sources
	sources := map[string]source.CatalogSource{
		ytmusic.SourceID: ytmusic.NewAdapter(&ytmusic.Config{
			BaseURL:           cfg.Catalog.BaseURL,
			Timeout:           cfg.Catalog.Timeout,
			PageSize:          cfg.Catalog.PageSize,
			MaxRetries:        cfg.Catalog.MaxRetries,
			RetryBackoff:      cfg.Catalog.RetryBackoff,
			RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		}, appLogger),
	}

	// Initialize services
	importer := service.NewImporter(songRepo, cfg.Importer.MinLyricLines)
	synthesizer := service.NewSynthesizer(challengeRepo)
	manager := service.NewManager(jobRepo, importer, synthesizer, sources, appLogger, &service.ManagerConfig{
		MaxConcurrentJobs: cfg.Importer.MaxConcurrentJobs,
		JobListLimit:      cfg.Importer.JobListLimit,
	})

	// Fail jobs orphaned by a previous process
	ctx := context.Background()
	if n, err := manager.FailStale(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to clean up stale jobs")
	} else if n > 0 {
		appLogger.WithField(logger.FieldCount, n).Warn("Marked stale jobs as failed")
	}

	// Setup router
	router := api.SetupRouter(cfg, appLogger, manager, importer, sources, songRepo, challengeRepo)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	// Let in-flight import jobs write their final state
	manager.Wait()

	appLogger.Info("Server exited")
}
