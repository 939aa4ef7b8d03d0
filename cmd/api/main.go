// Command api is the Swiss Tournament API server.
//
// Usage:
//
//	tournament-api
//	API_PORT=8080 tournament-api

// @title Swiss Tournament API
// @version 1.0.0
// @description Swiss-system tournament manager: player and tournament registration, match reporting, standings and next-round pairings.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Swiss Tournament
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/swiss-tournament/internal/api"
	"github.com/albapepper/swiss-tournament/internal/api/handler"
	"github.com/albapepper/swiss-tournament/internal/archive"
	"github.com/albapepper/swiss-tournament/internal/cache"
	"github.com/albapepper/swiss-tournament/internal/config"
	"github.com/albapepper/swiss-tournament/internal/db"
	"github.com/albapepper/swiss-tournament/internal/listener"
	"github.com/albapepper/swiss-tournament/internal/maintenance"
	"github.com/albapepper/swiss-tournament/internal/store"

	_ "github.com/albapepper/swiss-tournament/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	st := store.New(pool)
	h := handler.New(st, pool, appCache, logger)

	// Writes made by the CLI or another replica invalidate our reads.
	go listener.Start(ctx, cfg.DatabaseURL, func(int64) { h.InvalidateReads() }, logger)

	if cfg.ArchiveEnabled() {
		client, err := archive.NewS3Client(ctx, cfg)
		if err != nil {
			logger.Error("Failed to configure snapshot archive", "error", err)
			os.Exit(1)
		}
		exporter := archive.NewExporter(client, st, cfg.ArchiveBucket, cfg.ArchiveGzip, logger)
		go maintenance.Start(ctx, maintenance.Config{SnapshotInterval: cfg.SnapshotInterval}, exporter, logger)
	} else {
		logger.Info("Snapshot archive disabled (no ARCHIVE_BUCKET)")
	}

	router := api.NewRouter(h, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting Swiss Tournament API",
			"addr", addr,
			"environment", cfg.Environment,
			"admin_token", cfg.AdminToken != "",
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
