// Command api is the Streamsong journey dashboard API server.
//
// Usage:
//
//	journey-api
//	API_PORT=8080 journey-api
//
// @title Streamsong Journey API
// @version 1.0.0
// @description Guest journey email automation: pre-arrival and post-play campaign previews, runs, and stats.
// @BasePath /api/v1
// @schemes http https
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

	"github.com/jimbobirecode/streamsong-dashboard/internal/api"
	"github.com/jimbobirecode/streamsong-dashboard/internal/cache"
	"github.com/jimbobirecode/streamsong-dashboard/internal/config"
	"github.com/jimbobirecode/streamsong-dashboard/internal/db"
	"github.com/jimbobirecode/streamsong-dashboard/internal/journey"
	"github.com/jimbobirecode/streamsong-dashboard/internal/mailer"
	"github.com/jimbobirecode/streamsong-dashboard/internal/store"

	_ "github.com/jimbobirecode/streamsong-dashboard/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
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

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Journey engine. The sender is nil-safe when SendGrid is not
	// configured; live runs are refused at the handler, previews still work.
	sender := mailer.New(cfg.SendGridAPIKey, cfg.FromEmail, cfg.FromName, logger)
	if sender == nil {
		logger.Info("SendGrid not configured; live runs disabled")
	}
	bookings := store.New(pool.Pool, logger)
	engine := journey.NewEngine(bookings, sender, cfg.Campaigns(), logger)

	// Create router
	router := api.NewRouter(engine, bookings, pool, appCache, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Streamsong Journey API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
