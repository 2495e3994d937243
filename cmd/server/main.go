package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/openroomhq/openroom/internal/api"
	"github.com/openroomhq/openroom/internal/chat"
	"github.com/openroomhq/openroom/internal/config"
	"github.com/openroomhq/openroom/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}
	logger = logger.With().Str("instance", uuid.NewString()).Logger()

	ctx := context.Background()

	// Initialize record store: first configured backend wins
	recordStore, backend, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", backend).Msg("store connection failed")
	}
	defer recordStore.Close()
	logger.Info().Str("backend", backend).Msg("record store ready")

	// Optional redis for rate limiting
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisClient.Close()
		logger.Info().Msg("connected to redis")
	}

	// Core components
	registry := chat.NewRegistry(recordStore, logger)
	ledger := chat.NewLedger(recordStore, logger)
	sweeper := chat.NewSweeper(registry, cfg.SweepInterval, cfg.PresenceTimeout, logger)

	// Start the inactivity sweeper with its own cancellable lifecycle
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		_ = sweeper.Run(sweepCtx)
	}()

	// Create router
	router := api.NewRouter(logger, registry, ledger, recordStore, redisClient)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting openroom server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Stop the sweeper before closing the store out from under it
	stopSweeper()
	<-sweeperDone

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

// openStore picks the record-store backend from configuration.
func openStore(ctx context.Context, cfg *config.Config) (store.RecordStore, string, error) {
	switch {
	case cfg.MongoURI != "":
		s, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
		return s, "mongodb", err
	case cfg.DatabaseURL != "":
		s, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		return s, "postgres", err
	case cfg.SQLitePath != "":
		s, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		return s, "sqlite", err
	default:
		return store.NewMemoryStore(), "memory", nil
	}
}
