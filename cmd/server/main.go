package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/class-subjects/internal/config"
	"github.com/stemsi/class-subjects/internal/database"
	"github.com/stemsi/class-subjects/internal/handler"
	"github.com/stemsi/class-subjects/internal/logger"
	"github.com/stemsi/class-subjects/internal/repository"
	"github.com/stemsi/class-subjects/internal/router"
	"github.com/stemsi/class-subjects/internal/service"
	"github.com/stemsi/class-subjects/internal/validator"
	"github.com/stemsi/class-subjects/internal/websocket"
	"github.com/stemsi/class-subjects/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.SubjectsStore).
		Bool("strict", cfg.StrictSubjects).
		Bool("auth_required", cfg.AuthRequired).
		Msg("Starting class subjects API")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Initialize Repository ─────────────────────────────────────────
	subjectsRepo, rdb, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.SubjectsStore).Msg("Failed to open subjects store")
	}
	defer closeStore()

	// ─── Initialize Services ──────────────────────────────────────────
	hub := websocket.NewHub()

	// With a shared Redis store, live feed events travel through Redis so
	// subscribers on every instance see every submission.
	var publisher service.RecordPublisher
	if rdb != nil {
		relay := worker.NewFeedRelay(rdb, hub, cfg.SubjectsRedisKey, log)
		go relay.Start(ctx)
		publisher = relay
	}

	authService := service.NewAuthService(cfg)
	subjectService := service.NewSubjectService(subjectsRepo, hub, publisher, cfg.StrictSubjects, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Subject: handler.NewSubjectHandler(subjectService),
		Feed:    handler.NewFeedHandler(subjectService, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, authService, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Close live feeds so their handlers return before Shutdown waits.
	hub.Close()

	// 2. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// openStore builds the repository selected by SUBJECTS_STORE. The Redis
// client is returned only for the redis store. The returned func releases
// any connection the store holds.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (repository.SubjectsRepository, *redis.Client, func(), error) {
	switch cfg.SubjectsStore {
	case config.StoreMemory:
		log.Warn().Msg("Using in-memory subjects store; records are lost on restart")
		return repository.NewMemorySubjectsRepository(), nil, func() {}, nil

	case config.StoreRedis:
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			return nil, nil, nil, err
		}
		return repository.NewRedisSubjectsRepository(rdb, cfg.SubjectsRedisKey), rdb, func() { rdb.Close() }, nil

	case config.StorePostgres:
		if cfg.AutoMigrate {
			if err := database.MigrateUp(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
				return nil, nil, nil, err
			}
		}
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, nil, nil, err
		}
		return repository.NewPostgresSubjectsRepository(pool), nil, pool.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown SUBJECTS_STORE %q", cfg.SubjectsStore)
	}
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
