// Package main is the entrypoint for the PaperDigest API server and worker pool.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansium/paperdigest/internal/api"
	"github.com/ansium/paperdigest/internal/api/handler"
	mw "github.com/ansium/paperdigest/internal/api/middleware"
	"github.com/ansium/paperdigest/internal/api/response"
	"github.com/ansium/paperdigest/internal/config"
	"github.com/ansium/paperdigest/internal/extract"
	"github.com/ansium/paperdigest/internal/history"
	"github.com/ansium/paperdigest/internal/interpret"
	"github.com/ansium/paperdigest/internal/papers"
	"github.com/ansium/paperdigest/internal/queue"
	"github.com/ansium/paperdigest/internal/store"
	"github.com/ansium/paperdigest/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, failing fast on invalid values
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env,
		"interpreter_configured", cfg.Interpreter.APIKey != "",
		"search_configured", cfg.Search.APIKey != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis-backed job queue
	jobQueue, err := queue.NewRedisQueue(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create job queue: %w", err)
	}
	defer jobQueue.Close()

	if err := jobQueue.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create store and pipeline components
	pgStore := store.NewPostgresStore(pool)

	extractor := extract.New()
	interpreter := interpret.NewHTTPClient(cfg.Interpreter)
	searcher := papers.NewHTTPClient(cfg.Search)
	recorder := history.NewRecorder(pgStore)

	jobService := worker.NewService(pgStore, jobQueue)
	workerPool := worker.NewPool(pgStore, jobQueue, extractor, interpreter, searcher, recorder,
		cfg.Worker, cfg.Search.Wait)

	// 6. Start worker pool
	workerDone := make(chan struct{})
	go func() {
		workerPool.Run(ctx)
		close(workerDone)
	}()
	slog.Info("worker pool started", "concurrency", cfg.Worker.Concurrency)

	// 7. Build router with dependencies
	auth := mw.NewAuth(pgStore)
	rateLimit := mw.NewRateLimit(jobQueue, 60)

	deps := api.Dependencies{
		Auth:      auth,
		RateLimit: rateLimit,

		HealthHandler:  healthHandler(pgStore, jobQueue),
		SubmitHandler:  handler.NewSubmitHandler(jobService, os.TempDir()),
		PollJobHandler: handler.NewPollHandler(pgStore, jobQueue),
		HistoryHandler: handler.NewHistoryHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// Wait for in-flight jobs to drain
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		slog.Warn("worker pool did not drain before shutdown deadline")
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks database and queue connectivity.
func healthHandler(s store.Store, q queue.Queue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"queue":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := q.Ping(r.Context()); err != nil {
			checks["queue"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["queue"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
