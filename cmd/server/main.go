/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave ledger server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env file, then environment)
  2. Parse command-line flags (override port and database)
  3. Initialize SQLite store and seed the default leave types
  4. Pick the approval lock (Redis when REDIS_ADDR is set, else in-process)
  5. Create API handler and router
  6. Start the credit expiry scheduler
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: PORT or 8080)
  -db      SQLite database path (default: DB_PATH or leave.db)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler
  4. Close the lock and database connections

EXAMPLES:
  # Run with file database
  ./server -db="./data/leave.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Shared approval lock across instances
  REDIS_ADDR=localhost:6379 ./server

ENVIRONMENT:
  See config/config.go for the full list.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/leave-ledger/api"
	"github.com/warp/leave-ledger/config"
	"github.com/warp/leave-ledger/lock"
	"github.com/warp/leave-ledger/store/sqlite"
	"github.com/warp/leave-ledger/timeoff"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Flags
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	log := setupLogger(cfg.Env, cfg.SlogLevel())
	log.Info("starting leave ledger", slog.String("env", cfg.Env), slog.String("timezone", cfg.Timezone))
	log.Debug("debug messages are enabled")

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Error("failed to init storage", slog.String("db", *dbPath), slog.Any("err", err))
		os.Exit(1)
	}
	defer store.Close()

	seeded, err := store.SeedLeaveTypes(context.Background(), timeoff.DefaultLeaveTypes(cfg.UnpaidLeaveLabel))
	if err != nil {
		log.Error("failed to seed leave types", slog.Any("err", err))
		os.Exit(1)
	}
	if seeded {
		log.Info("seeded default leave types")
	}

	// Approval lock
	var locker lock.Locker = lock.NewLocalLock()
	if cfg.RedisAddr != "" {
		redisLock, err := lock.NewRedisLock(cfg.RedisAddr)
		if err != nil {
			log.Error("failed to init redis lock", slog.String("addr", cfg.RedisAddr), slog.Any("err", err))
			os.Exit(1)
		}
		defer redisLock.Close()
		locker = redisLock
		log.Info("using redis approval lock", slog.String("addr", cfg.RedisAddr))
	}

	handler := api.NewHandler(store, api.Options{
		Locker:          locker,
		Logger:          log,
		Location:        cfg.Location(),
		MonthlyAccrual:  cfg.Accrual(),
		UnpaidLabel:     cfg.UnpaidLeaveLabel,
		PrimaryFallback: cfg.PrimaryLeaveFallback,
		LateAfter:       cfg.LateAfterSeconds(),
	})
	router := api.NewRouter(handler, api.RouterOptions{
		Logger:      log,
		LogLevel:    cfg.SlogLevel(),
		CORSOrigins: cfg.CORSOrigins,
	})

	scheduler := api.NewCreditExpiryScheduler(store, log)
	scheduler.Location = cfg.Location()
	scheduler.CheckInterval = cfg.CreditExpiryInterval
	scheduler.Start()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", slog.Any("err", err))
	}
	scheduler.Stop()

	log.Info("server stopped")
}

// setupLogger picks a readable text handler for local runs and JSON elsewhere.
func setupLogger(env string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	switch env {
	case config.EnvLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
}
