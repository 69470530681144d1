// main is the entry point of the Schools API application.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file (and .env, if present)
//  2. Initialise the logger
//  3. Open the database and apply migrations
//  4. Seed demo data when configured
//  5. Register all HTTP routes
//  6. Start the HTTP server in a separate goroutine
//  7. Block until an OS signal (Ctrl+C / kill) arrives
//  8. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/schools-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/schools-api
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

	"github.com/aanand-mishra/schools-api/internal/config"
	"github.com/aanand-mishra/schools-api/internal/http/router"
	"github.com/aanand-mishra/schools-api/internal/logger"
	"github.com/aanand-mishra/schools-api/internal/service"
	"github.com/aanand-mishra/schools-api/internal/storage"
	"github.com/aanand-mishra/schools-api/internal/storage/postgres"
	"github.com/aanand-mishra/schools-api/internal/storage/sqlite"
	_ "github.com/joho/godotenv/autoload" // loads .env into the environment before config is read
)

// database is a storage backend that can also load demo data.
type database interface {
	storage.Storage
	Seed(ctx context.Context, now time.Time) (bool, error)
}

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := logger.Setup(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting schools-api",
		slog.String("env", cfg.Env),
		slog.String("storage_driver", cfg.Driver),
	)

	ctx := context.Background()

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	// Everything past this point only sees the storage.Storage interface.
	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	log.Info("storage initialised", slog.String("driver", cfg.Driver))

	// ── 4. Seed ───────────────────────────────────────────────────────────
	if cfg.Seed {
		seeded, err := db.Seed(ctx, time.Now().UTC().Truncate(time.Microsecond))
		if err != nil {
			log.Error("failed to seed database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		log.Info("seed finished", slog.Bool("inserted", seeded))
	}

	// ── 5. Register HTTP Routes ───────────────────────────────────────────
	handler := router.New(router.Deps{
		Log:             log,
		DB:              db,
		Schools:         service.NewSchools(db),
		Students:        service.NewStudents(db),
		DefaultPageSize: cfg.Pagination.DefaultPageSize,
	})

	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	// ── 6. Start Server in a Goroutine ────────────────────────────────────
	// ListenAndServe blocks; running it here lets main wait for a signal.
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// http.ErrServerClosed is the expected result of Shutdown.
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// ── 7. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		log.Info("shutdown signal received, stopping server...")
	case err := <-serverErr:
		log.Error("server encountered an error", slog.String("error", err.Error()))
		db.Close()
		os.Exit(1)
	}

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	// Stop accepting connections and wait for active requests, up to the
	// configured deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
		db.Close()
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// openDatabase connects to the backend named by cfg.Driver and migrates it.
func openDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger) (database, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.DriverSQLite:
		db, err := sqlite.New(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
