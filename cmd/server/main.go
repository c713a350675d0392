package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/rpattn/adminkit/internal/backend"
	"github.com/rpattn/adminkit/internal/backend/pgstore"
	"github.com/rpattn/adminkit/internal/config"
	"github.com/rpattn/adminkit/internal/logging"
	"github.com/rpattn/adminkit/internal/middleware"
)

func main() {
	configPath := flag.String("config", ".", "config file or directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if err := run(cfg, logger); err != nil {
		os.Exit(fail(logger, err))
	}
	_ = logger.Sync()
}

// fail logs err and flushes the logger before the process exits.
func fail(logger *zap.Logger, err error) int {
	logger.Error("server failed", zap.Error(err))
	_ = logger.Sync()
	return 1
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Server.Store == "memory" {
		n, err := backend.Seed(ctx, store, cfg)
		if err != nil {
			return err
		}
		logger.Info("seeded memory store", zap.Int("records", n))
	}

	handler := backend.NewHandler(store, backend.ResourcesFromConfig(cfg),
		backend.WithLogger(logger),
		backend.WithPageSize(cfg.Server.PageSize, cfg.Server.MaxPageSize),
	)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      corsHandler.Handler(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting admin backend",
			zap.String("addr", cfg.Server.Addr),
			zap.String("store", cfg.Server.Store),
			zap.Int("resources", len(cfg.Resources)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (backend.Store, func(), error) {
	names := make([]string, len(cfg.Resources))
	for i, rc := range cfg.Resources {
		names[i] = rc.Name
	}

	switch cfg.Server.Store {
	case "memory":
		return backend.NewMemoryStore(names...), func() {}, nil
	case "postgres":
		db, err := pgstore.Open(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := pgstore.Migrate(db, logger); err != nil {
			db.Close()
			return nil, nil, err
		}
		return pgstore.New(db, logger, names...), func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Server.Store)
	}
}
