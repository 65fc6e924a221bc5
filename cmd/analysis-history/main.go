package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"analysis-history/internal/api"
	"analysis-history/internal/config"
	"analysis-history/internal/history"
	"analysis-history/internal/metrics"
	"analysis-history/internal/source"
	"analysis-history/web"
)

func main() {
	// A missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(2)
	}

	logger := newLogger(cfg.LogLevel)
	logConfig(logger, cfg)

	m := metrics.NewMetrics()

	var (
		store history.Store
		src   source.Source
	)
	shutdownCtx, stopHealth := context.WithCancel(context.Background())
	defer stopHealth()

	if cfg.BackendURL != "" {
		remote, err := source.NewRemote(cfg.BackendURL)
		if err != nil {
			logger.Error("failed to create backend source", "err", err)
			os.Exit(2)
		}
		src = remote

		checker := &source.HealthChecker{
			Remote:   remote,
			Interval: cfg.HealthCheckInterval,
			Timeout:  cfg.HealthCheckTimeout,
			Logger:   logger,
			Report:   m.UpdateBackendHealth,
		}
		go checker.Run(shutdownCtx)
	} else {
		switch cfg.Storage {
		case config.StorageMemory:
			store = history.NewMemoryStore(cfg.StorageMaxRows)
		default:
			s, err := history.NewSQLiteStore(cfg.StoragePath, cfg.StorageMaxRows, logger)
			if err != nil {
				logger.Error("failed to open sqlite store", "path", cfg.StoragePath, "err", err)
				os.Exit(2)
			}
			store = s
		}
		defer store.Close()
		src = source.NewLocal(store)
	}

	staticFS, err := web.Assets()
	if err != nil {
		logger.Error("failed to load static assets", "err", err)
		os.Exit(2)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", api.NewServer(cfg, src, store, m, staticFS, logger))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting analysis-history", "listen", cfg.ListenAddr, "backend", cfg.BackendURL)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down")
	stopHealth()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

func newLogger(level string) *slog.Logger {
	lvl := new(slog.LevelVar)
	switch level {
	case "debug":
		lvl.Set(slog.LevelDebug)
	case "info":
		lvl.Set(slog.LevelInfo)
	case "warn", "warning":
		lvl.Set(slog.LevelWarn)
	case "error":
		lvl.Set(slog.LevelError)
	default:
		lvl.Set(slog.LevelInfo)
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(h)
}

func logConfig(logger *slog.Logger, cfg config.Config) {
	logger.Info("configuration",
		"listen_addr", cfg.ListenAddr,
		"backend_url", cfg.BackendURL,
		"storage", string(cfg.Storage),
		"storage_path", cfg.StoragePath,
		"storage_max_rows", cfg.StorageMaxRows,
		"default_limit", cfg.DefaultLimit,
		"max_list_limit", cfg.MaxListLimit,
		"max_pair_limit", cfg.MaxPairLimit,
		"ingest_enabled", cfg.IngestEnabled,
		"health_check_interval", cfg.HealthCheckInterval,
		"health_check_timeout", cfg.HealthCheckTimeout,
		"cors_allow_origin", cfg.CORSAllowOrigin,
		"log_level", cfg.LogLevel,
	)
}
