package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ai4biz/portal/internal/auth"
	"github.com/ai4biz/portal/internal/config"
	"github.com/ai4biz/portal/internal/core"
	"github.com/ai4biz/portal/internal/export"
	"github.com/ai4biz/portal/internal/logging"
	"github.com/ai4biz/portal/internal/metrics"
	"github.com/ai4biz/portal/internal/storage"
	"github.com/ai4biz/portal/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"storage_driver", cfg.Storage.Driver,
		"export_max_concurrent", cfg.Export.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"backup_enabled", cfg.Backup.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx := context.Background()

	// Open the persisted dataset
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	store, err := core.Open(ctx, backend, core.WithObserver(observer(m)))
	if err != nil {
		slog.Error("failed to load registrations", "storage", backend.Name(), "error", err)
		os.Exit(1)
	}
	slog.Info("registrations loaded", "storage", store.StorageName(), "count", store.Len())

	exports := core.NewExportLimiter(cfg.Export.MaxConcurrent, cfg.Export.MaxWait)
	server := web.NewServer(cfg, web.Deps{
		Store:    store,
		Auth:     auth.New(cfg.Auth),
		Renderer: export.NewRenderer(cfg.Export.Location()),
		Exports:  exports,
		Metrics:  m,
	})

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	var jobs sync.WaitGroup

	if cfg.Backup.Enabled {
		target, prefix, err := storage.OpenBackupTarget(ctx, cfg)
		if err != nil {
			slog.Error("failed to open backup target", "error", err)
			os.Exit(1)
		}
		scheduler := storage.NewBackupScheduler(store, target, storage.BackupConfig{
			Interval: cfg.Backup.Interval,
			Retain:   cfg.Backup.Retain,
			Prefix:   prefix,
		})
		jobs.Add(1)
		go func() {
			defer jobs.Done()
			scheduler.Start(jobCtx)
		}()
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Wait for in-flight exports to complete (with timeout)
		if status := exports.Status(); status.Active > 0 {
			slog.Info("waiting for exports to complete", "active", status.Active)
			if err := exports.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("exports did not complete in time", "error", err)
			}
		}

		jobs.Wait()
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		cancelJobs()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

// observer avoids handing core a typed-nil *metrics.Metrics.
func observer(m *metrics.Metrics) core.Observer {
	if m == nil {
		return nil
	}
	return m
}
