// Command wayfarer is the content host: it loads the static content packages,
// watches for generated ones and serves health and metrics endpoints.
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

	"github.com/MrWong99/wayfarer/internal/app"
	"github.com/MrWong99/wayfarer/internal/config"
	"github.com/MrWong99/wayfarer/internal/observe"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "", "path to the YAML configuration file (empty: defaults and WAYFARER_* variables)")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "wayfarer: config file %q not found\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "wayfarer: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	level := new(slog.LevelVar)
	level.Set(cfg.Server.LogLevel.Level())
	logger := newLogger(level)
	slog.SetDefault(logger)

	slog.Info("wayfarer starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"static_dir", cfg.Content.StaticDir,
		"dynamic_dir", cfg.Content.DynamicDir,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}

	application, err := app.New(ctx, cfg, app.WithLogger(logger))
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		_ = shutdownTelemetry(context.Background())
		return 1
	}

	// ── Config hot reload ─────────────────────────────────────────────────────
	if *configPath != "" {
		cw, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
			applyConfigChange(level, application, config.Diff(old, new))
		})
		if err != nil {
			slog.Warn("config hot reload disabled", "err", err)
		} else {
			defer cw.Stop()
		}
	}

	// ── Admin server ──────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           application.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("admin server error", "err", err)
			stop()
		}
	}()

	slog.Info("server ready, press Ctrl+C to shut down")

	exit := 0
	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		exit = 1
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("shutdown signal received, stopping…")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("admin server shutdown error", "err", err)
	}
	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		exit = 1
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Warn("telemetry shutdown error", "err", err)
	}
	slog.Info("goodbye")
	return exit
}

// applyConfigChange applies the hot-reloadable part of a config change and
// reports the rest.
func applyConfigChange(level *slog.LevelVar, a *app.App, d config.ConfigDiff) {
	if d.LogLevelChanged {
		level.Set(d.NewLogLevel.Level())
		slog.Info("log level changed", "level", d.NewLogLevel)
	}
	if d.ReadinessPolicyChanged {
		a.SetFailOnMissingReferences(d.FailOnMissingReferences)
		slog.Info("readiness policy changed", "fail_on_missing_references", d.FailOnMissingReferences)
	}
	if len(d.RestartRequired) > 0 {
		slog.Warn("config changes require a restart", "fields", d.RestartRequired)
	}
}

func newLogger(level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
