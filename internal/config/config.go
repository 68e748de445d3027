// Package config provides the configuration schema and loader for the
// Wayfarer content host.
package config

import (
	"log/slog"
	"time"
)

// LogLevel controls log verbosity for the Wayfarer host.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level returns the slog level for l. Unknown levels map to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Config is the root configuration structure for Wayfarer.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
// Every setting can be overridden with a WAYFARER_* environment variable.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Content   ContentConfig   `yaml:"content"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig holds network and logging settings for the admin server.
type ServerConfig struct {
	// ListenAddr is the TCP address serving /healthz, /readyz and /metrics
	// (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr" env:"WAYFARER_LISTEN_ADDR"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level" env:"WAYFARER_LOG_LEVEL"`
}

// ContentConfig controls where packages come from and how strictly they are
// ingested.
type ContentConfig struct {
	// StaticDir holds the packages loaded once at startup, in file-name
	// order.
	StaticDir string `yaml:"static_dir" env:"WAYFARER_STATIC_DIR"`

	// DynamicDir receives packages generated at runtime. Empty disables
	// dynamic content.
	DynamicDir string `yaml:"dynamic_dir" env:"WAYFARER_DYNAMIC_DIR"`

	// Watch enables the dynamic directory watcher.
	Watch bool `yaml:"watch" env:"WAYFARER_WATCH"`

	// WatchDebounce is how long a dynamic package file must be quiet before
	// it is loaded.
	WatchDebounce time.Duration `yaml:"watch_debounce" env:"WAYFARER_WATCH_DEBOUNCE"`

	// FailOnMissingReferences makes dangling venue references fatal at
	// startup and marks the host not ready afterwards.
	FailOnMissingReferences bool `yaml:"fail_on_missing_references" env:"WAYFARER_FAIL_ON_MISSING_REFERENCES"`

	// HaltOnDuplicate stops a package at its first duplicate entity.
	HaltOnDuplicate bool `yaml:"halt_on_duplicate" env:"WAYFARER_HALT_ON_DUPLICATE"`

	// EngineVersion is checked against each package's requiresEngine
	// constraint. Empty disables the check.
	EngineVersion string `yaml:"engine_version" env:"WAYFARER_ENGINE_VERSION"`
}

// LedgerConfig configures persistence of the package load history.
type LedgerConfig struct {
	// PostgresDSN is the connection string. Empty keeps the history in
	// memory only.
	PostgresDSN string `yaml:"postgres_dsn" env:"WAYFARER_POSTGRES_DSN"`

	// RunID groups the registrations of one process. Empty generates one.
	RunID string `yaml:"run_id" env:"WAYFARER_RUN_ID"`
}

// TelemetryConfig configures OpenTelemetry.
type TelemetryConfig struct {
	// ServiceName is reported in telemetry. Default: "wayfarer".
	ServiceName string `yaml:"service_name" env:"WAYFARER_SERVICE_NAME"`
}

// Default returns the configuration used for any setting the file and the
// environment leave empty.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
			LogLevel:   LogInfo,
		},
		Content: ContentConfig{
			StaticDir:     "content",
			WatchDebounce: 250 * time.Millisecond,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "wayfarer",
		},
	}
}
