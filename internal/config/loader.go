package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path, applies environment
// overrides and returns a validated [Config]. An empty path skips the file.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		if err := ApplyEnv(cfg); err != nil {
			return nil, err
		}
		if err := Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of [Default], applies
// environment overrides and validates the result. An empty document is
// valid.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with every WAYFARER_* variable that is set.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	return nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listen_addr is required"))
	}

	// Content
	if cfg.Content.StaticDir == "" {
		errs = append(errs, errors.New("content.static_dir is required"))
	}
	if cfg.Content.Watch && cfg.Content.DynamicDir == "" {
		errs = append(errs, errors.New("content.watch requires content.dynamic_dir"))
	}
	if cfg.Content.WatchDebounce < 0 {
		errs = append(errs, fmt.Errorf("content.watch_debounce %s must not be negative", cfg.Content.WatchDebounce))
	}
	if v := cfg.Content.EngineVersion; v != "" {
		if _, err := semver.NewVersion(v); err != nil {
			errs = append(errs, fmt.Errorf("content.engine_version %q is not a semantic version: %w", v, err))
		}
	}
	if cfg.Content.DynamicDir != "" && filepath.Clean(cfg.Content.DynamicDir) == filepath.Clean(cfg.Content.StaticDir) {
		slog.Warn("content.dynamic_dir equals content.static_dir; generated packages will also load as static content on restart",
			"dir", cfg.Content.StaticDir)
	}
	if cfg.Content.DynamicDir != "" && !cfg.Content.Watch {
		slog.Warn("content.dynamic_dir is set but content.watch is false; dynamic packages are only read at startup")
	}

	// Ledger
	if cfg.Ledger.PostgresDSN == "" && cfg.Ledger.RunID != "" {
		slog.Warn("ledger.run_id is set but ledger.postgres_dsn is empty; load history will not be persisted")
	}

	return errors.Join(errs...)
}
