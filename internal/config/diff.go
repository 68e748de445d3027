package config

// ConfigDiff describes what changed between two configs.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// ReadinessPolicyChanged is true when content.fail_on_missing_references
	// changed. It applies without a restart.
	ReadinessPolicyChanged  bool
	FailOnMissingReferences bool

	// RestartRequired lists the settings that changed but only take effect
	// after a restart.
	RestartRequired []string
}

// Changed reports whether anything differs.
func (d ConfigDiff) Changed() bool {
	return d.LogLevelChanged || d.ReadinessPolicyChanged || len(d.RestartRequired) > 0
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	// Log level
	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Content.FailOnMissingReferences != new.Content.FailOnMissingReferences {
		d.ReadinessPolicyChanged = true
		d.FailOnMissingReferences = new.Content.FailOnMissingReferences
	}

	restart := []struct {
		name    string
		changed bool
	}{
		{"server.listen_addr", old.Server.ListenAddr != new.Server.ListenAddr},
		{"content.static_dir", old.Content.StaticDir != new.Content.StaticDir},
		{"content.dynamic_dir", old.Content.DynamicDir != new.Content.DynamicDir},
		{"content.watch", old.Content.Watch != new.Content.Watch},
		{"content.watch_debounce", old.Content.WatchDebounce != new.Content.WatchDebounce},
		{"content.halt_on_duplicate", old.Content.HaltOnDuplicate != new.Content.HaltOnDuplicate},
		{"content.engine_version", old.Content.EngineVersion != new.Content.EngineVersion},
		{"ledger.postgres_dsn", old.Ledger.PostgresDSN != new.Ledger.PostgresDSN},
		{"ledger.run_id", old.Ledger.RunID != new.Ledger.RunID},
		{"telemetry.service_name", old.Telemetry.ServiceName != new.Telemetry.ServiceName},
	}
	for _, r := range restart {
		if r.changed {
			d.RestartRequired = append(d.RestartRequired, r.name)
		}
	}

	return d
}
