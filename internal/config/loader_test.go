package config_test

import (
	"strings"
	"testing"

	"github.com/MrWong99/wayfarer/internal/config"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "invalid log level",
			yaml:    "server:\n  log_level: verbose\n",
			wantErr: "server.log_level",
		},
		{
			name:    "empty static dir",
			yaml:    "content:\n  static_dir: \"\"\n",
			wantErr: "content.static_dir is required",
		},
		{
			name:    "watch without dynamic dir",
			yaml:    "content:\n  watch: true\n",
			wantErr: "content.watch requires content.dynamic_dir",
		},
		{
			name:    "bad engine version",
			yaml:    "content:\n  engine_version: latest\n",
			wantErr: "content.engine_version",
		},
		{
			name:    "negative debounce",
			yaml:    "content:\n  watch_debounce: -1s\n",
			wantErr: "content.watch_debounce",
		},
		{
			name: "watch with dynamic dir",
			yaml: "content:\n  dynamic_dir: generated\n  watch: true\n",
		},
		{
			name: "same static and dynamic dir only warns",
			yaml: "content:\n  static_dir: content\n  dynamic_dir: ./content/\n  watch: true\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromReader(strings.NewReader(tc.yaml))
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q should contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Server.LogLevel = "loud"
	cfg.Server.ListenAddr = ""
	cfg.Content.StaticDir = ""

	err := config.Validate(cfg)
	if err == nil {
		t.Fatal("expected errors, got nil")
	}
	for _, want := range []string{"server.log_level", "server.listen_addr", "content.static_dir"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s, got: %v", want, err)
		}
	}
}
