package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Settings.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.Settings.LogLevel)
	}
	if cfg.Settings.Timeout != 5*time.Minute {
		t.Errorf("Timeout = %v, want 5m", cfg.Settings.Timeout)
	}
	if cfg.Settings.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Settings.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"codex runtime", func(c *Config) { c.Settings.Runtime = "codex" }, false},
		{"claude runtime", func(c *Config) { c.Settings.Runtime = "claude" }, false},
		{"unknown runtime", func(c *Config) { c.Settings.Runtime = "gemini" }, true},
		{"negative workers", func(c *Config) { c.Settings.Workers = -1 }, true},
		{"negative timeout", func(c *Config) { c.Settings.Timeout = -time.Second }, true},
		{"bad log level", func(c *Config) { c.Settings.LogLevel = "loud" }, true},
		{"empty log level", func(c *Config) { c.Settings.LogLevel = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMergeConfigs(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Settings: Settings{
			LogLevel: "debug",
			Runtime:  "claude",
			Workers:  8,
		},
	}

	merged := mergeConfigs(base, override)

	if merged.Settings.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want override", merged.Settings.LogLevel)
	}
	if merged.Settings.Runtime != "claude" {
		t.Errorf("Runtime = %q, want override", merged.Settings.Runtime)
	}
	if merged.Settings.Workers != 8 {
		t.Errorf("Workers = %d, want override", merged.Settings.Workers)
	}
	if merged.Settings.Timeout != 5*time.Minute {
		t.Errorf("Timeout = %v, want base default preserved", merged.Settings.Timeout)
	}
	if merged.Version != "1" {
		t.Errorf("Version = %q, want base default preserved", merged.Version)
	}
}

func TestLoadProjectOverridesGlobal(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	t.Setenv("HOME", home)

	writeConfig(t, filepath.Join(home, ".sklab"), `version: "1"
settings:
  log_level: debug
  runtime: codex
  workers: 2
`)
	writeConfig(t, filepath.Join(project, ".sklab"), `settings:
  runtime: claude
`)

	loader, err := NewLoader(project)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Settings.Runtime != "claude" {
		t.Errorf("Runtime = %q, project should win", cfg.Settings.Runtime)
	}
	if cfg.Settings.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, global should apply when project is silent", cfg.Settings.LogLevel)
	}
	if cfg.Settings.Workers != 2 {
		t.Errorf("Workers = %d, want global value", cfg.Settings.Workers)
	}
	if cfg.Settings.Timeout != 5*time.Minute {
		t.Errorf("Timeout = %v, want default", cfg.Settings.Timeout)
	}
}

func TestLoadMissingFilesUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	loader, err := NewLoader(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Settings.Workers != 4 || cfg.Settings.LogLevel != "info" {
		t.Errorf("cfg = %+v, want defaults", cfg.Settings)
	}
}

func TestLoadRejectsInvalidMerged(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	writeConfig(t, filepath.Join(project, ".sklab"), `settings:
  runtime: gemini
`)

	loader, err := NewLoader(project)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := loader.Load(); err == nil {
		t.Fatal("expected validation error for unknown runtime")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("settings:\n  workers: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	loader, err := NewLoader(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := loader.LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Settings.Workers != 1 {
		t.Errorf("Workers = %d, want 1", cfg.Settings.Workers)
	}
	if cfg.Settings.LogLevel != "info" {
		t.Errorf("LogLevel = %q, defaults should fill the gaps", cfg.Settings.LogLevel)
	}

	if _, err := loader.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing explicit config file should error")
	}
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
