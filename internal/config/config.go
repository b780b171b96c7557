// Package config loads and merges sklab configuration from the global
// (~/.sklab/config.yaml) and project (.sklab/config.yaml) locations.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete sklab configuration
type Config struct {
	Version  string   `yaml:"version"`
	Settings Settings `yaml:"settings"`
}

// Settings contains global configuration settings
type Settings struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file,omitempty"`

	// Runtime selects the agent CLI adapter: codex, claude, or empty
	// for auto-detection.
	Runtime string `yaml:"runtime,omitempty"`

	// Timeout bounds each trigger test session.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Workers caps concurrent trigger test sessions.
	Workers int `yaml:"workers,omitempty"`

	// TraceDir overrides where session traces are written. Relative
	// paths resolve against the skill directory.
	TraceDir string `yaml:"trace_dir,omitempty"`

	// GenerationModel is the model used by 'sklab generate'.
	GenerationModel string `yaml:"generation_model,omitempty"`

	// HistoryDB is the path to the run-history database. Empty uses
	// ~/.sklab/history.db.
	HistoryDB string `yaml:"history_db,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Settings: Settings{
			LogLevel: "info",
			Timeout:  5 * time.Minute,
			Workers:  4,
		},
	}
}

// Validate checks settings for values that cannot work.
func (c *Config) Validate() error {
	switch c.Settings.Runtime {
	case "", "codex", "claude":
	default:
		return fmt.Errorf("invalid runtime %q (want codex or claude)", c.Settings.Runtime)
	}
	if c.Settings.Workers < 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Settings.Workers)
	}
	if c.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Settings.Timeout)
	}
	switch c.Settings.LogLevel {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Settings.LogLevel)
	}
	return nil
}
