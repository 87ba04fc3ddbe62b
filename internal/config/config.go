// Package config loads runtime configuration for a Boardkit session.
// Values come from .boardkit.yaml, BOARDKIT_* env vars, and CLI flags, in
// ascending precedence.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for a Boardkit session.
type Config struct {
	// DocumentPath is the default board document to open.
	DocumentPath string `mapstructure:"document_path"`

	// AutosaveDebounceMS is how long the autosaver waits after the last
	// dirty mark before writing, in milliseconds.
	AutosaveDebounceMS int `mapstructure:"autosave_debounce_ms"`

	// TelemetryPath is the JSONL audit file. Empty disables telemetry.
	TelemetryPath string `mapstructure:"telemetry_path"`

	// ManifestDir holds third-party module manifests loaded at startup,
	// in addition to the built-in catalogue. Empty skips the scan.
	ManifestDir string `mapstructure:"manifest_dir"`

	Verbose bool `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("document_path", "board.boardkit")
	viper.SetDefault("autosave_debounce_ms", 1500)
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("manifest_dir", "")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.AutosaveDebounceMS <= 0 {
		return Config{}, fmt.Errorf("config: autosave_debounce_ms must be positive, got %d", cfg.AutosaveDebounceMS)
	}
	return cfg, nil
}

// AutosaveDebounce returns the debounce interval as a duration.
func (c Config) AutosaveDebounce() time.Duration {
	return time.Duration(c.AutosaveDebounceMS) * time.Millisecond
}
