package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

// Note: viper state is process-global, so these tests reset it and cannot
// run in parallel with each other.

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"DocumentPath", cfg.DocumentPath, "board.boardkit"},
		{"AutosaveDebounceMS", cfg.AutosaveDebounceMS, 1500},
		{"TelemetryPath", cfg.TelemetryPath, ""},
		{"ManifestDir", cfg.ManifestDir, ""},
		{"Verbose", cfg.Verbose, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	viper.Reset()
	viper.SetEnvPrefix("BOARDKIT")
	viper.AutomaticEnv()
	t.Setenv("BOARDKIT_AUTOSAVE_DEBOUNCE_MS", "250")
	viper.BindEnv("autosave_debounce_ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AutosaveDebounceMS != 250 {
		t.Errorf("AutosaveDebounceMS = %d, want 250", cfg.AutosaveDebounceMS)
	}
	if got := cfg.AutosaveDebounce(); got != 250*time.Millisecond {
		t.Errorf("AutosaveDebounce = %v, want 250ms", got)
	}
}

func TestLoad_RejectsNonPositiveDebounce(t *testing.T) {
	viper.Reset()
	viper.Set("autosave_debounce_ms", 0)

	if _, err := Load(); err == nil {
		t.Error("Load accepted autosave_debounce_ms = 0")
	}
}
