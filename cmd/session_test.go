package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/boardkit/boardkit/internal/board"
	"github.com/boardkit/boardkit/internal/contract"
)

const weatherManifest = `module_id = "weather-module"

[[provides]]
id = "acme.weather.v1"
name = "Weather"
version = "1.0.0"

[[consumes]]
contract_id = "boardkit.todo.v1"
state_key = "todoSource"
`

func TestLoadManifests(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "weather.toml"), []byte(weatherManifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	// Non-TOML files in the directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("docs"), 0o644); err != nil {
		t.Fatalf("write readme: %v", err)
	}

	contracts, consumers := registriesForTest(t)
	if err := loadManifests(dir, contracts, consumers); err != nil {
		t.Fatalf("loadManifests: %v", err)
	}

	c, ok := contracts.Get("acme.weather.v1")
	if !ok {
		t.Fatal("manifest contract not registered")
	}
	if c.ProviderID != "weather-module" {
		t.Errorf("provider = %q, want weather-module", c.ProviderID)
	}
	if !consumers.IsConsumer("weather-module") {
		t.Error("manifest consumer declaration not registered")
	}
}

func TestLoadManifests_EmptyDirSkipsScan(t *testing.T) {
	t.Parallel()
	contracts, consumers := registriesForTest(t)
	if err := loadManifests("", contracts, consumers); err != nil {
		t.Fatalf("loadManifests with empty dir: %v", err)
	}
}

func TestWidgetTitle(t *testing.T) {
	t.Parallel()
	d := board.NewDocument("titles")
	d.AddWidget(board.Widget{ID: "w1", ModuleID: contract.ModuleTodo, Title: "Groceries"})
	d.AddWidget(board.Widget{ID: "w2", ModuleID: contract.ModuleNotes})

	tests := []struct {
		name string
		id   string
		want string
	}{
		{"titled widget", "w1", "Groceries"},
		{"untitled falls back to id", "w2", "w2"},
		{"missing widget flagged", "gone", "gone (missing)"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := widgetTitle(d, tt.id); got != tt.want {
				t.Errorf("widgetTitle(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}
