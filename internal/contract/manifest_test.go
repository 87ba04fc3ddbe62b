package contract

import (
	"path/filepath"
	"testing"
)

func TestManifestRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "chart-module.toml")

	m := &Manifest{
		ModuleID: "chart-module",
		Provides: []Contract{
			{ID: "boardkit.chart.v1", Name: "Chart", Version: "1.0.0", ProviderID: "chart-module"},
		},
		Consumes: []ConsumerDeclaration{
			{ModuleID: "chart-module", ContractID: "boardkit.table.v1", StateKey: "tableSource", SourceLabel: "Source table"},
		},
	}
	if err := SaveManifest(path, m); err != nil {
		t.Fatalf("SaveManifest: %v", err)
	}

	got, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if got.ModuleID != "chart-module" {
		t.Errorf("ModuleID = %q, want %q", got.ModuleID, "chart-module")
	}
	if len(got.Provides) != 1 || got.Provides[0].ID != "boardkit.chart.v1" {
		t.Errorf("Provides = %+v, want boardkit.chart.v1", got.Provides)
	}
	if len(got.Consumes) != 1 || got.Consumes[0].ContractID != "boardkit.table.v1" {
		t.Errorf("Consumes = %+v, want boardkit.table.v1", got.Consumes)
	}
}

func TestManifestApply(t *testing.T) {
	t.Parallel()

	t.Run("registers provides and consumes", func(t *testing.T) {
		t.Parallel()
		contracts := NewRegistry()
		consumers := NewConsumerRegistry(contracts)
		if err := contracts.Register(Contract{ID: "boardkit.table.v1", Version: "1.0.0", ProviderID: ModuleTable}); err != nil {
			t.Fatalf("Register: %v", err)
		}

		m := &Manifest{
			ModuleID: "chart-module",
			Provides: []Contract{{ID: "boardkit.chart.v1", Version: "1.0.0"}},
			Consumes: []ConsumerDeclaration{{ContractID: "boardkit.table.v1", StateKey: "tableSource"}},
		}
		if err := m.Apply(contracts, consumers); err != nil {
			t.Fatalf("Apply: %v", err)
		}

		// Provider and module ids default to the manifest's module.
		c, ok := contracts.Get("boardkit.chart.v1")
		if !ok || c.ProviderID != "chart-module" {
			t.Errorf("provider id = %q, want chart-module", c.ProviderID)
		}
		if !consumers.IsConsumer("chart-module") {
			t.Error("chart-module not registered as consumer")
		}
	})

	t.Run("foreign provider rejected", func(t *testing.T) {
		t.Parallel()
		contracts := NewRegistry()
		consumers := NewConsumerRegistry(contracts)
		m := &Manifest{
			ModuleID: "chart-module",
			Provides: []Contract{{ID: "boardkit.chart.v1", Version: "1.0.0", ProviderID: "other-module"}},
		}
		if err := m.Apply(contracts, consumers); err == nil {
			t.Error("Apply accepted a contract provided by a foreign module")
		}
	})

	t.Run("load rejects missing module id", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := SaveManifest(path, &Manifest{}); err != nil {
			t.Fatalf("SaveManifest: %v", err)
		}
		if _, err := LoadManifest(path); err == nil {
			t.Error("LoadManifest accepted manifest without module_id")
		}
	})
}
