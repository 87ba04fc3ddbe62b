package contract

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Manifest is the on-disk declaration of a module's data-sharing
// capabilities: the contracts it provides and the contracts it consumes.
// Module authors ship one manifest per module; the host loads them into the
// registries at startup.
type Manifest struct {
	ModuleID string                `toml:"module_id"`
	Provides []Contract            `toml:"provides,omitempty"`
	Consumes []ConsumerDeclaration `toml:"consumes,omitempty"`
}

// LoadManifest reads a module manifest from the given TOML file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("contract: reading manifest %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("contract: parsing manifest %s: %w", path, err)
	}
	if m.ModuleID == "" {
		return nil, fmt.Errorf("contract: manifest %s has no module_id", path)
	}
	return &m, nil
}

// Apply registers the manifest's contracts and consumer declarations.
// Provided contracts must name the manifest's own module as provider;
// consumer declarations inherit the manifest's module id when they omit one.
func (m *Manifest) Apply(contracts *Registry, consumers *ConsumerRegistry) error {
	for _, c := range m.Provides {
		if c.ProviderID == "" {
			c.ProviderID = m.ModuleID
		}
		if c.ProviderID != m.ModuleID {
			return fmt.Errorf("contract: manifest for %q provides %q with foreign provider %q", m.ModuleID, c.ID, c.ProviderID)
		}
		if err := contracts.Register(c); err != nil {
			return err
		}
	}
	for _, d := range m.Consumes {
		if d.ModuleID == "" {
			d.ModuleID = m.ModuleID
		}
		if d.ModuleID != m.ModuleID {
			return fmt.Errorf("contract: manifest for %q declares consumption as %q", m.ModuleID, d.ModuleID)
		}
		if err := consumers.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// SaveManifest writes a module manifest to the given path. Used by module
// authoring tooling and test fixtures.
func SaveManifest(path string, m *Manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("contract: marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("contract: writing manifest %s: %w", path, err)
	}
	return nil
}
