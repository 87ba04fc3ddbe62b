// Package contract defines the static capability catalogue for inter-widget
// data sharing.
//
// A Contract describes a read-only, independently versioned projection that
// widgets of one module type may publish. A ConsumerDeclaration records that
// a module type is able to subscribe to a contract. Both catalogues are
// populated once at module-definition time and never mutated afterwards;
// every other data-sharing component resolves module capabilities through
// them.
package contract

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Scope values for data access. Only read access exists today; the scope
// field is carried on permissions so a future write scope is a data change
// rather than a schema change.
const (
	ScopeRead = "read"
)

// ErrContractExists is returned when a contract id is registered twice.
// Double registration indicates a module-definition bug and fails fast.
var ErrContractExists = errors.New("contract id already registered")

// ErrUnknownContract is returned when a declaration references a contract id
// that has not been registered.
var ErrUnknownContract = errors.New("unknown contract id")

// Contract describes a versioned, read-only data projection. The id is a
// reverse-DNS string (e.g. "boardkit.todo.v1") and is globally unique. A
// breaking change to the projected shape requires a new id, never a mutation
// of an existing one.
type Contract struct {
	ID          string `json:"id" toml:"id"`
	Name        string `json:"name" toml:"name"`
	Description string `json:"description,omitempty" toml:"description,omitempty"`
	Version     string `json:"version" toml:"version"`

	// ProviderID is the module id authorized to publish under this contract.
	// Exactly one module type provides a contract; many widget instances of
	// that module may publish concurrently.
	ProviderID string `json:"provider_id" toml:"provider_id"`
}

// ValidateID checks that id has the reverse-DNS shape used for contract ids:
// at least two non-empty, lowercase dot-separated segments.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("contract: empty contract id")
	}
	segments := strings.Split(id, ".")
	if len(segments) < 2 {
		return fmt.Errorf("contract: id %q must have at least two dot-separated segments", id)
	}
	for _, seg := range segments {
		if seg == "" {
			return fmt.Errorf("contract: id %q has an empty segment", id)
		}
		if seg != strings.ToLower(seg) {
			return fmt.Errorf("contract: id %q must be lowercase", id)
		}
	}
	return nil
}

// Registry is the catalogue of registered contracts. It is constructed
// explicitly and passed by reference to the components that resolve
// contracts; there is no ambient global instance. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	contracts map[string]Contract
}

// NewRegistry returns an empty contract registry.
func NewRegistry() *Registry {
	return &Registry{contracts: make(map[string]Contract)}
}

// Register adds a contract to the registry. It returns ErrContractExists if
// the id is already present — contracts are immutable once registered, so a
// second registration is always a module-definition bug.
func (r *Registry) Register(c Contract) error {
	if err := ValidateID(c.ID); err != nil {
		return err
	}
	if c.ProviderID == "" {
		return fmt.Errorf("contract: %q has no provider module id", c.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contracts[c.ID]; ok {
		return fmt.Errorf("contract: register %q: %w", c.ID, ErrContractExists)
	}
	r.contracts[c.ID] = c
	return nil
}

// Has reports whether the contract id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.contracts[id]
	return ok
}

// Get returns the contract for id, and whether it exists.
func (r *Registry) Get(id string) (Contract, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contracts[id]
	return c, ok
}

// All returns every registered contract sorted by id.
func (r *Registry) All() []Contract {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Contract, 0, len(r.contracts))
	for _, c := range r.contracts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Clear removes every contract. Test harness teardown only.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts = make(map[string]Contract)
}
