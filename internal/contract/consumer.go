package contract

import (
	"fmt"
	"sync"
)

// ConsumerDeclaration records that a module type can subscribe to a
// contract. A module may carry several declarations, one per contract it
// consumes (a dashboard-style aggregator declares one per data type it
// renders).
type ConsumerDeclaration struct {
	ModuleID   string `json:"module_id" toml:"module_id"`
	ContractID string `json:"contract_id" toml:"contract_id"`

	// MultiSelect allows binding to more than one provider widget at once.
	// When false the consumer holds at most one connection for this contract.
	MultiSelect bool `json:"multi_select,omitempty" toml:"multi_select,omitempty"`

	// StateKey names the field in the consumer's own state that stores the
	// connected provider widget id (or ids when MultiSelect is set).
	StateKey string `json:"state_key" toml:"state_key"`

	// SourceLabel is an optional human label for the connection in settings
	// surfaces ("Todo list", "Source table").
	SourceLabel string `json:"source_label,omitempty" toml:"source_label,omitempty"`
}

// ConsumerRegistry is the catalogue of consumer declarations, keyed by
// module id. Declarations are validated against the contract registry when
// registered, so a declaration can never reference a contract that does not
// exist. Safe for concurrent use.
type ConsumerRegistry struct {
	contracts *Registry

	mu       sync.RWMutex
	byModule map[string][]ConsumerDeclaration
}

// NewConsumerRegistry returns an empty consumer registry that validates
// declarations against contracts.
func NewConsumerRegistry(contracts *Registry) *ConsumerRegistry {
	return &ConsumerRegistry{
		contracts: contracts,
		byModule:  make(map[string][]ConsumerDeclaration),
	}
}

// Register adds a consumer declaration. The declaration's contract id must
// already be registered; an unknown id is a module-definition bug and fails
// fast rather than surfacing later as a dead subscription.
func (r *ConsumerRegistry) Register(d ConsumerDeclaration) error {
	if d.ModuleID == "" {
		return fmt.Errorf("contract: consumer declaration has no module id")
	}
	if d.StateKey == "" {
		return fmt.Errorf("contract: consumer declaration for %q has no state key", d.ModuleID)
	}
	if !r.contracts.Has(d.ContractID) {
		return fmt.Errorf("contract: consumer %q declares %q: %w", d.ModuleID, d.ContractID, ErrUnknownContract)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byModule[d.ModuleID] {
		if existing.ContractID == d.ContractID {
			return fmt.Errorf("contract: consumer %q already declares %q", d.ModuleID, d.ContractID)
		}
	}
	r.byModule[d.ModuleID] = append(r.byModule[d.ModuleID], d)
	return nil
}

// ByModule returns the declarations for a module in registration order, or
// nil if the module declares nothing.
func (r *ConsumerRegistry) ByModule(moduleID string) []ConsumerDeclaration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	decls := r.byModule[moduleID]
	if len(decls) == 0 {
		return nil
	}
	out := make([]ConsumerDeclaration, len(decls))
	copy(out, decls)
	return out
}

// IsConsumer reports whether the module has any consumer declaration. Used
// by settings surfaces and by cascading cleanup to decide whether a widget
// type can hold permissions at all.
func (r *ConsumerRegistry) IsConsumer(moduleID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byModule[moduleID]) > 0
}

// Clear removes every declaration. Test harness teardown only.
func (r *ConsumerRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byModule = make(map[string][]ConsumerDeclaration)
}
