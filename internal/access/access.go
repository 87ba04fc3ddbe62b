// Package access is the policy engine for inter-widget data sharing. Every
// function is pure: it operates on the permission and widget lists passed
// in, owns no state of its own, and never mutates its inputs.
//
// Lookups report authorization outcomes as values (bool, Status), never as
// errors — a permission that is absent or points at a deleted widget is a
// first-class state, not a failure.
package access

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/boardkit/boardkit/internal/board"
	"github.com/boardkit/boardkit/internal/contract"
)

// Status is the derived connection state for a (consumer, provider,
// contract) triple. It is computed at read time and never persisted.
type Status string

const (
	// StatusConnected: a read permission exists and the provider widget is
	// on the canvas.
	StatusConnected Status = "connected"

	// StatusDisconnected: the provider exists but no permission does. The
	// consumer has never been configured, or the grant was revoked.
	StatusDisconnected Status = "disconnected"

	// StatusBroken: the provider widget no longer exists. A permission may
	// still be present but is inert; the user is shown a reconnect
	// affordance, not an empty-data state.
	StatusBroken Status = "broken"
)

// CheckAccess reports whether an exact-match read permission exists for the
// triple.
func CheckAccess(perms []board.Permission, consumerID, providerID, contractID string) bool {
	_, ok := FindPermission(perms, consumerID, providerID, contractID)
	return ok
}

// ConnectionStatus derives the connection state for a triple. Provider
// existence is checked before permission existence: a stale permission
// pointing at a deleted widget must surface as broken, never as connected.
func ConnectionStatus(perms []board.Permission, widgets []board.Widget, consumerID, providerID, contractID string) Status {
	present := false
	for _, w := range widgets {
		if w.ID == providerID {
			present = true
			break
		}
	}
	if !present {
		return StatusBroken
	}
	if CheckAccess(perms, consumerID, providerID, contractID) {
		return StatusConnected
	}
	return StatusDisconnected
}

// NewPermission mints a read permission for the triple with a fresh ULID id
// and the current time. It is a pure factory and does not check for an
// existing grant; callers go through FindPermission first (the share layer
// does this for every grant).
func NewPermission(consumerID, providerID, contractID string) board.Permission {
	return board.Permission{
		ID:               ulid.Make().String(),
		ConsumerWidgetID: consumerID,
		ProviderWidgetID: providerID,
		ContractID:       contractID,
		Scope:            contract.ScopeRead,
		GrantedAt:        time.Now().UTC(),
	}
}

// NewLink projects a permission to its connection triple, dropping id,
// scope, and timestamp.
func NewLink(p board.Permission) board.Link {
	return board.Link{
		ConsumerWidgetID: p.ConsumerWidgetID,
		ProviderWidgetID: p.ProviderWidgetID,
		ContractID:       p.ContractID,
	}
}

// FindPermission returns the first read permission matching the triple in
// list order. Callers must not assume any order beyond first-registered.
func FindPermission(perms []board.Permission, consumerID, providerID, contractID string) (board.Permission, bool) {
	for _, p := range perms {
		if p.ConsumerWidgetID == consumerID &&
			p.ProviderWidgetID == providerID &&
			p.ContractID == contractID &&
			p.Scope == contract.ScopeRead {
			return p, true
		}
	}
	return board.Permission{}, false
}

// ConsumerPermissions returns every permission held by the consumer widget,
// in list order.
func ConsumerPermissions(perms []board.Permission, consumerID string) []board.Permission {
	var out []board.Permission
	for _, p := range perms {
		if p.ConsumerWidgetID == consumerID {
			out = append(out, p)
		}
	}
	return out
}

// ProviderPermissions returns every permission granted against the provider
// widget, in list order.
func ProviderPermissions(perms []board.Permission, providerID string) []board.Permission {
	var out []board.Permission
	for _, p := range perms {
		if p.ProviderWidgetID == providerID {
			out = append(out, p)
		}
	}
	return out
}

// AvailableProviders returns the widgets whose module provides the
// contract, preserving input order. An unknown contract id yields no
// providers rather than an error; the registries fail fast at registration
// time, so an unknown id here is a stale reference, not a crash.
func AvailableProviders(reg *contract.Registry, widgets []board.Widget, contractID string) []board.Widget {
	c, ok := reg.Get(contractID)
	if !ok {
		return nil
	}
	var out []board.Widget
	for _, w := range widgets {
		if w.ModuleID == c.ProviderID {
			out = append(out, w)
		}
	}
	return out
}

// CanProvide reports whether one specific widget exists and its module
// provides the contract.
func CanProvide(reg *contract.Registry, widgets []board.Widget, widgetID, contractID string) bool {
	c, ok := reg.Get(contractID)
	if !ok {
		return false
	}
	for _, w := range widgets {
		if w.ID == widgetID {
			return w.ModuleID == c.ProviderID
		}
	}
	return false
}
