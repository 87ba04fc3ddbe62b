// Package share orchestrates inter-widget data sharing over a board
// document: granting and revoking permissions, keeping the persisted link
// array in lockstep, and cascading widget deletion into both the document
// and the runtime bus.
//
// The document's dataSharing section is mutated only through this package.
// That discipline is what keeps the dirty flag, history labels, and the
// permission/link lockstep invariant consistent.
package share

import (
	"errors"
	"fmt"

	"github.com/boardkit/boardkit/internal/access"
	"github.com/boardkit/boardkit/internal/board"
	"github.com/boardkit/boardkit/internal/bus"
	"github.com/boardkit/boardkit/internal/contract"
	"github.com/boardkit/boardkit/internal/telemetry"
)

// ErrPermissionNotFound is returned when a revocation names a permission
// that does not exist.
var ErrPermissionNotFound = errors.New("permission not found")

// Recorder captures a document mutation under a history label. The host's
// undo/redo machinery implements it; the store only calls Capture.
type Recorder interface {
	Capture(label string)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(label string)

// Capture calls f(label).
func (f RecorderFunc) Capture(label string) { f(label) }

// Store owns the data-sharing mutations for one open document. Construct
// one per document session; the zero value is not usable.
type Store struct {
	Doc       *board.Document
	Bus       *bus.Bus
	Contracts *contract.Registry
	Consumers *contract.ConsumerRegistry

	// Recorder receives a history label for every mutation. Optional.
	Recorder Recorder

	// Telemetry receives audit events. A nil emitter is a no-op.
	Telemetry *telemetry.Emitter

	dirty bool

	// unsubs holds the live unsubscribe handles created by Connect, keyed
	// by connection triple, so Disconnect and DetachWidget can tear down
	// subscriptions synchronously with the permission change.
	unsubs map[board.Link]func()
}

// NewStore returns a store for the given document.
func NewStore(doc *board.Document, b *bus.Bus, contracts *contract.Registry, consumers *contract.ConsumerRegistry) *Store {
	return &Store{
		Doc:       doc,
		Bus:       b,
		Contracts: contracts,
		Consumers: consumers,
		unsubs:    make(map[board.Link]func()),
	}
}

// GrantPermission returns the permission for the triple, creating and
// persisting one (with its link) if none exists. Granting an already
// granted triple is a no-op that returns the existing record.
func (s *Store) GrantPermission(consumerID, providerID, contractID string) (board.Permission, error) {
	if consumerID == "" || providerID == "" || contractID == "" {
		return board.Permission{}, fmt.Errorf("share: grant: empty widget or contract id")
	}

	if existing, ok := access.FindPermission(s.Doc.DataSharing.Permissions, consumerID, providerID, contractID); ok {
		return existing, nil
	}

	p := access.NewPermission(consumerID, providerID, contractID)
	s.Doc.DataSharing.Permissions = append(s.Doc.DataSharing.Permissions, p)
	s.Doc.DataSharing.Links = append(s.Doc.DataSharing.Links, access.NewLink(p))

	s.markDirty(fmt.Sprintf("Connect to %s", s.contractLabel(contractID)))
	s.emit(telemetry.Event{
		Kind:       telemetry.KindPermissionGranted,
		DocumentID: s.Doc.ID,
		WidgetID:   consumerID,
		Data:       access.NewLink(p),
	})
	return p, nil
}

// RevokePermission removes the permission with the given id and its link.
func (s *Store) RevokePermission(permissionID string) error {
	perms := s.Doc.DataSharing.Permissions
	for i, p := range perms {
		if p.ID != permissionID {
			continue
		}
		link := access.NewLink(p)
		s.Doc.DataSharing.Permissions = append(perms[:i], perms[i+1:]...)
		s.removeLink(link)
		s.teardown(link)

		s.markDirty(fmt.Sprintf("Disconnect from %s", s.contractLabel(p.ContractID)))
		s.emit(telemetry.Event{
			Kind:       telemetry.KindPermissionRevoked,
			DocumentID: s.Doc.ID,
			WidgetID:   p.ConsumerWidgetID,
			Data:       link,
		})
		return nil
	}
	return fmt.Errorf("share: revoke %q: %w", permissionID, ErrPermissionNotFound)
}

// RevokePermissionByLink resolves the permission for the triple and revokes
// it.
func (s *Store) RevokePermissionByLink(consumerID, providerID, contractID string) error {
	p, ok := access.FindPermission(s.Doc.DataSharing.Permissions, consumerID, providerID, contractID)
	if !ok {
		return fmt.Errorf("share: revoke %s -> %s/%s: %w", consumerID, providerID, contractID, ErrPermissionNotFound)
	}
	return s.RevokePermission(p.ID)
}

// CleanupWidget removes every permission and link where the widget appears
// as consumer or provider, returning how many permissions were removed.
// Safe to call for a widget with no grants.
func (s *Store) CleanupWidget(widgetID string) int {
	perms := s.Doc.DataSharing.Permissions
	kept := perms[:0]
	removed := 0
	for _, p := range perms {
		if p.ConsumerWidgetID == widgetID || p.ProviderWidgetID == widgetID {
			link := access.NewLink(p)
			s.removeLink(link)
			s.teardown(link)
			removed++
			continue
		}
		kept = append(kept, p)
	}
	s.Doc.DataSharing.Permissions = kept

	if removed > 0 {
		s.markDirty("Remove widget data connections")
	}
	return removed
}

// DetachWidget is the single deletion entry point: it removes the widget's
// persisted grants and its runtime bus state together. Every widget
// deletion path (direct delete, multi-select delete, cut) must call it;
// splitting the two halves across call sites is how the persisted and
// runtime stores drift. Idempotent.
func (s *Store) DetachWidget(widgetID string) {
	removed := s.CleanupWidget(widgetID)
	s.Bus.RemoveWidget(widgetID)

	s.emit(telemetry.Event{
		Kind:       telemetry.KindWidgetDetached,
		DocumentID: s.Doc.ID,
		WidgetID:   widgetID,
		Data:       map[string]int{"permissions_removed": removed},
	})
}

// Status derives the connection status for a triple from the current
// document state.
func (s *Store) Status(consumerID, providerID, contractID string) access.Status {
	return access.ConnectionStatus(s.Doc.DataSharing.Permissions, s.Doc.Widgets, consumerID, providerID, contractID)
}

// Dirty reports whether the document has unsaved data-sharing mutations.
func (s *Store) Dirty() bool { return s.dirty }

// ClearDirty resets the dirty flag after a successful save.
func (s *Store) ClearDirty() { s.dirty = false }

// removeLink deletes the first link matching the triple. One link exists
// per permission, so removing the first match keeps the arrays in lockstep
// even if a duplicate triple slipped in.
func (s *Store) removeLink(link board.Link) {
	links := s.Doc.DataSharing.Links
	for i, l := range links {
		if l == link {
			s.Doc.DataSharing.Links = append(links[:i], links[i+1:]...)
			return
		}
	}
}

// teardown releases the live subscription for a triple, if Connect created
// one. A revoked permission with a still-firing callback is a resource
// leak.
func (s *Store) teardown(link board.Link) {
	if unsub, ok := s.unsubs[link]; ok {
		unsub()
		delete(s.unsubs, link)
	}
}

// contractLabel returns the human name for a contract id, falling back to
// the id itself for unregistered contracts.
func (s *Store) contractLabel(contractID string) string {
	if s.Contracts != nil {
		if c, ok := s.Contracts.Get(contractID); ok && c.Name != "" {
			return c.Name
		}
	}
	return contractID
}

func (s *Store) markDirty(label string) {
	s.dirty = true
	if s.Recorder != nil {
		s.Recorder.Capture(label)
	}
}

func (s *Store) emit(evt telemetry.Event) {
	// Telemetry failure must never fail a mutation.
	_ = s.Telemetry.Emit(evt)
}
