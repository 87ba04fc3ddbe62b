package share

import (
	"fmt"

	"github.com/boardkit/boardkit/internal/access"
	"github.com/boardkit/boardkit/internal/board"
	"github.com/boardkit/boardkit/internal/bus"
	"github.com/boardkit/boardkit/internal/contract"
	"github.com/boardkit/boardkit/internal/telemetry"
)

// adapter.go is the widget-facing surface. Provider widgets call PublishFor
// on every relevant state mutation; consumer widgets call Connect on mount
// (or grant) and Disconnect when the user removes a source.

// PublishFor projects and publishes a provider widget's data under a
// contract. The provider must exist on the canvas and its module must
// provide the contract. When nothing subscribes to the key and a cached
// value already exists, the projection is skipped — a performance guard;
// the first publish always runs so replay-on-subscribe has a value.
func (s *Store) PublishFor(providerID, contractID string, project func() any) error {
	if project == nil {
		return fmt.Errorf("share: publish %s/%s: nil projection", providerID, contractID)
	}
	if !access.CanProvide(s.Contracts, s.Doc.Widgets, providerID, contractID) {
		return fmt.Errorf("share: publish: widget %q cannot provide %q", providerID, contractID)
	}

	if !s.Bus.HasSubscribers(providerID, contractID) {
		if _, cached := s.Bus.Data(providerID, contractID); cached {
			return nil
		}
	}

	if err := s.Bus.Publish(providerID, contractID, project()); err != nil {
		return fmt.Errorf("share: publish %s/%s: %w", providerID, contractID, err)
	}

	s.emit(telemetry.Event{
		Kind:       telemetry.KindDataPublished,
		DocumentID: s.Doc.ID,
		WidgetID:   providerID,
		Data:       map[string]string{"contract": contractID},
	})
	return nil
}

// Connect wires a consumer widget to a provider: it grants a permission if
// none exists, then subscribes the callback, which immediately receives the
// provider's cached value when one exists. The consumer's module must
// declare consumption of the contract; the declaration's multi-select rule
// is enforced here, so a single-select consumer cannot hold grants against
// two providers at once.
func (s *Store) Connect(consumerID, providerID, contractID string, fn bus.Callback) (func(), error) {
	w, ok := s.Doc.Widget(consumerID)
	if !ok {
		return nil, fmt.Errorf("share: connect: consumer widget %q is not on the canvas", consumerID)
	}
	decl, ok := s.declarationFor(w.ModuleID, contractID)
	if !ok {
		return nil, fmt.Errorf("share: connect: module %q does not consume %q", w.ModuleID, contractID)
	}
	if !decl.MultiSelect {
		for _, p := range access.ConsumerPermissions(s.Doc.DataSharing.Permissions, consumerID) {
			if p.ContractID == contractID && p.ProviderWidgetID != providerID {
				return nil, fmt.Errorf("share: connect: %q already bound to provider %q for %q", consumerID, p.ProviderWidgetID, contractID)
			}
		}
	}

	if _, err := s.GrantPermission(consumerID, providerID, contractID); err != nil {
		return nil, err
	}

	// A repeat Connect for the same triple replaces the live subscription
	// rather than stacking a second one. Stacked subscriptions would outlive
	// the single stored handle: Disconnect would tear down only the newest,
	// leaving the older callback firing with no permission behind it.
	link := board.Link{
		ConsumerWidgetID: consumerID,
		ProviderWidgetID: providerID,
		ContractID:       contractID,
	}
	s.teardown(link)

	unsub, err := s.Bus.Subscribe(consumerID, providerID, contractID, fn)
	if err != nil {
		return nil, fmt.Errorf("share: connect: %w", err)
	}
	s.unsubs[link] = unsub
	return unsub, nil
}

// Disconnect revokes the permission for the triple and synchronously tears
// down its live subscription. A dangling subscription with a revoked
// permission would keep firing on further publishes without authorization.
func (s *Store) Disconnect(consumerID, providerID, contractID string) error {
	return s.RevokePermissionByLink(consumerID, providerID, contractID)
}

// Resubscribe rebuilds runtime subscriptions from the persisted permissions
// held by a consumer widget. Called on widget mount after a document load:
// bus subscriptions are session state and do not survive reload, while
// permissions do.
func (s *Store) Resubscribe(consumerID string, fn bus.Callback) (int, error) {
	count := 0
	for _, p := range access.ConsumerPermissions(s.Doc.DataSharing.Permissions, consumerID) {
		link := access.NewLink(p)
		// Same replace-not-stack rule as Connect: a remount must not leave
		// the previous mount's callback subscribed.
		s.teardown(link)
		unsub, err := s.Bus.Subscribe(p.ConsumerWidgetID, p.ProviderWidgetID, p.ContractID, fn)
		if err != nil {
			return count, fmt.Errorf("share: resubscribe: %w", err)
		}
		s.unsubs[link] = unsub
		count++
	}
	return count, nil
}

// declarationFor finds the module's consumer declaration for a contract.
func (s *Store) declarationFor(moduleID, contractID string) (contract.ConsumerDeclaration, bool) {
	for _, d := range s.Consumers.ByModule(moduleID) {
		if d.ContractID == contractID {
			return d, true
		}
	}
	return contract.ConsumerDeclaration{}, false
}
