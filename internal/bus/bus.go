// Package bus provides the in-process publish/subscribe channel for
// inter-widget data sharing.
//
// Values are keyed by (provider widget id, contract id). The bus keeps the
// last published value per key and replays it synchronously to new
// subscribers, so a freshly mounted consumer never renders a transient
// "no data" state when data already exists. Fan-out is synchronous and
// best-effort per subscriber: a faulting callback is isolated and logged,
// never propagated to the publisher or to other subscribers.
//
// The bus is constructed explicitly and passed by reference; subscriptions
// and cache entries are runtime-only state, rebuilt from persisted
// permissions each session.
package bus

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// ErrBadKey is returned when a publish or subscribe names an empty widget or
// contract id. This is a programmer error, not a runtime condition.
var ErrBadKey = errors.New("empty widget or contract id")

// Callback receives published values for one subscription.
type Callback func(data any)

// Subscription identifies one live consumer binding. The callback is not
// exposed; cleanup goes through the unsubscribe handle or RemoveWidget.
type Subscription struct {
	ConsumerWidgetID string
	ProviderWidgetID string
	ContractID       string
}

// key identifies a publish channel.
type key struct {
	providerID string
	contractID string
}

// subscriber pairs a consumer's callback with its registration identity.
type subscriber struct {
	id         uint64
	consumerID string
	fn         Callback
}

// cacheEntry is the last published value for a key.
type cacheEntry struct {
	data any
	at   time.Time
}

// Bus is the data-sharing channel. Safe for concurrent use; fan-out for a
// given key happens in registration order on the publisher's call stack.
type Bus struct {
	// Logger receives non-fatal warnings (faulting subscriber callbacks).
	// If nil, warnings are silently discarded.
	Logger io.Writer

	mu     sync.Mutex
	nextID uint64
	subs   map[key][]subscriber
	cache  map[key]cacheEntry
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{
		subs:  make(map[key][]subscriber),
		cache: make(map[key]cacheEntry),
	}
}

// Subscribe registers a callback for the (providerID, contractID) channel
// and returns a handle that removes the subscription. If a cached value
// exists it is replayed synchronously before Subscribe returns; a fault in
// the callback during replay is logged and does not prevent registration.
func (b *Bus) Subscribe(consumerID, providerID, contractID string, fn Callback) (func(), error) {
	if consumerID == "" || providerID == "" || contractID == "" {
		return nil, fmt.Errorf("bus: subscribe: %w", ErrBadKey)
	}
	if fn == nil {
		return nil, fmt.Errorf("bus: subscribe %s/%s: nil callback", providerID, contractID)
	}

	k := key{providerID: providerID, contractID: contractID}

	b.mu.Lock()
	b.nextID++
	sub := subscriber{id: b.nextID, consumerID: consumerID, fn: fn}
	b.subs[k] = append(b.subs[k], sub)
	cached, hasCached := b.cache[k]
	b.mu.Unlock()

	if hasCached {
		b.invoke(sub, k, cached.data, "replay")
	}

	id := sub.id
	return func() { b.unsubscribe(k, id) }, nil
}

// unsubscribe removes one subscriber by registration id. Idempotent.
func (b *Bus) unsubscribe(k key, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeSubscriberLocked(k, id)
}

func (b *Bus) removeSubscriberLocked(k key, id uint64) {
	subs := b.subs[k]
	for i, s := range subs {
		if s.id == id {
			b.subs[k] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[k]) == 0 {
		delete(b.subs, k)
	}
}

// Publish caches data for (providerID, contractID) — last write wins — and
// notifies every current subscriber for that key in registration order.
// Each callback is individually isolated: one fault never prevents the
// others from receiving the value.
func (b *Bus) Publish(providerID, contractID string, data any) error {
	if providerID == "" || contractID == "" {
		return fmt.Errorf("bus: publish: %w", ErrBadKey)
	}

	k := key{providerID: providerID, contractID: contractID}

	b.mu.Lock()
	b.cache[k] = cacheEntry{data: data, at: time.Now()}
	// Snapshot so callbacks can subscribe or unsubscribe re-entrantly
	// without holding the bus lock.
	subs := make([]subscriber, len(b.subs[k]))
	copy(subs, b.subs[k])
	b.mu.Unlock()

	for _, s := range subs {
		b.invoke(s, k, data, "publish")
	}
	return nil
}

// invoke runs one callback with fault isolation.
func (b *Bus) invoke(s subscriber, k key, data any, during string) {
	defer func() {
		if r := recover(); r != nil {
			b.logf("bus: subscriber %s faulted during %s of %s/%s: %v",
				s.consumerID, during, k.providerID, k.contractID, r)
		}
	}()
	s.fn(data)
}

// Data returns the cached value for (providerID, contractID) and whether one
// exists. Pure read, no side effects.
func (b *Bus) Data(providerID, contractID string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.cache[key{providerID: providerID, contractID: contractID}]
	if !ok {
		return nil, false
	}
	return e.data, true
}

// DataTimestamp returns when the cached value for the key was published.
func (b *Bus) DataTimestamp(providerID, contractID string) (time.Time, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.cache[key{providerID: providerID, contractID: contractID}]
	if !ok {
		return time.Time{}, false
	}
	return e.at, true
}

// HasSubscribers reports whether anyone is listening on the key. Providers
// use this to skip projection work when nothing is connected; it is a
// performance guard, not a correctness requirement.
func (b *Bus) HasSubscribers(providerID, contractID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[key{providerID: providerID, contractID: contractID}]) > 0
}

// ConsumerSubscriptions returns the live subscriptions held by a consumer
// widget, in registration order per key. Used for cleanup.
func (b *Bus) ConsumerSubscriptions(consumerID string) []Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Subscription
	for k, subs := range b.subs {
		for _, s := range subs {
			if s.consumerID == consumerID {
				out = append(out, Subscription{
					ConsumerWidgetID: consumerID,
					ProviderWidgetID: k.providerID,
					ContractID:       k.contractID,
				})
			}
		}
	}
	return out
}

// RemoveWidget drops every subscription where the widget is consumer or
// provider, and every cache entry where it is the provider. Idempotent and
// safe to call for a widget with no bus state.
func (b *Bus) RemoveWidget(widgetID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for k, subs := range b.subs {
		if k.providerID == widgetID {
			delete(b.subs, k)
			continue
		}
		kept := subs[:0]
		for _, s := range subs {
			if s.consumerID != widgetID {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			delete(b.subs, k)
		} else {
			b.subs[k] = kept
		}
	}

	for k := range b.cache {
		if k.providerID == widgetID {
			delete(b.cache, k)
		}
	}
}

// Clear drops every subscription and cache entry. Test harness teardown only.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[key][]subscriber)
	b.cache = make(map[key]cacheEntry)
}

// logf writes a formatted warning to the bus logger.
func (b *Bus) logf(format string, args ...any) {
	if b.Logger != nil {
		fmt.Fprintf(b.Logger, format+"\n", args...)
	}
}
