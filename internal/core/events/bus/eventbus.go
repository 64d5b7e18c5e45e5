// Package bus is the synchronous in-memory event bus worlds publish
// their lifecycle notifications on. Observers such as the debug
// inspector subscribe here; nothing in the validation path depends on
// a subscriber being present.
package bus

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Subscription is a handle to an active subscriber.
type Subscription struct {
	id      string
	typ     Type
	handler Handler
	active  bool
	cancel  func()
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string { return s.id }

// EventType returns the subscribed type, possibly TypeAny.
func (s *Subscription) EventType() Type { return s.typ }

// IsActive reports whether the subscription still receives events.
func (s *Subscription) IsActive() bool { return s.active }

// Cancel detaches the subscription from the bus.
func (s *Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
	s.active = false
}

// Bus is a thread-safe event bus with per-type and wildcard
// subscriptions.
type Bus struct {
	mu sync.RWMutex
	// handlers: event type -> subscription ID -> subscription
	handlers map[Type]map[string]*Subscription
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		handlers: make(map[Type]map[string]*Subscription),
	}
}

// Subscribe registers a handler for one event type, or every type via
// TypeAny.
func (b *Bus) Subscribe(typ Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[typ] == nil {
		b.handlers[typ] = make(map[string]*Subscription)
	}
	id := uuid.NewString()
	s := &Subscription{id: id, typ: typ, handler: handler, active: true}
	s.cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if mm, ok := b.handlers[typ]; ok {
			delete(mm, id)
		}
	}
	b.handlers[typ][id] = s
	return s
}

// Publish delivers the event synchronously to subscribers of its type
// and to wildcard subscribers. Handler errors are joined and returned;
// every handler still runs.
func (b *Bus) Publish(event Event) error {
	b.mu.RLock()
	subs := make([]*Subscription, 0, 4)
	for _, s := range b.handlers[event.Type] {
		subs = append(subs, s)
	}
	if event.Type != TypeAny {
		for _, s := range b.handlers[TypeAny] {
			subs = append(subs, s)
		}
	}
	b.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := s.handler(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SubscriberCount reports active subscriptions for a type, wildcard
// subscribers excluded.
func (b *Bus) SubscriberCount(typ Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[typ])
}
