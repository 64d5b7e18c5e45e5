package bus

import "time"

// Type names a world lifecycle event.
type Type string

const (
	// TypeAny subscribes to every event type.
	TypeAny Type = "*"

	// TypeArchetypeCreated fires when a new distinct schema appears.
	// It is the sole per-mutation validation trigger; entity moves
	// between existing archetypes publish nothing here.
	TypeArchetypeCreated Type = "archetype.created"

	// TypeInvariantAdded fires when a rule is registered.
	TypeInvariantAdded Type = "invariant.added"

	// TypeInvariantViolated fires once when a world reports a
	// violation and poisons itself.
	TypeInvariantViolated Type = "invariant.violated"

	// TypeEntitySpawned and TypeEntityDespawned track entity
	// lifecycle for observers; the validator does not consume them.
	TypeEntitySpawned   Type = "entity.spawned"
	TypeEntityDespawned Type = "entity.despawned"
)

// Event is one world lifecycle notification.
type Event struct {
	Type      Type
	Source    string
	Timestamp time.Time
	Data      any
}

// NewEvent stamps an event with the current time.
func NewEvent(typ Type, source string, data any) Event {
	return Event{Type: typ, Source: source, Timestamp: time.Now(), Data: data}
}

// Handler consumes events. Delivery is synchronous and may run under
// the publishing world's lock, so handlers must not call back into
// world mutating operations. A handler error is returned to the
// publisher but does not stop delivery to others.
type Handler func(Event) error
