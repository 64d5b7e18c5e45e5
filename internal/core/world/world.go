// Package world ties the component registry, the archetype list and
// the invariant registry together into the entity store the rest of
// the system talks to.
//
// A world is a single-writer structure: every mutating operation takes
// the world mutex, because resolving a rule may register new component
// types and a check pass must read the complete, current archetype
// list. Validation fires in exactly two situations: a brand-new
// distinct schema appears, or a rule is added. Moving entities between
// existing archetypes never triggers a check.
package world

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/strata-ecs/strata/internal/core/archetype"
	"github.com/strata-ecs/strata/internal/core/component"
	"github.com/strata-ecs/strata/internal/core/events/bus"
	"github.com/strata-ecs/strata/internal/core/invariant"
	"github.com/strata-ecs/strata/internal/core/observability/log"
)

// World owns the store state: component registry, archetype list,
// entity locations and the invariant registry with its cursor. All of
// it lives and dies with the world instance; none of it is global.
type World struct {
	id string

	mu         sync.Mutex
	components *component.Registry
	archetypes *archetype.List
	invariants *invariant.Registry
	entities   map[Entity]int // entity -> archetype index
	nextEntity Entity

	eventBus     *bus.Bus
	logger       *log.Logger
	checkWorkers int

	// violated poisons the world: once a violation has been reported,
	// every further mutating operation returns it unchanged.
	violated error
}

// Option configures a world at construction.
type Option func(*World)

// WithLogger overrides the default nop logger.
func WithLogger(logger *log.Logger) Option {
	return func(w *World) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithBus overrides the default event bus.
func WithBus(b *bus.Bus) Option {
	return func(w *World) {
		if b != nil {
			w.eventBus = b
		}
	}
}

// WithCheckWorkers enables the parallel check pass with the given
// number of workers. Values below 2 keep the sequential pass.
func WithCheckWorkers(workers int) Option {
	return func(w *World) {
		w.checkWorkers = workers
	}
}

// New constructs an empty world.
func New(opts ...Option) *World {
	w := &World{
		id:         uuid.NewString(),
		components: component.NewRegistry(),
		archetypes: archetype.NewList(),
		entities:   make(map[Entity]int),
		nextEntity: 1,
		eventBus:   bus.New(),
		logger:     log.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(zap.String("world", w.id))
	w.invariants = invariant.NewRegistry(w.logger)
	return w
}

// Default constructs a world with the process default logger. Used by
// the injector.
func Default() *World {
	return New(WithLogger(log.Provide()))
}

// ID returns the world's instance identifier.
func (w *World) ID() string { return w.id }

// Bus returns the world's event bus for observers.
func (w *World) Bus() *bus.Bus { return w.eventBus }

// Err returns the violation that poisoned the world, or nil while the
// world is healthy.
func (w *World) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.violated
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entities)
}

// ArchetypeCount returns the number of distinct schemas seen.
func (w *World) ArchetypeCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.archetypes.Len()
}

// InvariantCount returns the number of registered invariants.
func (w *World) InvariantCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.invariants.Len()
}

// Cursor exposes the invariant registry's checked-archetype cursor.
func (w *World) Cursor() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.invariants.Cursor()
}

// RegisterComponent registers a component type by name and returns its
// ID. Registration is idempotent and never fails.
func (w *World) RegisterComponent(name string) component.ID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.components.GetOrRegister(name)
}

// ComponentName returns the registered name for an ID.
func (w *World) ComponentName(id component.ID) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.components.Name(id)
}

// Spawn creates an entity with the named components. If the component
// combination is a schema the world has never seen, the new archetype
// is validated against every registered invariant before Spawn
// returns.
func (w *World) Spawn(names ...string) (Entity, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.violated != nil {
		return NoEntity, w.violated
	}

	set := w.resolveNames(names)
	arch, created := w.archetypes.GetOrCreate(set)

	e := w.nextEntity
	w.nextEntity++
	w.entities[e] = arch.Index()
	arch.Attach()

	w.publish(bus.TypeEntitySpawned, EntityEvent{Entity: e, ArchetypeIndex: arch.Index()})
	if created {
		if err := w.archetypeCreated(arch); err != nil {
			return NoEntity, err
		}
	}
	return e, nil
}

// Despawn removes an entity. Despawning leaves the archetype in place:
// an empty archetype still represents a schema a future entity could
// adopt.
func (w *World) Despawn(e Entity) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.violated != nil {
		return w.violated
	}

	idx, ok := w.entities[e]
	if !ok {
		return fmt.Errorf("despawn: unknown entity %d", e)
	}
	w.archetypes.At(idx).Detach()
	delete(w.entities, e)
	w.publish(bus.TypeEntityDespawned, EntityEvent{Entity: e, ArchetypeIndex: idx})
	return nil
}

// Insert adds a component to an entity, moving it to the archetype for
// its new component set. Only a brand-new distinct schema triggers
// validation.
func (w *World) Insert(e Entity, name string) error {
	return w.move(e, name, true)
}

// Remove takes a component off an entity, moving it to the archetype
// for its reduced component set.
func (w *World) Remove(e Entity, name string) error {
	return w.move(e, name, false)
}

func (w *World) move(e Entity, name string, add bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.violated != nil {
		return w.violated
	}

	idx, ok := w.entities[e]
	if !ok {
		return fmt.Errorf("move: unknown entity %d", e)
	}
	id := w.components.GetOrRegister(name)
	old := w.archetypes.At(idx)

	set := old.Components().Clone()
	if add {
		if set.Contains(id) {
			return nil
		}
		set.Add(id)
	} else {
		if !set.Contains(id) {
			return nil
		}
		set.Remove(id)
	}

	next, created := w.archetypes.GetOrCreate(set)
	old.Detach()
	next.Attach()
	w.entities[e] = next.Index()

	if created {
		return w.archetypeCreated(next)
	}
	return nil
}

// AddInvariant registers a rule, typed or erased. Resolution happens
// here if needed (registering unseen component types as a side
// effect), the cursor resets to 0, and a full check pass over every
// existing archetype runs before AddInvariant returns - archetypes
// created before the rule existed are re-validated against it.
func (w *World) AddInvariant(decl invariant.Declaration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.violated != nil {
		return w.violated
	}

	inv := decl.Resolve(w.components)
	w.invariants.Add(inv)
	w.publish(bus.TypeInvariantAdded, InvariantEvent{
		Invariant: inv.Describe(w.components),
		Total:     w.invariants.Len(),
	})
	return w.runPendingChecksLocked()
}

// RunPendingChecks validates every archetype not yet checked against
// the current rule set. World mutations already run it; it is exposed
// for callers that registered invariants through lower-level paths.
func (w *World) RunPendingChecks() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.violated != nil {
		return w.violated
	}
	return w.runPendingChecksLocked()
}

func (w *World) archetypeCreated(arch *archetype.Archetype) error {
	w.publish(bus.TypeArchetypeCreated, ArchetypeEvent{
		Index:      arch.Index(),
		Components: arch.Components().Describe(w.components),
	})
	return w.runPendingChecksLocked()
}

func (w *World) runPendingChecksLocked() error {
	var err error
	if w.checkWorkers > 1 {
		err = w.invariants.CheckPassParallel(w.archetypes, w.checkWorkers)
	} else {
		err = w.invariants.CheckPass(w.archetypes)
	}
	if err == nil {
		return nil
	}

	// A violation is a broken contract, not a retryable condition:
	// record it so every further operation fails with the same error.
	w.violated = err
	w.logger.Error("archetype invariant violated; world is no longer usable",
		zap.Error(err),
	)
	w.publish(bus.TypeInvariantViolated, ViolationEvent{Reason: err.Error()})
	return err
}

func (w *World) resolveNames(names []string) component.Set {
	set := component.NewSet()
	for _, name := range names {
		set.Add(w.components.GetOrRegister(name))
	}
	return set
}

func (w *World) publish(typ bus.Type, data any) {
	// Observer failures never affect store correctness.
	_ = w.eventBus.Publish(bus.NewEvent(typ, w.id, data))
}

// ArchetypeEvent is the payload of archetype.created events.
type ArchetypeEvent struct {
	Index      int    `json:"index"`
	Components string `json:"components"`
}

// EntityEvent is the payload of entity lifecycle events.
type EntityEvent struct {
	Entity         Entity `json:"entity"`
	ArchetypeIndex int    `json:"archetype_index"`
}

// InvariantEvent is the payload of invariant.added events.
type InvariantEvent struct {
	Invariant string `json:"invariant"`
	Total     int    `json:"total"`
}

// ViolationEvent is the payload of invariant.violated events.
type ViolationEvent struct {
	Reason string `json:"reason"`
}
