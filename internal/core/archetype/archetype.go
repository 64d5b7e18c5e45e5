// Package archetype tracks the distinct component-set schemas a world
// has seen. Each distinct set gets exactly one archetype record with a
// stable, append-only index. Entity payload storage lives elsewhere;
// an archetype here is the schema plus a live-entity count.
package archetype

import (
	"github.com/strata-ecs/strata/internal/core/component"
)

// Archetype is one distinct component-set schema. An archetype may
// have zero live entities and still represents a schema a future
// entity could adopt.
type Archetype struct {
	index      int
	components component.Set
	live       int
}

// Index returns the archetype's position in the list. Indices are
// stable once assigned.
func (a *Archetype) Index() int {
	return a.index
}

// Components returns the archetype's component set. Callers must not
// mutate it.
func (a *Archetype) Components() component.Set {
	return a.components
}

// Live reports the number of entities currently in the archetype.
func (a *Archetype) Live() int {
	return a.live
}

// Attach records one entity entering the archetype.
func (a *Archetype) Attach() {
	a.live++
}

// Detach records one entity leaving the archetype.
func (a *Archetype) Detach() {
	a.live--
}

// List is the append-only collection of archetypes, with hash-keyed
// lookup by component set. Like the component registry it relies on
// the owning world's single-writer discipline.
type List struct {
	archetypes []*Archetype
	// byKey maps a set hash to candidate indices. Distinct sets may
	// collide on the hash, so lookups confirm with Set.Equal.
	byKey map[uint64][]int
}

// NewList creates an empty archetype list.
func NewList() *List {
	return &List{
		byKey: make(map[uint64][]int),
	}
}

// GetOrCreate returns the archetype for the given component set,
// creating it if the set has never been seen. The second result is
// true exactly when a new distinct schema appeared, which is the sole
// per-mutation validation trigger. The set is cloned on creation, so
// callers may reuse their copy.
func (l *List) GetOrCreate(set component.Set) (*Archetype, bool) {
	key := set.Key()
	for _, idx := range l.byKey[key] {
		if l.archetypes[idx].components.Equal(set) {
			return l.archetypes[idx], false
		}
	}
	a := &Archetype{
		index:      len(l.archetypes),
		components: set.Clone(),
	}
	l.archetypes = append(l.archetypes, a)
	l.byKey[key] = append(l.byKey[key], a.index)
	return a, true
}

// At returns the archetype at index i.
func (l *List) At(i int) *Archetype {
	return l.archetypes[i]
}

// Len returns the number of distinct archetypes seen so far.
func (l *List) Len() int {
	return len(l.archetypes)
}
