package invariant

import (
	"github.com/strata-ecs/strata/internal/core/archetype"
	"github.com/strata-ecs/strata/pkg/parallel"
)

// CheckArchetype validates one archetype against every registered
// invariant in registration order. It returns a *ViolationError for
// the first invariant whose predicate matches the archetype but whose
// consequence fails, or nil if all hold. It does not move the cursor;
// passes own cursor movement.
func (r *Registry) CheckArchetype(arch *archetype.Archetype) error {
	set := arch.Components()
	for _, inv := range r.invariants {
		if !inv.Predicate.Eval(set) {
			continue
		}
		if !inv.Consequence.Eval(set) {
			return &ViolationError{
				Invariant:      inv,
				ArchetypeIndex: arch.Index(),
				Components:     set.Clone(),
			}
		}
	}
	return nil
}

// CheckPass validates every archetype from the cursor to the end of
// the list, aborting on the first violation. On full success the
// cursor advances to the list length, recording that every archetype
// now satisfies the current rule set.
//
// After an Add the cursor is 0 and the pass covers the whole list;
// after a new archetype is appended with an unchanged rule set the
// cursor equals the prior length and the pass covers exactly the new
// archetype.
func (r *Registry) CheckPass(list *archetype.List) error {
	for i := r.lastChecked; i < list.Len(); i++ {
		if err := r.CheckArchetype(list.At(i)); err != nil {
			return err
		}
	}
	r.lastChecked = list.Len()
	return nil
}

// CheckPassParallel is CheckPass with archetypes validated
// concurrently by up to workers goroutines. Archetype checks are
// read-only and independent; abort-on-first-violation semantics are
// preserved by always reporting the lowest-index violation. workers
// below 2 degrades to the sequential pass.
func (r *Registry) CheckPassParallel(list *archetype.List, workers int) error {
	if workers < 2 {
		return r.CheckPass(list)
	}
	err := parallel.FirstIndexed(r.lastChecked, list.Len(), workers, func(i int) error {
		return r.CheckArchetype(list.At(i))
	})
	if err != nil {
		return err
	}
	r.lastChecked = list.Len()
	return nil
}
