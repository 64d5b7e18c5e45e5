package invariant

import (
	"go.uber.org/zap"

	"github.com/strata-ecs/strata/internal/core/observability/log"
)

// Registry is the insertion-ordered collection of erased invariants a
// world enforces, together with the cursor marking how far through the
// archetype list the current rule set has been validated.
//
// Cursor contract: immediately after any Add the cursor is 0;
// otherwise every archetype with index below the cursor is known to
// satisfy every registered invariant, and archetypes at or above it
// have not been checked against the full current set.
//
// The registry is owned by a single world for the world's whole
// lifetime and has no removal operation: invariants are permanent
// contracts.
type Registry struct {
	invariants  []Invariant
	lastChecked int
	logger      *log.Logger
}

// NewRegistry creates an empty invariant registry. A nil logger
// silences advisories.
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Nop()
	}
	return &Registry{logger: logger}
}

// Add appends an invariant and resets the cursor to 0: archetypes
// validated against the old rule set guarantee nothing about the new
// rule, so the next pass must re-examine everything, empty archetypes
// included.
//
// Adding an invariant whose AtLeastOneOf statement has exactly one
// member emits a non-fatal advisory recommending AllOf; registration
// and evaluation are unaffected.
func (r *Registry) Add(inv Invariant) {
	if inv.redundantSingleton() {
		r.logger.Warn("at_least_one_of statement over a single component; prefer the equivalent all_of for clarity",
			zap.String("invariant", inv.String()),
		)
	}
	r.lastChecked = 0
	r.invariants = append(r.invariants, inv)
}

// Len returns the number of registered invariants.
func (r *Registry) Len() int {
	return len(r.invariants)
}

// At returns the invariant at position i in registration order.
func (r *Registry) At(i int) Invariant {
	return r.invariants[i]
}

// Cursor returns the index of the first archetype not yet validated
// against the current rule set.
func (r *Registry) Cursor() int {
	return r.lastChecked
}
