package invariant

import (
	"errors"
	"fmt"

	"github.com/strata-ecs/strata/internal/core/component"
)

// ErrInvariantViolated is the sentinel wrapped by every
// ViolationError, for errors.Is checks at store boundaries.
var ErrInvariantViolated = errors.New("archetype invariant violated")

// ViolationError reports that an archetype's component set matched an
// invariant's predicate but failed its consequence. It signals a logic
// error in the caller's rule declarations or component manipulation,
// not an environmental failure: the owning world must not be used
// further once one has been reported.
type ViolationError struct {
	// Invariant is the offending rule.
	Invariant Invariant

	// ArchetypeIndex is the violating archetype's stable index.
	ArchetypeIndex int

	// Components is the violating archetype's component set.
	Components component.Set
}

// Error implements the error interface.
func (e *ViolationError) Error() string {
	return fmt.Sprintf("archetype invariant violated: %s (archetype %d has %s)",
		e.Invariant, e.ArchetypeIndex, e.Components)
}

// Unwrap makes the error match ErrInvariantViolated via errors.Is.
func (e *ViolationError) Unwrap() error {
	return ErrInvariantViolated
}

// IsViolation reports whether err is (or wraps) a ViolationError.
func IsViolation(err error) bool {
	var ve *ViolationError
	return errors.As(err, &ve)
}
