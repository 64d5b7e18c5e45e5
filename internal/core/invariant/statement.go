// Package invariant implements archetype invariants: rules about which
// component types may coexist on the entities of a world.
//
// An invariant is a predicate/consequence pair of statements over
// component sets. Invariants behave like assertions: every archetype
// the world has seen must satisfy every registered invariant at all
// times. Validation runs when a new distinct schema appears or when a
// rule is added, never when entities move between existing archetypes,
// so cost is bounded by distinct schemas times rules, independent of
// entity count.
package invariant

import (
	"fmt"

	"github.com/strata-ecs/strata/internal/core/component"
)

// Kind discriminates the statement variants.
type Kind uint8

const (
	// KindAllOf is true iff every component of the statement's set is
	// present on the archetype.
	KindAllOf Kind = iota
	// KindAtLeastOneOf is true iff the archetype has at least one
	// component of the statement's set.
	KindAtLeastOneOf
	// KindNoneOf is true iff the archetype has no component of the
	// statement's set.
	KindNoneOf
)

// String returns the config-file spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindAllOf:
		return "all_of"
	case KindAtLeastOneOf:
		return "at_least_one_of"
	case KindNoneOf:
		return "none_of"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Statement is a claim about the presence or absence of a component
// set on an archetype. Statements are immutable once constructed.
type Statement struct {
	kind       Kind
	components component.Set
}

// AllOf builds a statement requiring every component of set.
func AllOf(set component.Set) Statement {
	return Statement{kind: KindAllOf, components: set.Clone()}
}

// AtLeastOneOf builds a statement requiring at least one component of
// set. For single-component sets prefer AllOf; evaluation is identical
// but AllOf states the intent directly.
func AtLeastOneOf(set component.Set) Statement {
	return Statement{kind: KindAtLeastOneOf, components: set.Clone()}
}

// NoneOf builds a statement forbidding every component of set.
func NoneOf(set component.Set) Statement {
	return Statement{kind: KindNoneOf, components: set.Clone()}
}

// Kind returns the statement's variant.
func (s Statement) Kind() Kind {
	return s.kind
}

// Components returns the statement's component set. Callers must not
// mutate it.
func (s Statement) Components() component.Set {
	return s.components
}

// Eval reports whether the statement holds for an archetype with the
// given component set. It is total; the degenerate cases are
// AllOf(empty) = true, NoneOf(empty) = true, AtLeastOneOf(empty) =
// false.
func (s Statement) Eval(entity component.Set) bool {
	switch s.kind {
	case KindAllOf:
		return entity.ContainsAll(s.components)
	case KindAtLeastOneOf:
		return entity.Intersects(s.components)
	case KindNoneOf:
		return !entity.Intersects(s.components)
	default:
		return false
	}
}

// String renders the statement for diagnostics.
func (s Statement) String() string {
	return fmt.Sprintf("%s%s", s.kind, s.components)
}

// Describe renders the statement with component names.
func (s Statement) Describe(reg *component.Registry) string {
	return fmt.Sprintf("%s%s", s.kind, s.components.Describe(reg))
}
