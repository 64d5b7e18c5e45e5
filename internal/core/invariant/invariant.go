package invariant

import (
	"fmt"

	"github.com/strata-ecs/strata/internal/core/component"
)

// Invariant is the erased form of a rule: wherever the predicate holds
// for an archetype's component set, the consequence must hold too.
// Predicate and consequence sets carry no implicit relation; they may
// be disjoint, overlapping or identical.
type Invariant struct {
	Predicate   Statement
	Consequence Statement
}

// FullBundle builds the common "all or nothing" rule over a resolved
// component set: if any one member is present, all members must be.
func FullBundle(set component.Set) Invariant {
	return Invariant{
		Predicate:   AtLeastOneOf(set),
		Consequence: AllOf(set),
	}
}

// Holds reports whether an archetype with the given component set
// satisfies the invariant. Archetypes the predicate does not match
// satisfy it trivially.
func (inv Invariant) Holds(entity component.Set) bool {
	if !inv.Predicate.Eval(entity) {
		return true
	}
	return inv.Consequence.Eval(entity)
}

// Resolve lets an erased invariant satisfy Declaration so callers can
// register typed and erased rules through one entry point.
func (inv Invariant) Resolve(*component.Registry) Invariant {
	return inv
}

func (inv Invariant) String() string {
	return fmt.Sprintf("if %s then %s", inv.Predicate, inv.Consequence)
}

// Describe renders the invariant with component names.
func (inv Invariant) Describe(reg *component.Registry) string {
	return fmt.Sprintf("if %s then %s", inv.Predicate.Describe(reg), inv.Consequence.Describe(reg))
}

// redundantSingleton reports the advisory condition: an AtLeastOneOf
// statement over exactly one component, which is AllOf in disguise.
func (inv Invariant) redundantSingleton() bool {
	for _, s := range []Statement{inv.Predicate, inv.Consequence} {
		if s.kind == KindAtLeastOneOf && s.components.Len() == 1 {
			return true
		}
	}
	return false
}

// Declaration is a rule in either typed or erased form. Resolving may
// register previously-unseen component types; it never fails.
type Declaration interface {
	Resolve(reg *component.Registry) Invariant
}

// Bundle is a group of component type names treated as a unit when
// declaring rules. It is the dynamic stand-in for a compile-time
// bundle type: resolution maps each name to its component ID.
type Bundle []string

// TypedStatement is a statement whose component set has not been
// resolved to IDs yet.
type TypedStatement struct {
	Kind   Kind
	Bundle Bundle
}

// TypedInvariant is a rule declared over bundles. Converting it to an
// Invariant requires the component registry and is one-way; predicate
// and consequence bundles resolve independently.
type TypedInvariant struct {
	Predicate   TypedStatement
	Consequence TypedStatement
}

// TypedFullBundle declares the "all or nothing" rule over a bundle.
func TypedFullBundle(b Bundle) TypedInvariant {
	return TypedInvariant{
		Predicate:   TypedStatement{Kind: KindAtLeastOneOf, Bundle: b},
		Consequence: TypedStatement{Kind: KindAllOf, Bundle: b},
	}
}

// Resolve erases the typed invariant against the registry, registering
// any component names seen for the first time.
func (t TypedInvariant) Resolve(reg *component.Registry) Invariant {
	return Invariant{
		Predicate:   t.Predicate.resolve(reg),
		Consequence: t.Consequence.resolve(reg),
	}
}

func (ts TypedStatement) resolve(reg *component.Registry) Statement {
	set := component.NewSet()
	for _, name := range ts.Bundle {
		set.Add(reg.GetOrRegister(name))
	}
	return Statement{kind: ts.Kind, components: set}
}
