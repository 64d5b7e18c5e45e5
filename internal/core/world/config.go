package world

import (
	"fmt"

	"github.com/strata-ecs/strata/internal/core/invariant"
)

// Config describes a world declaratively: component types to
// pre-register and invariants to enforce. It loads from YAML or JSON
// (see loader.go) and applies to a freshly constructed world.
type Config struct {
	Name         string            `json:"name,omitempty" yaml:"name,omitempty"`
	LogLevel     string            `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	CheckWorkers int               `json:"check_workers,omitempty" yaml:"check_workers,omitempty"`
	Components   []string          `json:"components,omitempty" yaml:"components,omitempty"`
	Invariants   []InvariantConfig `json:"invariants,omitempty" yaml:"invariants,omitempty"`
}

// InvariantConfig declares one rule. Either FullBundle is set, or both
// Predicate and Consequence are.
type InvariantConfig struct {
	FullBundle  []string         `json:"full_bundle,omitempty" yaml:"full_bundle,omitempty"`
	Predicate   *StatementConfig `json:"predicate,omitempty" yaml:"predicate,omitempty"`
	Consequence *StatementConfig `json:"consequence,omitempty" yaml:"consequence,omitempty"`
}

// StatementConfig declares one statement by kind name and component
// names.
type StatementConfig struct {
	Kind       string   `json:"kind" yaml:"kind"`
	Components []string `json:"components" yaml:"components"`
}

// Validate checks the config for structural problems before it is
// applied.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.CheckWorkers < 0 {
		return fmt.Errorf("check_workers must not be negative, got %d", c.CheckWorkers)
	}
	for i := range c.Invariants {
		if err := c.Invariants[i].Validate(); err != nil {
			return fmt.Errorf("invariant %d: %w", i, err)
		}
	}
	return nil
}

// Validate checks one invariant declaration.
func (ic *InvariantConfig) Validate() error {
	if len(ic.FullBundle) > 0 {
		if ic.Predicate != nil || ic.Consequence != nil {
			return fmt.Errorf("full_bundle excludes predicate and consequence")
		}
		return nil
	}
	if ic.Predicate == nil || ic.Consequence == nil {
		return fmt.Errorf("predicate and consequence are both required without full_bundle")
	}
	if err := ic.Predicate.Validate(); err != nil {
		return fmt.Errorf("predicate: %w", err)
	}
	if err := ic.Consequence.Validate(); err != nil {
		return fmt.Errorf("consequence: %w", err)
	}
	return nil
}

// Validate checks one statement declaration.
func (sc *StatementConfig) Validate() error {
	if _, err := parseKind(sc.Kind); err != nil {
		return err
	}
	return nil
}

func parseKind(s string) (invariant.Kind, error) {
	switch s {
	case "all_of":
		return invariant.KindAllOf, nil
	case "at_least_one_of":
		return invariant.KindAtLeastOneOf, nil
	case "none_of":
		return invariant.KindNoneOf, nil
	default:
		return 0, fmt.Errorf("unknown statement kind %q", s)
	}
}

// typed converts a validated declaration to its typed invariant.
func (ic *InvariantConfig) typed() (invariant.TypedInvariant, error) {
	if len(ic.FullBundle) > 0 {
		return invariant.TypedFullBundle(invariant.Bundle(ic.FullBundle)), nil
	}
	pk, err := parseKind(ic.Predicate.Kind)
	if err != nil {
		return invariant.TypedInvariant{}, fmt.Errorf("predicate: %w", err)
	}
	ck, err := parseKind(ic.Consequence.Kind)
	if err != nil {
		return invariant.TypedInvariant{}, fmt.Errorf("consequence: %w", err)
	}
	return invariant.TypedInvariant{
		Predicate:   invariant.TypedStatement{Kind: pk, Bundle: invariant.Bundle(ic.Predicate.Components)},
		Consequence: invariant.TypedStatement{Kind: ck, Bundle: invariant.Bundle(ic.Consequence.Components)},
	}, nil
}
