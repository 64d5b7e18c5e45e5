package world

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// LoadJSON reads a world config from a JSON document.
func LoadJSON(r io.Reader) (*Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadYAML reads a world config from a YAML document.
func LoadYAML(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Apply registers the config's components and invariants on a world.
// Each AddInvariant runs its full check pass, so applying a config to
// a world with existing archetypes re-validates them; the first
// violation aborts the apply.
func (c *Config) Apply(w *World) error {
	for _, name := range c.Components {
		w.RegisterComponent(name)
	}
	for i := range c.Invariants {
		typed, err := c.Invariants[i].typed()
		if err != nil {
			return fmt.Errorf("invariant %d: %w", i, err)
		}
		if err := w.AddInvariant(typed); err != nil {
			return fmt.Errorf("invariant %d: %w", i, err)
		}
	}
	return nil
}

// Build constructs a world from the config. Extra options are applied
// after the config-derived ones, so callers can still override the
// logger or worker count.
func (c *Config) Build(opts ...Option) (*World, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	all := make([]Option, 0, len(opts)+1)
	if c.CheckWorkers > 1 {
		all = append(all, WithCheckWorkers(c.CheckWorkers))
	}
	all = append(all, opts...)
	w := New(all...)
	if err := c.Apply(w); err != nil {
		return nil, err
	}
	return w, nil
}
