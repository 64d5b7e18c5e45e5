// Package component issues stable identifiers for component types and
// provides the set operations the rest of the store is built on.
//
// Identifiers are dense uint32 handles assigned in registration order.
// The registry is append-only: a component type, once registered, keeps
// its ID for the lifetime of the owning world. There is no unregister.
package component

import "fmt"

// ID is an opaque stable handle for a component type.
type ID uint32

// Registry maps component type names to IDs. It is owned by a single
// world and follows that world's single-writer discipline; it performs
// no locking of its own.
type Registry struct {
	ids   map[string]ID
	names []string
}

// NewRegistry creates an empty component registry.
func NewRegistry() *Registry {
	return &Registry{
		ids: make(map[string]ID),
	}
}

// GetOrRegister returns the ID for the named component type,
// registering it first if it has never been seen. Registration always
// succeeds; there is no error path.
func (r *Registry) GetOrRegister(name string) ID {
	if id, ok := r.ids[name]; ok {
		return id
	}
	id := ID(len(r.names))
	r.ids[name] = id
	r.names = append(r.names, name)
	return id
}

// Lookup returns the ID for a name without registering it.
func (r *Registry) Lookup(name string) (ID, bool) {
	id, ok := r.ids[name]
	return id, ok
}

// Name returns the registered name for an ID, or a placeholder for
// IDs the registry never issued.
func (r *Registry) Name(id ID) string {
	if int(id) < len(r.names) {
		return r.names[id]
	}
	return fmt.Sprintf("component(%d)", uint32(id))
}

// Count reports how many component types have been registered.
func (r *Registry) Count() int {
	return len(r.names)
}
