package component

import (
	"encoding/binary"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Set is an unordered collection of component IDs. Construct sets with
// NewSet; the nil map is not usable.
type Set map[ID]struct{}

// NewSet builds a set from the given IDs, discarding duplicates.
func NewSet(ids ...ID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts an ID into the set.
func (s Set) Add(id ID) {
	s[id] = struct{}{}
}

// Remove deletes an ID from the set.
func (s Set) Remove(id ID) {
	delete(s, id)
}

// Contains reports whether the set holds the given ID.
func (s Set) Contains(id ID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of IDs in the set.
func (s Set) Len() int {
	return len(s)
}

// ContainsAll reports whether every ID of other is present in s.
// An empty other is contained in every set, including the empty one.
func (s Set) ContainsAll(other Set) bool {
	if len(other) > len(s) {
		return false
	}
	for id := range other {
		if _, ok := s[id]; !ok {
			return false
		}
	}
	return true
}

// Intersects reports whether s and other share at least one ID.
// An empty set intersects nothing.
func (s Set) Intersects(other Set) bool {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for id := range small {
		if _, ok := large[id]; ok {
			return true
		}
	}
	return false
}

// Equal reports whether both sets hold exactly the same IDs.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	return s.ContainsAll(other)
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Sorted returns the IDs in ascending order.
func (s Set) Sorted() []ID {
	out := make([]ID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Key returns a stable 64-bit hash of the set, derived from the sorted
// IDs. Equal sets always produce equal keys; the archetype list uses
// keys for lookup and confirms with Equal, so collisions are tolerated.
func (s Set) Key() uint64 {
	var (
		d   xxhash.Digest
		buf [4]byte
	)
	d.Reset()
	for _, id := range s.Sorted() {
		binary.LittleEndian.PutUint32(buf[:], uint32(id))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// String renders the set as sorted IDs, for diagnostics.
func (s Set) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, id := range s.Sorted() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	b.WriteByte('}')
	return b.String()
}

// Describe renders the set using registered component names, falling
// back to numeric IDs for names the registry does not know.
func (s Set) Describe(reg *Registry) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, id := range s.Sorted() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(reg.Name(id))
	}
	b.WriteByte('}')
	return b.String()
}
