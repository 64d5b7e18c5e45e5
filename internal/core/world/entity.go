package world

// Entity is an identifier associated with a dynamically changing set
// of components. IDs are issued sequentially starting at 1 and are
// not reused after despawn.
type Entity uint64

// NoEntity is the zero Entity; no live entity ever has it.
const NoEntity Entity = 0
