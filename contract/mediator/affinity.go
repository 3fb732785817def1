package mediator

// Affinity places a message or handler type in a two-level grouping used to
// rank competing exception handlers. Group is module-like; Location is the
// sub-grouping inside it (for example a package path below the module).
type Affinity struct {
	Group    string
	Location string
}

// Affine lets a message or handler declare its Affinity explicitly instead of
// having it inferred from its package path.
type Affine interface {
	Affinity() Affinity
}
