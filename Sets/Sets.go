// Package Sets defines the behavior shared by the concurrent set containers.
package Sets

// Set is the concurrency-safe set contract. Implementations report false instead of
// erroring when an operation finds nothing to do.
type Set[E any] interface {
	// Insert adds a copy of v; false if an equal element already exists.
	Insert(v E) bool
	// Find reports whether an element equal to v is present.
	Find(v E) bool
	// Erase removes the element equal to v; false if absent.
	Erase(v E) bool
	// Size approximates the element count while writers are in flight.
	Size() uint
	// Range visits elements until f returns false; weakly consistent.
	Range(f func(*E) bool)
}
