/*
Package Lists holds the ordered singly-linked structure a split-ordered hash set is built
on: one ascending sequence of dummy and regular nodes keyed by bit-reversed hashes, plus
the pluggable engines that mutate it.

Engines differ only in how writers synchronize; readers always traverse lock-free over
the shared marked-state protocol, so any engine tolerates concurrent Get and iteration.
*/
package Lists

import "unsafe"

// Cmp orders a probe against stored elements: negative if the element precedes the probe,
// zero if it matches it, positive if it follows it. The probe lives in the closure; this
// stands in for a two-argument less functor since Go methods can't introduce extra type
// parameters for heterogeneous keys. A Cmp is only consulted for nodes whose key equals
// the probed key.
type Cmp[E any] func(*E) int

// Engine is the ordered-list contract the split-ordered set depends on. head is always
// the dummy starting the probed bucket's segment; key is a split-order key. Operations
// are linearizable with respect to the list order. Engines never reclaim nodes: unlinked
// nodes are handed back to the caller untouched.
type Engine[E any] interface {
	// Insert links n at its sorted position iff no equal node exists. onLink, if non-nil,
	// runs on n's value at most once, before n can become visible; a racing equal insert
	// may still win afterwards, in which case n is discarded and Insert returns false.
	Insert(head, n *Node[E], cmp Cmp[E], onLink func(*E)) bool
	// Ensure links cand if no equal node exists, else leaves the list unchanged. Returns
	// the winning node and whether cand was linked. f, if non-nil, observes the outcome;
	// it runs without exclusion against readers.
	Ensure(head, cand *Node[E], cmp Cmp[E], f func(isNew bool, item *E)) (*Node[E], bool)
	// Get returns the matching live node, nil if absent.
	Get(head *Node[E], key uint, cmp Cmp[E]) *Node[E]
	// Extract unlinks and returns the matching node without disposing it, nil if absent.
	Extract(head *Node[E], key uint, cmp Cmp[E]) *Node[E]
	// LinkDummy links d at its sorted position, or returns the already-linked dummy with
	// the same key if another thread won the race. Idempotent.
	LinkDummy(head, d *Node[E]) *Node[E]
}

// searchKey walks from head to the gap where key belongs. It returns the last node
// ordered strictly before (key, cmp), that node's state at read time, and the first node
// not ordered before the probe (nil at list end). found reports an exact match. Dummy and
// regular keys differ in parity, so an equal key always means an equal kind and cmp is
// never called on a dummy.
func searchKey[E any](head *Node[E], key uint, cmp Cmp[E]) (left *Node[E], leftSt *state[E], leftStPtr unsafe.Pointer, right *Node[E], found bool) {
	for left = head; ; {
		right, leftSt, leftStPtr = left.next()
		if right == nil || right.key > key {
			return
		} else if right.key < key {
			left = right
		} else if right.Dummy() {
			found = true
			return
		} else if c := cmp(right.v); c < 0 {
			left = right
		} else {
			found = c == 0
			return
		}
	}
}
