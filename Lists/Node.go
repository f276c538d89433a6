package Lists

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// state is the unit a link mutation CASes: the delete mark and the successor change
// together, so a marked node can never gain a new successor.
type state[E any] struct {
	del bool
	nx  *Node[E]
}

// Node is one link of a split-ordered list. Dummy nodes have an even key, carry no value
// and, once published, are never unlinked. Regular nodes have an odd key derived from
// their value's hash; ties between equal keys are broken by the caller's comparator.
type Node[E any] struct {
	key uint
	v   *E
	lk  *sync.RWMutex  //dummies only; the Lazy engine locks bucket segments through this.
	st  unsafe.Pointer //*state[E]
}

func NewNode[E any](key uint, v *E) *Node[E] {
	return &Node[E]{key: key, v: v, st: unsafe.Pointer(new(state[E]))}
}

func NewDummy[E any](key uint) *Node[E] {
	return &Node[E]{key: key, lk: new(sync.RWMutex), st: unsafe.Pointer(new(state[E]))}
}

func (cur *Node[E]) Key() uint {
	return cur.key
}

func (cur *Node[E]) Value() *E {
	return cur.v
}

func (cur *Node[E]) Dummy() bool {
	return cur.key&1 == 0
}

// Reset reinitializes a recycled node shell. Only call it on nodes no traversal can reach
// anymore.
func (cur *Node[E]) Reset(key uint, v *E) {
	cur.key, cur.v = key, v
	cur.st = unsafe.Pointer(new(state[E]))
}

// next returns the first live successor together with cur's state at the time of the
// read, helping to finish the unlink of marked nodes on the way.
func (cur *Node[E]) next() (*Node[E], *state[E], unsafe.Pointer) {
	for {
		curStPtr := atomic.LoadPointer(&cur.st)
		curSt := (*state[E])(curStPtr)
		if nx := curSt.nx; nx == nil {
			return nil, curSt, curStPtr
		} else if nxSt := (*state[E])(atomic.LoadPointer(&nx.st)); nxSt.del {
			atomic.CompareAndSwapPointer(&cur.st, curStPtr, unsafe.Pointer(&state[E]{curSt.del, nxSt.nx}))
		} else {
			return nx, curSt, curStPtr
		}
	}
}

// Next is next for traversals that don't need the CAS context.
func (cur *Node[E]) Next() *Node[E] {
	t, _, _ := cur.next()
	return t
}

// tryLink splices n between cur and cur's successor recorded in oldSt. Fails if cur's
// state changed since oldSt was read, including cur getting marked.
func (cur *Node[E]) tryLink(oldSt *state[E], oldStPtr unsafe.Pointer, n *Node[E]) bool {
	n.st = unsafe.Pointer(&state[E]{nx: oldSt.nx})
	return atomic.CompareAndSwapPointer(&cur.st, oldStPtr, unsafe.Pointer(&state[E]{oldSt.del, n}))
}

// mark logically removes cur; false if another thread already did.
func (cur *Node[E]) mark() bool {
	for {
		curStPtr := atomic.LoadPointer(&cur.st)
		if curSt := (*state[E])(curStPtr); curSt.del {
			return false
		} else if atomic.CompareAndSwapPointer(&cur.st, curStPtr, unsafe.Pointer(&state[E]{true, curSt.nx})) {
			return true
		}
	}
}

func (cur *Node[E]) String() string {
	t := (*state[E])(atomic.LoadPointer(&cur.st))
	return fmt.Sprintf("key: %b; val: %v; dummy: %t; del: %t", cur.key, cur.v, cur.Dummy(), t.del)
}
