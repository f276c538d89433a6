package RCU

import "sync/atomic"

type rnode struct {
	fn func()
	nx atomic.Pointer[rnode]
}

// retireQ is an unbounded MPMC linked queue of reclamation callbacks. Pops happen in
// retire order, so draining n entries after a grace period only reclaims callbacks whose
// grace period has elapsed.
type retireQ struct {
	head, tail atomic.Pointer[rnode]
}

func (q *retireQ) init() {
	s := new(rnode)
	q.head.Store(s)
	q.tail.Store(s)
}

func (q *retireQ) push(fn func()) {
	n := &rnode{fn: fn}
	for {
		t := q.tail.Load()
		if nx := t.nx.Load(); nx != nil {
			q.tail.CompareAndSwap(t, nx)
		} else if t.nx.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(t, n)
			return
		}
	}
}

func (q *retireQ) pop() (func(), bool) {
	for {
		h, t := q.head.Load(), q.tail.Load()
		nx := h.nx.Load()
		if h == t {
			if nx == nil {
				return nil, false
			}
			q.tail.CompareAndSwap(t, nx)
		} else if q.head.CompareAndSwap(h, nx) {
			return nx.fn, true
		}
	}
}
