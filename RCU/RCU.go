package RCU

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Ticket records the epoch a reader entered under; Exit needs it to decrement the right
// side of the reader count.
type Ticket uint64

// DefaultLimit is the number of buffered retired callbacks that triggers a flush.
const DefaultLimit = 128

// Domain is a buffered general-purpose RCU instance. Readers bracket their accesses with
// Enter/Exit and never block. Retire buffers a reclamation callback; once the buffer
// exceeds its limit the retiring thread pays for one grace period and runs the drained
// callbacks. One Domain can serve any number of containers.
type Domain struct {
	epoch atomic.Uint64
	//open sections, indexed by entry epoch parity. One atomic word per parity: the drain
	//check in Synchronize needs an exact count, and a striped counter's non-atomic sum can
	//read zero while a section is still open.
	readers [2]atomic.Int64
	retired retireQ
	pending atomic.Int64
	limit   int64
	writers sync.Mutex //serializes epoch flips.
}

// NewDomain with the given retire buffer limit; limit <= 0 selects DefaultLimit.
func NewDomain(limit int64) *Domain {
	if limit <= 0 {
		limit = DefaultLimit
	}
	d := &Domain{limit: limit}
	d.retired.init()
	return d
}

// Enter opens a read-side critical section. Sections nest freely.
func (d *Domain) Enter() Ticket {
	for {
		e := d.epoch.Load()
		d.readers[e&1].Add(1)
		if d.epoch.Load() == e {
			return Ticket(e)
		}
		//the epoch flipped mid-entry; recount under the current one so Synchronize can't
		//wait on a section that registered after it started.
		d.readers[e&1].Add(-1)
	}
}

// Exit closes the section opened by the Enter that returned t.
func (d *Domain) Exit(t Ticket) {
	d.readers[uint64(t)&1].Add(-1)
}

// Synchronize returns once every read-side section open at the time of the call has
// exited. Calling it inside a read-side section deadlocks on that section's own exit.
func (d *Domain) Synchronize() {
	d.writers.Lock()
	e := d.epoch.Load()
	d.epoch.Store(e + 1)
	for d.readers[e&1].Load() != 0 {
		runtime.Gosched()
	}
	d.writers.Unlock()
}

// Retire schedules fn to run after a future grace period. fn runs on whichever thread
// overflows the buffer, so it must not require a particular goroutine.
func (d *Domain) Retire(fn func()) {
	d.retired.push(fn)
	if d.pending.Add(1) >= d.limit {
		d.Flush()
	}
}

// Flush waits out one grace period and runs every callback retired before the call.
// Subject to the same read-side restriction as Synchronize.
func (d *Domain) Flush() {
	if n := d.pending.Swap(0); n > 0 {
		d.Synchronize()
		for ; n > 0; n-- {
			fn, ok := d.retired.pop()
			if !ok {
				break
			}
			fn()
		}
	}
}
