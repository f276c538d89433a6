package SplitSet

import (
	"math/bits"
	"sync/atomic"

	"github.com/g-m-twostay/split-sets/Lists"
)

const maxBuckets = 1 << (bits.UintSize - 2)

// regularKey is the split-order key of an element with hash h: the bit-reversed hash with
// the low bit set, so it always sorts after its bucket's dummy and never collides with
// one.
func regularKey(h uint) uint {
	return bits.Reverse(h) | 1
}

// dummyKey is the split-order key of bucket i's dummy. Bucket indexes never use the top
// bit, so the low bit of the reversal is always clear.
func dummyKey(i uint) uint {
	return bits.Reverse(i)
}

// table is one published generation of the bucket index; slots[i] refers to bucket i's
// dummy once the bucket is materialized. Dummies outlive every generation: doubling only
// copies the slots and extends the index range, it never moves a node.
type table[E any] struct {
	slots []atomic.Pointer[Lists.Node[E]]
}

func newTable[E any](buckets uint, root *Lists.Node[E]) *table[E] {
	t := &table[E]{slots: make([]atomic.Pointer[Lists.Node[E]], buckets)}
	t.slots[0].Store(root)
	return t
}

func (t *table[E]) mask() uint {
	return uint(len(t.slots)) - 1
}

// bucket returns the dummy starting the segment h routes to under the current table,
// materializing missing buckets on the way.
func (u *SplitSet[E]) bucket(h uint) *Lists.Node[E] {
	t := u.tbl.Load()
	return u.ensure(t, h&t.mask())
}

// ensure returns bucket i's dummy, creating it after its parent (i with the highest set
// bit cleared) exists. Racing creators converge on the single dummy the engine linked;
// the loser's fresh dummy is garbage collected. Slot 0 is filled at construction, which
// bounds the recursion.
func (u *SplitSet[E]) ensure(t *table[E], i uint) *Lists.Node[E] {
	if d := t.slots[i].Load(); d != nil {
		return d
	}
	parent := u.ensure(t, i&^(1<<(bits.Len(i)-1)))
	d := u.eng.LinkDummy(parent, Lists.NewDummy[E](dummyKey(i)))
	if t.slots[i].CompareAndSwap(nil, d) {
		u.rec.onBucket()
	}
	return d
}

// tryGrow doubles the bucket index when the average segment outgrows the load factor.
// Doubling is pure bookkeeping: new dummies appear lazily as buckets are first touched.
// Slots published into the stale generation during the copy aren't lost, the next ensure
// relinks the same dummy idempotently.
func (u *SplitSet[E]) tryGrow() {
	if u.fixed {
		return
	}
	t := u.tbl.Load()
	if c := u.count.Value(); c <= 0 || uint(c) <= u.loadFactor*uint(len(t.slots)) || len(t.slots) >= maxBuckets {
		return
	}
	if u.growing.CompareAndSwap(0, 1) {
		if t == u.tbl.Load() {
			nt := &table[E]{slots: make([]atomic.Pointer[Lists.Node[E]], len(t.slots)<<1)}
			for i := range t.slots {
				nt.slots[i].Store(t.slots[i].Load())
			}
			u.tbl.Store(nt)
			u.rec.onGrow()
		}
		u.growing.Store(0)
	}
}
