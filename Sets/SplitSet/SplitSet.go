package SplitSet

import (
	"math/bits"
	"sync"
	"sync/atomic"

	Split_Sets "github.com/g-m-twostay/split-sets"
	"github.com/g-m-twostay/split-sets/Lists"
	"github.com/g-m-twostay/split-sets/RCU"
	"github.com/puzpuzpuz/xsync/v3"
)

// SplitSet is a resizable concurrent hash set over the split-ordered list algorithm
// (Shalev, Shavit: "Split-Ordered Lists - Lock-Free Resizable Hash Tables") with
// RCU-scoped node reclamation. Elements never move once linked; growing only inserts new
// dummy nodes, so no operation ever waits on a rehash.
//
// Every operation manages its own read-side section except Extract/ExtractWith, Get/
// GetWith and Range, which must run inside a section the caller opened on Domain(). The
// inverse restriction holds for Erase*, Clear and ExemptPtr.Release: they may wait out a
// grace period, so calling them inside a read-side section can self-deadlock.
type SplitSet[E any] struct {
	hash func(*E) uint
	less func(*E, *E) bool
	eng  Lists.Engine[E]
	dom  *RCU.Domain

	tbl   atomic.Pointer[table[E]]
	count Counter
	rec   Recorder
	stats *Stats
	pool  sync.Pool //retired node shells, reusable one grace period after unlinking.

	loadFactor uint
	growing    atomic.Uint32
	fixed      bool
}

// Counter is the item counting strategy. It tracks linked regular nodes; approximate
// under concurrent writers, exact at quiescence.
type Counter interface {
	Inc()
	Dec()
	Value() int64
}

// flatCounter trades the striped default for a single atomic word.
type flatCounter struct {
	c Split_Sets.AtomicUint
}

func (u *flatCounter) Inc() { u.c.Add(1) }
func (u *flatCounter) Dec() { u.c.Add(^uint(0)) }
func (u *flatCounter) Value() int64 {
	return int64(u.c.Load())
}

// New SplitSet sized for about hint elements. hash must agree with less: elements that
// compare equal must hash alike, and less must be a strict weak ordering. The zero hint
// is fine, the table starts at two buckets and doubles as needed.
func New[E any](hash func(*E) uint, less func(*E, *E) bool, hint uint, opts ...option[E]) *SplitSet[E] {
	u := &SplitSet[E]{hash: hash, less: less, eng: Lists.Michael[E]{}, count: xsync.NewCounter(), rec: noStats{}, loadFactor: 1}
	for _, op := range opts {
		op.apply(u)
	}
	if u.dom == nil {
		u.dom = RCU.NewDomain(0)
	}
	u.tbl.Store(newTable(uint(1)<<bits.Len((hint/u.loadFactor)|1), Lists.NewDummy[E](dummyKey(0))))
	return u
}

// Domain exposes the RCU instance guarding this set, for Extract/Get/Range callers.
func (u *SplitSet[E]) Domain() *RCU.Domain {
	return u.dom
}

// cmp adapts the set's less ordering into a probe comparator for v.
func (u *SplitSet[E]) cmp(probe *E) Lists.Cmp[E] {
	return func(x *E) int {
		if u.less(x, probe) {
			return -1
		} else if u.less(probe, x) {
			return 1
		}
		return 0
	}
}

func (u *SplitSet[E]) alloc(key uint, v *E) *Lists.Node[E] {
	if n, _ := u.pool.Get().(*Lists.Node[E]); n != nil {
		n.Reset(key, v)
		return n
	}
	return Lists.NewNode(key, v)
}

// free recycles a shell no traversal can reach: either never published or past its grace
// period.
func (u *SplitSet[E]) free(n *Lists.Node[E]) {
	n.Reset(0, nil)
	u.pool.Put(n)
}

// retire hands an unlinked node to the domain; the shell is recycled only after in-flight
// readers drain, so a reader that found it before the unlink dereferences it safely.
func (u *SplitSet[E]) retire(n *Lists.Node[E]) {
	u.dom.Retire(func() {
		u.free(n)
	})
}

// Insert a copy of v; false if an element equal to v is already present, in which case
// the set is unchanged.
func (u *SplitSet[E]) Insert(v E) bool {
	return u.insertNode(&v, nil)
}

// InsertWith links a node holding v, running init on the stored value at most once,
// before other threads can see it. Use it to fill non-key fields without publishing a
// half-built element. A racing equal insert can still win after init ran; the initialized
// node is then discarded and false returned, so init must only touch the node it is
// given.
func (u *SplitSet[E]) InsertWith(v E, init func(*E)) bool {
	return u.insertNode(&v, init)
}

// Emplace constructs the element in place via ctor and inserts it.
func (u *SplitSet[E]) Emplace(ctor func() E) bool {
	v := ctor()
	return u.insertNode(&v, nil)
}

func (u *SplitSet[E]) insertNode(v *E, init func(*E)) bool {
	h := u.hash(v)
	n := u.alloc(regularKey(h), v)
	t := u.dom.Enter()
	ok := u.eng.Insert(u.bucket(h), n, u.cmp(v), init)
	u.dom.Exit(t)
	if u.rec.onInsert(ok); ok {
		u.count.Inc()
		u.tryGrow()
	} else {
		u.free(n)
	}
	return ok
}

// Ensure inserts v if no equal element exists, otherwise keeps the present one; exactly
// one of any set of racing Ensure calls for the same key inserts. f, when non-nil,
// observes the outcome as f(isNew, stored, arg); it may change non-key fields of stored
// but gets no exclusion against concurrent readers. The first result mirrors structural
// success and is always true here since allocation failures panic in Go; the second
// reports whether v was newly inserted.
func (u *SplitSet[E]) Ensure(v E, f func(isNew bool, item, arg *E)) (bool, bool) {
	h := u.hash(&v)
	vv := v
	cand := u.alloc(regularKey(h), &vv)
	var g func(bool, *E)
	if f != nil {
		g = func(isNew bool, item *E) {
			f(isNew, item, &v)
		}
	}
	t := u.dom.Enter()
	_, isNew := u.eng.Ensure(u.bucket(h), cand, u.cmp(&v), g)
	u.dom.Exit(t)
	if u.rec.onEnsure(isNew); isNew {
		u.count.Inc()
		u.tryGrow()
	} else {
		u.free(cand)
	}
	return true, isNew
}

// Erase the element equal to v; reports whether one was removed.
func (u *SplitSet[E]) Erase(v E) bool {
	return u.EraseFunc(v, nil)
}

// EraseFunc additionally shows the removed value to f before it is retired.
func (u *SplitSet[E]) EraseFunc(v E, f func(*E)) bool {
	return u.eraseWith(u.hash(&v), u.cmp(&v), f)
}

// EraseWith is EraseFunc keyed by a caller-computed hash and probe comparator, for
// heterogeneous lookups. cmp must induce the same order as the set's own comparator; f
// may be nil.
func (u *SplitSet[E]) EraseWith(h uint, cmp Lists.Cmp[E], f func(*E)) bool {
	return u.eraseWith(h, cmp, f)
}

func (u *SplitSet[E]) eraseWith(h uint, cmp Lists.Cmp[E], f func(*E)) bool {
	t := u.dom.Enter()
	n := u.eng.Extract(u.bucket(h), regularKey(h), cmp)
	u.dom.Exit(t)
	if u.rec.onErase(n != nil); n == nil {
		return false
	}
	u.count.Dec()
	if f != nil {
		f(n.Value())
	}
	u.retire(n)
	return true
}

// Extract unlinks the element equal to v and returns the owning handle, Empty if absent.
// Call it inside an open read-side section on Domain(); the handle stays dereferenceable
// afterwards until Release. Extract itself never blocks, never synchronizes and does not
// retire the node.
func (u *SplitSet[E]) Extract(v E) ExemptPtr[E] {
	return u.ExtractWith(u.hash(&v), u.cmp(&v))
}

// ExtractWith is Extract with a caller-computed hash and probe comparator.
func (u *SplitSet[E]) ExtractWith(h uint, cmp Lists.Cmp[E]) ExemptPtr[E] {
	n := u.eng.Extract(u.bucket(h), regularKey(h), cmp)
	if u.rec.onExtract(n != nil); n != nil {
		u.count.Dec()
	}
	return ExemptPtr[E]{n: n, owner: u}
}

// Find reports whether an element equal to v is present.
func (u *SplitSet[E]) Find(v E) bool {
	return u.FindFunc(v, nil)
}

// FindFunc additionally calls f on the live element inside the operation's own read-side
// section. f must tolerate concurrent readers of the same element; nothing serializes
// them.
func (u *SplitSet[E]) FindFunc(v E, f func(*E)) bool {
	return u.findWith(u.hash(&v), u.cmp(&v), f)
}

// FindWith is FindFunc with a caller-computed hash and probe comparator; f may be nil.
func (u *SplitSet[E]) FindWith(h uint, cmp Lists.Cmp[E], f func(*E)) bool {
	return u.findWith(h, cmp, f)
}

func (u *SplitSet[E]) findWith(h uint, cmp Lists.Cmp[E], f func(*E)) bool {
	t := u.dom.Enter()
	n := u.eng.Get(u.bucket(h), regularKey(h), cmp)
	if n != nil && f != nil {
		f(n.Value())
	}
	u.dom.Exit(t)
	u.rec.onFind(n != nil)
	return n != nil
}

// Get returns the stored element equal to v, nil if absent. The pointer is valid only
// while the read-side section the caller opened on Domain() stays open; after it closes
// the element may be reclaimed at any time.
func (u *SplitSet[E]) Get(v E) *E {
	return u.GetWith(u.hash(&v), u.cmp(&v))
}

// GetWith is Get with a caller-computed hash and probe comparator.
func (u *SplitSet[E]) GetWith(h uint, cmp Lists.Cmp[E]) *E {
	n := u.eng.Get(u.bucket(h), regularKey(h), cmp)
	u.rec.onFind(n != nil)
	if n == nil {
		return nil
	}
	return n.Value()
}

// Range walks live elements in split order, stopping when f returns false. It must run
// entirely inside one read-side section on Domain(). The guarantee is weak: elements
// unlinked mid-walk can end it early and concurrent inserts may be missed, so treat it as
// a debugging aid rather than a snapshot.
func (u *SplitSet[E]) Range(f func(*E) bool) {
	for cur := u.tbl.Load().slots[0].Load().Next(); cur != nil; cur = cur.Next() {
		if !cur.Dummy() {
			if !f(cur.Value()) {
				return
			}
		}
	}
}

// Clear empties the set. Not atomic: writers racing with Clear may observe a partially
// cleared set or slip new elements behind the sweep; serialize externally if that
// matters. Dummy nodes and the bucket table survive.
func (u *SplitSet[E]) Clear() {
	for {
		t := u.dom.Enter()
		var v E
		found := false
		for cur := u.tbl.Load().slots[0].Load().Next(); cur != nil; cur = cur.Next() {
			if !cur.Dummy() {
				v, found = *cur.Value(), true
				break
			}
		}
		u.dom.Exit(t)
		if !found {
			return
		}
		u.Erase(v)
	}
}

// Size is derived from the item counter, so it's approximate while writers are in flight
// and exact at quiescence.
func (u *SplitSet[E]) Size() uint {
	if v := u.count.Value(); v > 0 {
		return uint(v)
	}
	return 0
}

// Empty is Size() == 0, which makes counter accuracy load-bearing; see Size.
func (u *SplitSet[E]) Empty() bool {
	return u.Size() == 0
}

// Statistics returns the collector installed by WithStats, nil when collection is off.
func (u *SplitSet[E]) Statistics() *Stats {
	return u.stats
}
