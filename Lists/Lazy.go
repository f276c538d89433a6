package Lists

// Lazy serializes writers per bucket through the bucket dummy's RWMutex: inserts and
// dummy links share the lock, unlinks take it exclusively. Structural CASes stay because
// inserts still race each other under the shared lock. Readers are identical to Michael's
// and take no lock, which is why removal still marks before unlinking.
type Lazy[E any] struct{}

func (Lazy[E]) Insert(head, n *Node[E], cmp Cmp[E], onLink func(*E)) bool {
	head.lk.RLock()
	defer head.lk.RUnlock()
	return Michael[E]{}.Insert(head, n, cmp, onLink)
}

func (Lazy[E]) Ensure(head, cand *Node[E], cmp Cmp[E], f func(bool, *E)) (*Node[E], bool) {
	head.lk.RLock()
	defer head.lk.RUnlock()
	return Michael[E]{}.Ensure(head, cand, cmp, f)
}

func (Lazy[E]) Get(head *Node[E], key uint, cmp Cmp[E]) *Node[E] {
	return Michael[E]{}.Get(head, key, cmp)
}

func (Lazy[E]) Extract(head *Node[E], key uint, cmp Cmp[E]) *Node[E] {
	head.lk.Lock()
	defer head.lk.Unlock()
	//the lock doesn't fully serialize removals: while the bucket index doubles, a racing
	//remover may reach this segment through a different generation's dummy and hold a
	//different lock. The mark CAS stays the single point of no return.
	return Michael[E]{}.Extract(head, key, cmp)
}

func (Lazy[E]) LinkDummy(head, d *Node[E]) *Node[E] {
	head.lk.RLock()
	defer head.lk.RUnlock()
	return Michael[E]{}.LinkDummy(head, d)
}
