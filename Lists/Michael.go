package Lists

// Michael is the lock-free engine: linking CASes the predecessor's state, removal marks
// the victim's state first and traversals finish the physical unlink. Writers contending
// on the same gap retry their search; nothing ever blocks.
type Michael[E any] struct{}

func (Michael[E]) Insert(head, n *Node[E], cmp Cmp[E], onLink func(*E)) bool {
	for inited := false; ; {
		left, leftSt, leftStPtr, _, found := searchKey(head, n.key, cmp)
		if found {
			return false
		}
		if leftSt.del { //pred got marked under us, its gap is gone.
			continue
		}
		if !inited {
			if onLink != nil {
				onLink(n.v)
			}
			inited = true
		}
		if left.tryLink(leftSt, leftStPtr, n) {
			return true
		}
	}
}

func (Michael[E]) Ensure(head, cand *Node[E], cmp Cmp[E], f func(bool, *E)) (*Node[E], bool) {
	for {
		left, leftSt, leftStPtr, right, found := searchKey(head, cand.key, cmp)
		if found {
			if f != nil {
				f(false, right.v)
			}
			return right, false
		}
		if leftSt.del {
			continue
		}
		if left.tryLink(leftSt, leftStPtr, cand) {
			if f != nil {
				f(true, cand.v)
			}
			return cand, true
		}
	}
}

func (Michael[E]) Get(head *Node[E], key uint, cmp Cmp[E]) *Node[E] {
	if _, _, _, right, found := searchKey(head, key, cmp); found {
		return right
	}
	return nil
}

func (Michael[E]) Extract(head *Node[E], key uint, cmp Cmp[E]) *Node[E] {
	for {
		_, _, _, right, found := searchKey(head, key, cmp)
		if !found {
			return nil
		}
		if right.mark() {
			searchKey(head, key, cmp) //one helping pass to finish the physical unlink.
			return right
		}
		//lost the removal race for this node; rescan for another match.
	}
}

func (Michael[E]) LinkDummy(head, d *Node[E]) *Node[E] {
	for {
		left, leftSt, leftStPtr, right, found := searchKey(head, d.key, nil)
		if found {
			return right
		}
		if leftSt.del {
			continue
		}
		if left.tryLink(leftSt, leftStPtr, d) {
			return d
		}
	}
}
