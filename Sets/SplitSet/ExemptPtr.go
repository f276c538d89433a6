package SplitSet

import "github.com/g-m-twostay/split-sets/Lists"

// ExemptPtr owns at most one node already unlinked from its set but not yet handed to
// reclamation. Treat it as move-only: copying one invites a double retire. The zero value
// is Empty.
type ExemptPtr[E any] struct {
	n     *Lists.Node[E]
	owner *SplitSet[E]
}

func (p *ExemptPtr[E]) Empty() bool {
	return p.n == nil
}

// Value of the held element, nil when Empty. Valid until Release, or, if Release hasn't
// happened, for as long as the read-side section that performed the extraction stays
// open.
func (p *ExemptPtr[E]) Value() *E {
	if p.n == nil {
		return nil
	}
	return p.n.Value()
}

// Release hands the node to the retire queue and empties the handle. Call it only after
// the read-side section that performed the extraction has ended: Release can wait out a
// grace period, and a thread can't outwait its own open section. Releasing an Empty
// handle is a caller error and panics.
func (p *ExemptPtr[E]) Release() {
	if p.n == nil {
		panic("SplitSet: Release of empty ExemptPtr")
	}
	p.owner.retire(p.n)
	p.n = nil
}
