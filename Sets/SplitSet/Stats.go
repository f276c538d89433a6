package SplitSet

import "sync/atomic"

// Recorder is the statistics strategy; the default drops everything so the hot paths pay
// nothing when collection is off.
type Recorder interface {
	onInsert(ok bool)
	onEnsure(isNew bool)
	onErase(ok bool)
	onExtract(ok bool)
	onFind(ok bool)
	onBucket()
	onGrow()
}

// Stats collects operation counters. Read the fields directly; they're independently
// atomic, not a consistent snapshot.
type Stats struct {
	Inserts, InsertMisses   atomic.Uint64
	EnsureNew, EnsureHits   atomic.Uint64
	Erases, EraseMisses     atomic.Uint64
	Extracts, ExtractMisses atomic.Uint64
	Finds, FindMisses       atomic.Uint64
	Buckets, Grows          atomic.Uint64
}

func (s *Stats) onInsert(ok bool) {
	if ok {
		s.Inserts.Add(1)
	} else {
		s.InsertMisses.Add(1)
	}
}
func (s *Stats) onEnsure(isNew bool) {
	if isNew {
		s.EnsureNew.Add(1)
	} else {
		s.EnsureHits.Add(1)
	}
}
func (s *Stats) onErase(ok bool) {
	if ok {
		s.Erases.Add(1)
	} else {
		s.EraseMisses.Add(1)
	}
}
func (s *Stats) onExtract(ok bool) {
	if ok {
		s.Extracts.Add(1)
	} else {
		s.ExtractMisses.Add(1)
	}
}
func (s *Stats) onFind(ok bool) {
	if ok {
		s.Finds.Add(1)
	} else {
		s.FindMisses.Add(1)
	}
}
func (s *Stats) onBucket() { s.Buckets.Add(1) }
func (s *Stats) onGrow()   { s.Grows.Add(1) }

type noStats struct{}

func (noStats) onInsert(bool)  {}
func (noStats) onEnsure(bool)  {}
func (noStats) onErase(bool)   {}
func (noStats) onExtract(bool) {}
func (noStats) onFind(bool)    {}
func (noStats) onBucket()      {}
func (noStats) onGrow()        {}
