package SplitSet

import (
	"github.com/g-m-twostay/split-sets/Lists"
	"github.com/g-m-twostay/split-sets/RCU"
)

// option does work on a SplitSet while New builds it.
type option[E any] interface {
	apply(*SplitSet[E])
}

type engineOption[E any] struct {
	e Lists.Engine[E]
}

func (op engineOption[E]) apply(u *SplitSet[E]) {
	u.eng = op.e
}

// WithEngine selects the ordered-list engine; Lists.Michael by default.
func WithEngine[E any](e Lists.Engine[E]) option[E] {
	return engineOption[E]{e}
}

type staticOption[E any] struct{}

func (staticOption[E]) apply(u *SplitSet[E]) {
	u.fixed = true
}

// WithStaticTable pins the bucket table at its initial size; growth becomes a no-op and
// segments simply get longer past the sizing hint.
func WithStaticTable[E any]() option[E] {
	return staticOption[E]{}
}

type loadFactorOption[E any] struct {
	n uint
}

func (op loadFactorOption[E]) apply(u *SplitSet[E]) {
	if op.n > 0 {
		u.loadFactor = op.n
	}
}

// WithLoadFactor sets the average segment length that triggers a table doubling; 1 by
// default. Small integers up to 8 are sensible.
func WithLoadFactor[E any](n uint) option[E] {
	return loadFactorOption[E]{n}
}

type domainOption[E any] struct {
	d *RCU.Domain
}

func (op domainOption[E]) apply(u *SplitSet[E]) {
	u.dom = op.d
}

// WithDomain shares an RCU domain between containers instead of giving this set its own.
func WithDomain[E any](d *RCU.Domain) option[E] {
	return domainOption[E]{d}
}

type counterOption[E any] struct {
	c Counter
}

func (op counterOption[E]) apply(u *SplitSet[E]) {
	u.count = op.c
}

// WithCounter installs a custom item counting strategy.
func WithCounter[E any](c Counter) option[E] {
	return counterOption[E]{c}
}

// WithFlatCounter swaps the striped default for a single atomic word; cheaper to read,
// hotter to write.
func WithFlatCounter[E any]() option[E] {
	return counterOption[E]{new(flatCounter)}
}

type statsOption[E any] struct {
	s *Stats
}

func (op statsOption[E]) apply(u *SplitSet[E]) {
	u.rec, u.stats = op.s, op.s
}

// WithStats turns on statistics collection into s.
func WithStats[E any](s *Stats) option[E] {
	return statsOption[E]{s}
}
