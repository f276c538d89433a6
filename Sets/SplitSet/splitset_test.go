package SplitSet

import (
	"sync"
	"sync/atomic"
	"testing"

	Split_Sets "github.com/g-m-twostay/split-sets"
	"github.com/g-m-twostay/split-sets/Lists"
	"github.com/g-m-twostay/split-sets/RCU"
	"github.com/stretchr/testify/require"
)

const (
	blockSize = 64
	blockNum  = 64
)

func intHash(x *int) uint {
	return uint(*x)
}

func intLess(a, b *int) bool {
	return *a < *b
}

func newInts(opts ...option[int]) *SplitSet[int] {
	return New[int](intHash, intLess, 0, opts...)
}

func TestSplitSet_All(t *testing.T) {
	S := newInts()
	for i := 0; i < 10; i++ {
		if !S.Insert(i) {
			t.Error("wrong insert 1")
		}
		if S.Insert(i) {
			t.Error("wrong insert 2")
		}
	}
	if S.Size() != 10 {
		t.Error("wrong size 1")
	}
	for i := 0; i < 10; i++ {
		if !S.Find(i) {
			t.Error("wrong find 1")
		}
	}
	for i := 0; i < 5; i++ {
		if !S.Erase(i) {
			t.Error("wrong erase 1")
		}
		if S.Erase(i) {
			t.Error("wrong erase 2")
		}
	}
	for i := 0; i < 5; i++ {
		if S.Find(i) {
			t.Error("wrong find 2")
		}
	}
	if S.Size() != 5 || S.Empty() {
		t.Error("wrong size 2")
	}
}

func torture(t *testing.T, S *SplitSet[int]) {
	wg := &sync.WaitGroup{}
	wg.Add(blockNum)
	for j := 0; j < blockNum; j++ {
		go func(l, h int) {
			defer wg.Done()
			for i := l; i < h; i++ {
				if !S.Insert(i) {
					t.Errorf("not inserted: %v\n", i)
				}
			}
			for i := l; i < h; i++ {
				if !S.Find(i) {
					t.Errorf("not found: %v\n", i)
				}
			}
			for i := l; i < h; i++ {
				if !S.Erase(i) {
					t.Errorf("not erased: %v\n", i)
				}
			}
			for i := l; i < h; i++ {
				if S.Find(i) {
					t.Errorf("not removed: %v\n", i)
				}
			}
		}(j*blockSize, (j+1)*blockSize)
	}
	wg.Wait()
	if !S.Empty() {
		t.Error("not empty")
	}
}

func TestSplitSet_Concurrent(t *testing.T) {
	torture(t, newInts())
}

func TestSplitSet_ConcurrentLazy(t *testing.T) {
	torture(t, newInts(WithEngine[int](Lists.Lazy[int]{})))
}

func TestSplitSet_ConcurrentFlatCounter(t *testing.T) {
	torture(t, newInts(WithFlatCounter[int]()))
}

func TestSplitSet_Ensure(t *testing.T) {
	S := newInts()
	ok, isNew := S.Ensure(1, nil)
	require.True(t, ok)
	require.True(t, isNew)
	seen := -1
	_, isNew = S.Ensure(1, func(isNew bool, item, arg *int) {
		require.False(t, isNew)
		require.NotSame(t, item, arg)
		seen = *item
	})
	require.False(t, isNew)
	require.Equal(t, 1, seen)
	require.Equal(t, uint(1), S.Size())
}

func TestSplitSet_EnsureRace(t *testing.T) {
	S := newInts()
	var news atomic.Int32
	wg := &sync.WaitGroup{}
	wg.Add(16)
	for j := 0; j < 16; j++ {
		go func() {
			defer wg.Done()
			if _, isNew := S.Ensure(42, nil); isNew {
				news.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, news.Load())
	require.Equal(t, uint(1), S.Size())
}

func TestSplitSet_Extract(t *testing.T) {
	S := newInts()
	S.Insert(7)
	d := S.Domain()

	tk := d.Enter()
	p := S.Extract(7)
	require.False(t, p.Empty())
	require.Equal(t, 7, *p.Value())
	miss := S.Extract(7)
	require.True(t, miss.Empty())
	require.Nil(t, miss.Value())
	d.Exit(tk)

	require.False(t, S.Find(7))
	require.True(t, S.Empty())
	p.Release()
	require.True(t, p.Empty())
	require.Panics(t, func() {
		p.Release()
	})
}

func TestSplitSet_Get(t *testing.T) {
	S := newInts()
	S.Insert(3)
	d := S.Domain()
	tk := d.Enter()
	require.NotNil(t, S.Get(3))
	require.Equal(t, 3, *S.Get(3))
	require.Nil(t, S.Get(4))
	d.Exit(tk)
}

func TestSplitSet_Growth(t *testing.T) {
	st := new(Stats)
	S := newInts(WithStats[int](st), WithLoadFactor[int](1))
	for i := 0; i < 1<<12; i++ {
		require.True(t, S.Insert(i))
	}
	require.Equal(t, uint(1<<12), S.Size())
	for i := 0; i < 1<<12; i++ {
		require.True(t, S.Find(i))
	}
	require.NotZero(t, st.Grows.Load())
	require.NotZero(t, st.Buckets.Load())
	require.EqualValues(t, 1<<12, st.Inserts.Load())
}

func TestSplitSet_StaticTable(t *testing.T) {
	st := new(Stats)
	S := newInts(WithStats[int](st), WithStaticTable[int]())
	for i := 0; i < 1024; i++ {
		require.True(t, S.Insert(i))
	}
	require.Zero(t, st.Grows.Load())
	for i := 0; i < 1024; i++ {
		require.True(t, S.Find(i))
	}
}

func TestSplitSet_Clear(t *testing.T) {
	S := newInts()
	for i := 0; i < 256; i++ {
		S.Insert(i)
	}
	S.Clear()
	require.True(t, S.Empty())
	for i := 0; i < 256; i++ {
		require.False(t, S.Find(i))
	}
	//the table survives a sweep.
	require.True(t, S.Insert(1))
	require.True(t, S.Find(1))
}

func TestSplitSet_Range(t *testing.T) {
	S := newInts()
	for i := 0; i < 128; i++ {
		S.Insert(i)
	}
	seen := make(map[int]bool)
	d := S.Domain()
	tk := d.Enter()
	S.Range(func(v *int) bool {
		seen[*v] = true
		return true
	})
	d.Exit(tk)
	require.Len(t, seen, 128)
	n := 0
	tk = d.Enter()
	S.Range(func(*int) bool {
		n++
		return n < 5
	})
	d.Exit(tk)
	require.Equal(t, 5, n)
}

func TestSplitSet_SharedDomain(t *testing.T) {
	d := RCU.NewDomain(4)
	a := newInts(WithDomain[int](d))
	b := newInts(WithDomain[int](d))
	require.Same(t, d, a.Domain())
	require.Same(t, d, b.Domain())
	for i := 0; i < 64; i++ {
		a.Insert(i)
		b.Insert(-i - 1)
	}
	for i := 0; i < 64; i++ {
		require.True(t, a.Erase(i))
		require.True(t, b.Erase(-i - 1))
	}
	require.True(t, a.Empty())
	require.True(t, b.Empty())
}

func TestSplitSet_Emplace(t *testing.T) {
	S := newInts()
	require.True(t, S.Emplace(func() int {
		return 9
	}))
	require.False(t, S.Emplace(func() int {
		return 9
	}))
	require.True(t, S.Find(9))
}

// a losing InsertWith must report false and leave the stored element untouched by its
// init, no matter how the race with the winner interleaved.
func TestSplitSet_InsertWithDuplicate(t *testing.T) {
	S := New[pair](pairHash, pairLess, 0)
	wg := &sync.WaitGroup{}
	wins := make(chan string, 16)
	wg.Add(16)
	for j := 0; j < 16; j++ {
		go func(j int) {
			defer wg.Done()
			tag := string(rune('a' + j))
			if S.InsertWith(pair{k: 1}, func(p *pair) {
				p.v = tag
			}) {
				wins <- tag
			}
		}(j)
	}
	wg.Wait()
	close(wins)
	require.Len(t, wins, 1)
	winner := <-wins
	stored := ""
	require.True(t, S.FindFunc(pair{k: 1}, func(p *pair) {
		stored = p.v
	}))
	require.Equal(t, winner, stored)
	require.Equal(t, uint(1), S.Size())
}

type pair struct {
	k int
	v string
}

const seed = Split_Sets.Hasher(0x9e3779b9)

func pairHash(p *pair) uint {
	return seed.HashInt(p.k)
}

func pairLess(a, b *pair) bool {
	return a.k < b.k
}

// byKey probes pairs by key alone, no element construction needed.
func byKey(k int) Lists.Cmp[pair] {
	return func(p *pair) int {
		if p.k < k {
			return -1
		} else if p.k > k {
			return 1
		}
		return 0
	}
}

func TestSplitSet_Scenario(t *testing.T) {
	S := New[pair](pairHash, pairLess, 64)
	require.True(t, S.InsertWith(pair{k: 1}, func(p *pair) {
		p.v = "one"
	}))
	require.False(t, S.InsertWith(pair{k: 1}, func(p *pair) {
		p.v = "dup"
	}))
	got := ""
	require.True(t, S.FindFunc(pair{k: 1}, func(p *pair) {
		got = p.v
	}))
	require.Equal(t, "one", got)

	_, isNew := S.Ensure(pair{k: 2, v: "two"}, nil)
	require.True(t, isNew)
	S.Ensure(pair{k: 2, v: "ignored"}, func(isNew bool, item, arg *pair) {
		require.False(t, isNew)
		item.v = arg.v
	})
	require.True(t, S.FindFunc(pair{k: 2}, func(p *pair) {
		got = p.v
	}))
	require.Equal(t, "ignored", got)

	require.True(t, S.EraseFunc(pair{k: 1}, func(p *pair) {
		got = p.v
	}))
	require.Equal(t, "one", got)
	require.False(t, S.Find(pair{k: 1}))
	require.Equal(t, uint(1), S.Size())
}

func TestSplitSet_Heterogeneous(t *testing.T) {
	S := New[pair](pairHash, pairLess, 0)
	for i := 0; i < 32; i++ {
		S.Insert(pair{k: i, v: "v"})
	}
	for i := 0; i < 32; i++ {
		h := seed.HashInt(i)
		require.True(t, S.FindWith(h, byKey(i), nil))
		d := S.Domain()
		tk := d.Enter()
		p := S.GetWith(h, byKey(i))
		require.NotNil(t, p)
		require.Equal(t, i, p.k)
		d.Exit(tk)
	}
	for i := 0; i < 32; i += 2 {
		require.True(t, S.EraseWith(seed.HashInt(i), byKey(i), nil))
	}
	for i := 0; i < 32; i++ {
		require.Equal(t, i&1 == 1, S.FindWith(seed.HashInt(i), byKey(i), nil))
	}
}

func TestSplitSet_ExtractWith(t *testing.T) {
	S := New[pair](pairHash, pairLess, 0)
	S.Insert(pair{k: 5, v: "five"})
	d := S.Domain()
	tk := d.Enter()
	p := S.ExtractWith(seed.HashInt(5), byKey(5))
	require.False(t, p.Empty())
	require.Equal(t, "five", p.Value().v)
	d.Exit(tk)
	p.Release()
	require.True(t, S.Empty())
}

func TestSplitSet_Stats(t *testing.T) {
	st := new(Stats)
	S := newInts(WithStats[int](st))
	require.Same(t, st, S.Statistics())
	S.Insert(1)
	S.Insert(1)
	S.Find(1)
	S.Find(2)
	S.Erase(1)
	S.Erase(1)
	require.EqualValues(t, 1, st.Inserts.Load())
	require.EqualValues(t, 1, st.InsertMisses.Load())
	require.EqualValues(t, 1, st.Finds.Load())
	require.EqualValues(t, 1, st.FindMisses.Load())
	require.EqualValues(t, 1, st.Erases.Load())
	require.EqualValues(t, 1, st.EraseMisses.Load())
	require.Nil(t, newInts().Statistics())
}

// mixed inserts and erases of overlapping blocks; checks only invariants that survive
// interleaving.
func TestSplitSet_Churn(t *testing.T) {
	S := New[int](Split_Sets.UintHasher[int](uint(seed)), intLess, blockNum*blockSize)
	wg := &sync.WaitGroup{}
	wg.Add(blockNum)
	for j := 0; j < blockNum; j++ {
		go func(j int) {
			defer wg.Done()
			l, h := j/2*blockSize, (j/2+1)*blockSize
			if j&1 == 0 {
				for i := l; i < h; i++ {
					S.Insert(i)
				}
			} else {
				for i := l; i < h; i++ {
					S.Erase(i)
				}
			}
		}(j)
	}
	wg.Wait()
	//every surviving element is findable and erasable exactly once.
	for i := 0; i < blockNum/2*blockSize; i++ {
		if S.Find(i) && !S.Erase(i) {
			t.Errorf("found but not erased: %v\n", i)
		}
	}
	if S.Size() != 0 {
		t.Error("wrong size")
	}
}
