package Split_Sets

import "sync/atomic"

// AtomicUint backed by uintptr
type AtomicUint struct {
	v uintptr
}

func (u *AtomicUint) Load() uint {
	return uint(atomic.LoadUintptr(&u.v))
}
func (u *AtomicUint) Store(v uint) {
	atomic.StoreUintptr(&u.v, uintptr(v))
}
func (u *AtomicUint) Add(d uint) uint {
	return uint(atomic.AddUintptr(&u.v, uintptr(d)))
}
func (u *AtomicUint) Swap(v uint) uint {
	return uint(atomic.SwapUintptr(&u.v, uintptr(v)))
}
func (u *AtomicUint) CompareAndSwap(exp, v uint) bool {
	return atomic.CompareAndSwapUintptr(&u.v, uintptr(exp), uintptr(v))
}
