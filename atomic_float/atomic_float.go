// Package atomic_float provides a lock-free float64 for counters that many
// solver/sampler workers update concurrently.
package atomic_float

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Notes:
// - consider gc side effects
// - consider race conditions
// This code 'checks out' despite the code-smell of using the unsafe package.
// But beware the tight guidelines, and minimize critical regions and pointers.
// For example, no unsafe pointer should be stored for more than a few lines of context,
// since the gc may move the original variable around, such that the original pointer
// no longer refers to the variable's location:
// 	tmp := unintptr(unsafe.Pointer(&x)) + unsafe.Offsetof(x.b)
// In this code the gc may run, see that &x is no longer referenced, move it,
// and thus tmp refers to a stale location.

// AtomicFloat64 encapsulates a float64 for non-locking atomic operations.
// Originally built to let many reinforcement-learning workers update a shared
// value matrix without locks; here it backs the solver/sampler's shared
// "fraction complete" counter (see progress.Reporter), which many block
// workers bump concurrently and a single reporter goroutine reads.
type AtomicFloat64 struct {
	val float64
}

// NewAtomicFloat64 encapsulates a float64 for atomic operations.
func NewAtomicFloat64(val float64) *AtomicFloat64 {
	return &AtomicFloat64{
		val: val,
	}
}

// AtomicRead reads the float64.
// This definition is needed to ensure that read values are not stale/dirty local copies,
// or equivalently stated that the value is synchronized with main memory.
func (af *AtomicFloat64) AtomicRead() (value float64) {
	bits := atomic.LoadUint64((*uint64)(unsafe.Pointer(&af.val)))
	return math.Float64frombits(bits)
}

// AtomicAdd atomically adds addend to the float64.
// Note: online versions of this repeatedly attempt to add @addend to the float in a for loop
// until the addition succeeds, whether or not the pointee changes in between, which is
// logically incorrect. If the pointee changes while we're operating upon it, it is better
// for the caller to know and take some other action (drop the update, recalculate, etc).
func (af *AtomicFloat64) AtomicAdd(addend float64) (newVal float64, succeeded bool) {
	old := af.AtomicRead()
	newVal = old + addend
	succeeded = atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(&af.val)),
		math.Float64bits(old),
		math.Float64bits(newVal))
	return
}

// AtomicSet sets the float64, returns true on success.
func (af *AtomicFloat64) AtomicSet(newVal float64) (succeeded bool) {
	old := af.AtomicRead()
	succeeded = atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(&af.val)),
		math.Float64bits(old),
		math.Float64bits(newVal))
	return
}
