// Package spin provides a spin-then-yield mutual exclusion lock.
//
// Lock is meant for very short critical sections (a shard probe and a few
// list link updates) where parking a goroutine costs more than the work
// being protected. After a bounded number of busy iterations the waiter
// yields its P with runtime.Gosched so that an oversubscribed process still
// makes progress.
package spin

import (
	"runtime"
	"sync/atomic"
)

// spinsBeforeYield bounds the busy loop between Gosched calls.
const spinsBeforeYield = 64

// Lock is a test-and-test-and-set spin lock. The zero value is unlocked.
// It implements sync.Locker and must not be copied after first use.
type Lock struct {
	_     noCopy
	state atomic.Uint32
}

// Lock acquires l, spinning and then yielding until it is available.
func (l *Lock) Lock() {
	for {
		if l.state.CompareAndSwap(0, 1) {
			return
		}
		for i := 0; l.state.Load() != 0; i++ {
			if i >= spinsBeforeYield {
				runtime.Gosched()
				i = 0
			}
		}
	}
}

// TryLock acquires l if it is free and reports whether it did.
func (l *Lock) TryLock() bool {
	return l.state.Load() == 0 && l.state.CompareAndSwap(0, 1)
}

// Unlock releases l. Unlocking an unlocked Lock panics.
func (l *Lock) Unlock() {
	if l.state.Swap(0) == 0 {
		panic("spin: unlock of unlocked lock")
	}
}

// noCopy triggers go vet's copylocks check.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
