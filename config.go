package rendezvous

import (
	"runtime"
	"sync/atomic"
	"unsafe"
)

type (
	// BusyWaitHandler is called on every iteration of every spin loop. It
	// receives a mutable loop counter it may use to implement backoff; the
	// counter is reset by the caller at the start of each distinct spin
	// site. A handler must eventually return, and must not block on any
	// resource owned by another participant.
	BusyWaitHandler func(loopCount *int)

	// CAS is the compare-and-swap primitive used for every cross-activity
	// write to shared list state. It must provide at least acquire/release
	// ordering, sufficient to publish a node's contents before the node
	// becomes reachable. Callers synchronizing between goroutines and
	// foreign contexts (e.g. cgo signal handlers) may wrap it as needed.
	CAS func(addr *unsafe.Pointer, old, new unsafe.Pointer) bool
)

// defaultSpinLimit is the number of spin iterations before the default
// handler yields the processor.
const defaultSpinLimit = 16

// DefaultBusyWaitHandler spins for a small number of iterations, then
// yields via [runtime.Gosched] and resets the loop counter. Pass a handler
// that only increments the counter to busy-wait without yielding.
func DefaultBusyWaitHandler(loopCount *int) {
	*loopCount++
	if *loopCount > defaultSpinLimit {
		*loopCount = 0
		runtime.Gosched()
	}
}

// DefaultCAS is [atomic.CompareAndSwapPointer], which is sequentially
// consistent, satisfying the ordering contract of [CAS].
func DefaultCAS(addr *unsafe.Pointer, old, new unsafe.Pointer) bool {
	return atomic.CompareAndSwapPointer(addr, old, new)
}
