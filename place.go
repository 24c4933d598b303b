package rendezvous

import (
	"sync/atomic"
	"unsafe"
)

// removeAction is the tri-state departure flag of a place.
//
// State machine of the leave handshake:
//
//	removeGo (initial) → removeWait       [leaver, before queueing on removing]
//	removeWait → removeSync               [master, after detaching the leaver from active]
//	removeSync → removeWait               [leaver, acknowledging the detach]
//	removeWait → removeGo                 [master, after all leavers acknowledged]
//
// A leaver observing removeGo directly (master finished the handshake in a
// prior meeting) skips the acknowledge round.
type removeAction int32

const (
	removeGo removeAction = iota
	removeWait
	removeSync
)

// String returns a human-readable representation of the action.
func (x removeAction) String() string {
	switch x {
	case removeGo:
		return "Go"
	case removeWait:
		return "Wait"
	case removeSync:
		return "Sync"
	default:
		return "Unknown"
	}
}

// Place is a per-participant membership handle for a Rendezvous. Instances
// must be created using Rendezvous.Join, used by a single activity, and
// released using Leave on every path; see the package documentation for the
// lifecycle.
//
// A Place is not copyable (its address is threaded through the rendezvous
// lists), and its methods must not be called concurrently with each other.
type Place[D any] struct {
	// betteralign:ignore

	rendezvous *Rendezvous[D]

	// intrusive link slots, one per listSlot, accessed atomically
	links [numSlots]unsafe.Pointer // *Place[D]

	wait    atomic.Bool  // cleared on admission into active
	remove  atomic.Int32 // removeAction, departure handshake
	counter modCounter   // barrier phase
	data    atomic.Pointer[D]

	busyWait BusyWaitHandler // configurable
	cas      CAS             // configurable
}

func (x *Place[D]) loadNext(slot listSlot) *Place[D] {
	return (*Place[D])(atomic.LoadPointer(&x.links[slot]))
}

func (x *Place[D]) storeNext(slot listSlot, p *Place[D]) {
	atomic.StorePointer(&x.links[slot], unsafe.Pointer(p))
}

func (x *Place[D]) loadRemove() removeAction {
	return removeAction(x.remove.Load())
}

func (x *Place[D]) storeRemove(a removeAction) {
	x.remove.Store(int32(a))
}

// isMaster reports whether x is the head of active, i.e. the participant
// responsible for maintenance.
func (x *Place[D]) isMaster() bool {
	return x.rendezvous.active.loadHead() == x
}

// sync is the barrier step: spin until no active peer's counter is strictly
// one behind x's own, i.e. every peer has at least caught up to x's phase.
// Returns the number of active places observed in the pass that completed.
func (x *Place[D]) sync() int {
	var passed, loopCount int
	for x.rendezvous.active.search(func(a *Place[D]) bool {
		passed++
		return x.counter.oneAhead(&a.counter)
	}) {
		passed = 0
		x.busyWait(&loopCount)
	}
	return passed
}

// tryBecomeMaster promotes x when it heads the waiting list and there is no
// active participant: the entire waiting list is transplanted into active,
// and every transplanted place activated. Handles bootstrap, and restart
// after all participants left.
func (x *Place[D]) tryBecomeMaster() bool {
	r := x.rendezvous
	if r.waiting.loadHead() != x || !r.active.empty() {
		return false
	}
	r.active.setAtomic(x.busyWait, x.cas, &r.waiting)
	r.active.iterate(func(p *Place[D]) {
		p.wait.Store(false)
	})
	r.logger.Debug().Str(`event`, `master`).Log(`rendezvous: place elected itself master`)
	return true
}

// awaitAdmission spins until x has been admitted into active, attempting
// self-election between checks.
func (x *Place[D]) awaitAdmission() {
	var loopCount int
	for x.wait.Load() && !x.tryBecomeMaster() {
		x.busyWait(&loopCount)
	}
}

// processWaiting drains the waiting list into active. Master only. The
// newcomers' counters are copied from the master's before their wait flags
// clear, so they enter the barrier in phase.
func (x *Place[D]) processWaiting() {
	r := x.rendezvous
	if r.waiting.empty() {
		return
	}
	c := x.counter.load()
	w := r.waiting.acquireAtomic(x.busyWait, x.cas)
	var admitted int
	w.iterate(func(p *Place[D]) {
		p.counter.store(c)
		admitted++
	})
	r.active.append(&w)
	w.iterate(func(p *Place[D]) {
		p.wait.Store(false)
	})
	r.logger.Trace().Str(`event`, `admit`).Int(`admitted`, admitted).Log(`rendezvous: master admitted waiting places`)
}

// Leave departs the rendezvous, blocking until x has been cleanly detached
// from all lists; once Leave returns, no other participant holds a
// reference to x, and the rendezvous never will again. Leave must be called
// exactly once, and x must not be used afterwards.
//
// A place that joined and never attended still passes through active, so
// the departure handshake is uniform.
func (x *Place[D]) Leave() {
	x.awaitAdmission()

	master := x.isMaster()
	if master {
		x.processWaiting()
	}

	x.storeRemove(removeWait)
	x.rendezvous.removing.addAtomic(x.busyWait, x.cas, x)

	x.counter.inc()
	x.sync()

	if master {
		// The master harvests removing itself, including its own entry.
		r := x.rendezvous.removing.acquireAtomic(x.busyWait, x.cas)
		x.rendezvous.active.remove(&r)
		r.iterate(func(p *Place[D]) {
			p.storeRemove(removeSync)
		})
		x.storeRemove(removeWait)
		var loopCount int
		for r.search(func(p *Place[D]) bool { return p.loadRemove() != removeWait }) {
			x.busyWait(&loopCount)
		}
		r.iterate(func(p *Place[D]) {
			p.storeRemove(removeGo)
		})
	} else {
		var loopCount int
		for x.loadRemove() == removeWait {
			x.busyWait(&loopCount)
		}
		if x.loadRemove() == removeSync {
			// Second half of the handshake: confirm the master finished
			// reading active before this place's storage is released.
			x.storeRemove(removeWait)
			loopCount = 0
			for x.loadRemove() != removeGo {
				x.busyWait(&loopCount)
			}
		}
	}
	x.rendezvous.logger.Debug().Str(`event`, `leave`).Bool(`master`, master).Log(`rendezvous: place left`)
}
