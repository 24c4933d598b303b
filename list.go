package rendezvous

import (
	"sync/atomic"
	"unsafe"
)

// listSlot selects which of a place's two intrusive link slots a list
// threads through. A place is on at most one of waiting/active at a time
// (slotMeeting), and may simultaneously be threaded onto removing
// (slotRemoval), hence two independent slots.
type listSlot int

const (
	slotMeeting listSlot = iota
	slotRemoval
	numSlots
)

// lockFreeList is an intrusive singly-linked list of places.
//
// Mutator discipline (enforced by the rendezvous protocol, not the list):
//   - addAtomic: any participant, any time.
//   - acquireAtomic / setAtomic: a single consumer at a time (the master).
//   - append / remove: only the owner of both lists involved.
//   - search / iterate / present: the list owner, and every participant
//     reading active during a meeting (sync, the fold); they tolerate
//     concurrent addAtomic because next links are set before the node is
//     published through head or tail.
//
// Every compare-and-swap goes through the injected [CAS]; reads go through
// [atomic.LoadPointer]. Plain writes (owner-only list edits, and the head
// hand-over in acquireAtomic / setAtomic) use [atomic.StorePointer].
type lockFreeList[D any] struct {
	slot listSlot
	head unsafe.Pointer // *Place[D]
	tail unsafe.Pointer // *Place[D]
}

func (x *lockFreeList[D]) loadHead() *Place[D] {
	return (*Place[D])(atomic.LoadPointer(&x.head))
}

func (x *lockFreeList[D]) loadTail() *Place[D] {
	return (*Place[D])(atomic.LoadPointer(&x.tail))
}

func (x *lockFreeList[D]) storeHead(p *Place[D]) {
	atomic.StorePointer(&x.head, unsafe.Pointer(p))
}

func (x *lockFreeList[D]) storeTail(p *Place[D]) {
	atomic.StorePointer(&x.tail, unsafe.Pointer(p))
}

func (x *lockFreeList[D]) empty() bool { return x.loadHead() == nil }

// chainTail walks next links from t to the last reachable node. Appenders
// racing an acquireAtomic may extend the chain past the detached tail
// snapshot; every consumer of a tail value re-walks, so such nodes are
// never lost.
func (x *lockFreeList[D]) chainTail(t *Place[D]) *Place[D] {
	for t != nil {
		n := t.loadNext(x.slot)
		if n == nil {
			break
		}
		t = n
	}
	return t
}

// addAtomic appends elt. Multi-producer, lock-free.
func (x *lockFreeList[D]) addAtomic(busyWait BusyWaitHandler, cas CAS, elt *Place[D]) {
	elt.storeNext(x.slot, nil)
	var loopCount int
	for {
		if cas(&x.tail, nil, unsafe.Pointer(elt)) {
			// List was empty; publish head. A concurrent acquireAtomic may
			// have detached tail but not yet cleared head, so spin.
			var inner int
			for !cas(&x.head, nil, unsafe.Pointer(elt)) {
				busyWait(&inner)
			}
			return
		}
		if t := x.loadTail(); t != nil && cas(&t.links[x.slot], nil, unsafe.Pointer(elt)) {
			// Swing tail forward, best effort; a racing acquireAtomic or
			// appender may have moved it already.
			cas(&x.tail, unsafe.Pointer(t), unsafe.Pointer(elt))
			return
		}
		busyWait(&loopCount)
	}
}

// acquireAtomic detaches the entire contents into a new list, leaving x
// empty. Single consumer; callers serialize against each other (only the
// master invokes this).
func (x *lockFreeList[D]) acquireAtomic(busyWait BusyWaitHandler, cas CAS) lockFreeList[D] {
	l := lockFreeList[D]{slot: x.slot}
	if t := x.loadTail(); t != nil {
		var loopCount int
		for !cas(&x.tail, unsafe.Pointer(t), nil) {
			busyWait(&loopCount)
			t = x.loadTail()
		}
		l.head = atomic.LoadPointer(&x.head)
		atomic.StorePointer(&x.head, nil)
		l.storeTail(x.chainTail(t))
	}
	return l
}

// setAtomic empties src into x, which must itself be empty. x's head is
// published before src's tail is detached: a participant that observes the
// new head (master election) observes a non-empty x immediately. Invoked
// only at master promotion.
func (x *lockFreeList[D]) setAtomic(busyWait BusyWaitHandler, cas CAS, src *lockFreeList[D]) {
	t := src.loadTail()
	atomic.StorePointer(&x.head, atomic.LoadPointer(&src.head))
	var loopCount int
	for !cas(&src.tail, unsafe.Pointer(t), nil) {
		busyWait(&loopCount)
		t = src.loadTail()
	}
	x.storeTail(x.chainTail(t))
	atomic.StorePointer(&src.head, nil)
}

// append concatenates l onto x. Caller owns both lists. The tail snapshot
// of either list may be stale (see chainTail), so the true tail is
// recomputed by walking.
func (x *lockFreeList[D]) append(l *lockFreeList[D]) {
	if t := x.loadTail(); t != nil {
		t.storeNext(x.slot, l.loadHead())
		x.storeTail(x.chainTail(t))
	} else {
		x.storeHead(l.loadHead())
		x.storeTail(x.chainTail(l.loadTail()))
	}
}

// remove filters out of x every place present in l. The two lists may
// thread through different slots (the master removes a removal-slot list
// from the meeting-slot active list). Caller owns both lists.
func (x *lockFreeList[D]) remove(l *lockFreeList[D]) {
	h := x.loadHead()
	var prev *Place[D]
	for h != nil {
		next := h.loadNext(x.slot)
		if l.present(h) {
			if prev != nil {
				prev.storeNext(x.slot, next)
			} else {
				x.storeHead(next)
			}
		} else {
			prev = h
		}
		h = next
	}
	x.storeTail(prev)
}

// search walks the list, returning true as soon as f does. Tolerates a
// concurrently growing tail.
func (x *lockFreeList[D]) search(f func(*Place[D]) bool) bool {
	for h := x.loadHead(); h != nil; h = h.loadNext(x.slot) {
		if f(h) {
			return true
		}
	}
	return false
}

func (x *lockFreeList[D]) iterate(f func(*Place[D])) {
	x.search(func(p *Place[D]) bool {
		f(p)
		return false
	})
}

func (x *lockFreeList[D]) present(p *Place[D]) bool {
	return x.search(func(h *Place[D]) bool { return h == p })
}
