package rendezvous

import (
	"golang.org/x/exp/constraints"
)

// Attend performs one meeting: it publishes data, waits until every current
// participant reaches the meeting point, reduces the published data of all
// participants, and returns the reduction result. Every participant of the
// same meeting observes the same peer set, and, for a pure fold, computes
// the same result.
//
// The callbacks:
//   - init receives passed, the ratified count of participants in this
//     meeting, and returns the initial accumulator.
//   - fold is invoked once per participant (including the caller), with that
//     participant's published datum. The datum must be treated as read-only.
//   - compute finalizes the accumulator into the result.
//
// Peer data pointers are only valid within fold; retaining one past the
// return of Attend is a programming error (the owning participant may
// depart, or republish, immediately after its own Attend returns).
//
// Attend is a package-level function, as Go methods cannot introduce the
// accumulator and result type parameters; see [Place.Meet] for the common
// single-type case.
func Attend[D, A, R any](x *Place[D], init func(passed int) A, fold func(acc A, peer *D) A, compute func(acc A) R, data *D) R {
	if init == nil || fold == nil || compute == nil {
		panic(`rendezvous: attend requires init, fold, and compute callbacks`)
	}

	x.data.Store(data)

	x.awaitAdmission()

	master := x.isMaster()
	if master {
		x.processWaiting()
	}

	// Phase A: make newcomers and leavers visible uniformly.
	x.counter.inc()
	x.sync()

	toRemove := lockFreeList[D]{slot: slotRemoval}
	if master && !x.rendezvous.removing.empty() {
		// The only point at which active shrinks.
		toRemove = x.rendezvous.removing.acquireAtomic(x.busyWait, x.cas)
		x.rendezvous.active.remove(&toRemove)
	}

	// Phase B: ratify the membership change before anyone inspects data.
	x.counter.inc()
	passed := x.sync()

	toRemove.iterate(func(p *Place[D]) {
		p.storeRemove(removeGo)
	})

	acc := init(passed)
	x.rendezvous.active.iterate(func(p *Place[D]) {
		acc = fold(acc, p.data.Load())
	})
	result := compute(acc)

	// Phase C: no participant returns while another still reads its data.
	x.counter.inc()
	x.sync()

	return result
}

// Meet is a convenience wrapper around [Attend] for the common case where
// the accumulator and result are the participant data type itself: seed
// produces the initial accumulator from the ratified participant count, and
// the folded accumulator is returned as-is.
func (x *Place[D]) Meet(seed func(passed int) D, fold func(acc D, peer *D) D, data *D) D {
	return Attend(x, seed, fold, func(acc D) D { return acc }, data)
}

// MinFold returns a fold computing the minimum over all participants.
// Seed the accumulator with the caller's own datum (self is folded too, so
// this is safe), or the type's maximum.
func MinFold[D constraints.Ordered]() func(acc D, peer *D) D {
	return func(acc D, peer *D) D {
		if *peer < acc {
			return *peer
		}
		return acc
	}
}

// MaxFold returns a fold computing the maximum over all participants.
func MaxFold[D constraints.Ordered]() func(acc D, peer *D) D {
	return func(acc D, peer *D) D {
		if *peer > acc {
			return *peer
		}
		return acc
	}
}

// SumFold returns a fold computing the sum over all participants. Seed the
// accumulator with zero.
func SumFold[D constraints.Integer | constraints.Float]() func(acc D, peer *D) D {
	return func(acc D, peer *D) D {
		return acc + *peer
	}
}

// AllEqualFold returns a fold reporting whether every participant published
// expected. Seed the accumulator with true; the result of the meeting is
// true only on unanimous agreement. Typically expected is the caller's
// result from a preceding meeting, verifying every peer derived the same
// value.
func AllEqualFold[D comparable](expected D) func(acc bool, peer *D) bool {
	return func(acc bool, peer *D) bool {
		return acc && *peer == expected
	}
}
