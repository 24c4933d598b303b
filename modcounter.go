package rendezvous

import "sync/atomic"

// DefaultCounterModulus is the default modulus for the per-place sync
// counters, see also WithCounterModulus.
const DefaultCounterModulus uint32 = 256

// modCounter is a wrap-around counter, modulo a power-of-two modulus. The
// only meaningful comparison between two counters is oneAhead, i.e.
// "exactly one step ahead, modulo the modulus". Any other comparison is
// meaningless, as the value wraps.
//
// The value is read by peers while the owner increments it, hence atomic.
// Writes never overlap: increments are made by the owner, and the one
// assignment by the current master happens while the owner is spinning on
// its wait flag, before admission.
type modCounter struct {
	value atomic.Uint32
	mask  uint32
}

func (x *modCounter) init(modulus uint32) {
	if modulus == 0 || modulus&(modulus-1) != 0 {
		panic(`rendezvous: counter modulus must be a power of 2`)
	}
	x.mask = modulus - 1
	x.value.Store(0)
}

func (x *modCounter) load() uint32 { return x.value.Load() }

func (x *modCounter) store(v uint32) { x.value.Store(v & x.mask) }

// inc steps the counter one phase forward. Not a read-modify-write cycle
// that needs atomicity: the owner is the only writer at this point.
func (x *modCounter) inc() {
	x.value.Store((x.value.Load() + 1) & x.mask)
}

// oneAhead reports whether x is exactly one step ahead of o, modulo the
// modulus.
func (x *modCounter) oneAhead(o *modCounter) bool {
	a, b := x.value.Load(), o.value.Load()
	var r uint32
	if a >= b {
		r = a - b
	} else {
		r = a + x.mask + 1 - b
	}
	return r == 1
}
