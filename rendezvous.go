package rendezvous

import (
	"github.com/joeycumines/logiface"
)

// Rendezvous is the shared meeting point. It owns three intrusive lists of
// places: waiting (joined, not yet admitted), active (participating in
// meetings; the head of active is the master), and removing (departing, or
// detached by the master).
//
// The zero value is not usable; instances must be initialized using the New
// factory. A Rendezvous must outlive every place joined to it; see Close.
type Rendezvous[D any] struct {
	waiting  lockFreeList[D]
	active   lockFreeList[D]
	removing lockFreeList[D]
	modulus  uint32
	logger   *logiface.Logger[logiface.Event]
}

// New initializes a new Rendezvous for participant data of type D.
func New[D any](opts ...Option) (*Rendezvous[D], error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Rendezvous[D]{
		waiting:  lockFreeList[D]{slot: slotMeeting},
		active:   lockFreeList[D]{slot: slotMeeting},
		removing: lockFreeList[D]{slot: slotRemoval},
		modulus:  cfg.modulus,
		logger:   cfg.logger,
	}, nil
}

// Join creates a Place on x, publishing it to the waiting list, and returns
// immediately. Admission into meetings is deferred until the place's first
// Attend (or its Leave).
//
// WARNING: Joining a Rendezvous on which Close has been called is a
// programming error, and will cause Close to spin forever.
func (x *Rendezvous[D]) Join(opts ...PlaceOption) (*Place[D], error) {
	cfg, err := resolvePlaceOptions(opts)
	if err != nil {
		return nil, err
	}
	p := &Place[D]{
		rendezvous: x,
		busyWait:   cfg.busyWait,
		cas:        cfg.cas,
	}
	p.wait.Store(true)
	p.remove.Store(int32(removeGo))
	p.counter.init(x.modulus)
	x.waiting.addAtomic(p.busyWait, p.cas, p)
	x.logger.Debug().Str(`event`, `join`).Log(`rendezvous: place joined`)
	return p, nil
}

// Close blocks until every place has left, i.e. all three lists are empty.
// It is the caller's responsibility to have unwound all participants; a
// place abandoned without Leave makes Close spin forever. Close does not
// prevent further joins, and may be called at most once meaningfully.
func (x *Rendezvous[D]) Close() {
	var loopCount int
	for !x.waiting.empty() || !x.active.empty() || !x.removing.empty() {
		DefaultBusyWaitHandler(&loopCount)
	}
	x.logger.Debug().Str(`event`, `close`).Log(`rendezvous: closed`)
}
