package rendezvous

import (
	"fmt"

	"github.com/joeycumines/logiface"
)

// rendezvousOptions holds configuration applied by New.
type rendezvousOptions struct {
	modulus uint32
	logger  *logiface.Logger[logiface.Event]
}

// Option configures a Rendezvous instance.
type Option interface {
	applyRendezvous(*rendezvousOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyRendezvousFunc func(*rendezvousOptions) error
}

func (x *optionImpl) applyRendezvous(opts *rendezvousOptions) error {
	return x.applyRendezvousFunc(opts)
}

// WithCounterModulus sets the modulus of the per-place sync counters, which
// must be a power of two, and at least 4. The default of
// [DefaultCounterModulus] is appropriate for general use; smaller values
// exercise counter wrap-around more aggressively, without affecting
// correctness.
//
// All places of a rendezvous share the modulus; it cannot vary per place.
func WithCounterModulus(modulus uint32) Option {
	return &optionImpl{func(opts *rendezvousOptions) error {
		if modulus < 4 || modulus&(modulus-1) != 0 {
			return fmt.Errorf(`rendezvous: counter modulus must be a power of 2 >= 4: %d`, modulus)
		}
		opts.modulus = modulus
		return nil
	}}
}

// WithLogger sets an optional structured logger, receiving membership
// lifecycle events (join, admission, master election, leave, close) at
// debug and trace levels. The barrier hot path (the sync spins within a
// meeting) is never logged. A nil logger, the default, disables logging
// entirely.
//
// Typed logiface loggers can be converted via their Logger method.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *rendezvousOptions) error {
		opts.logger = logger
		return nil
	}}
}

// resolveOptions applies Option instances to rendezvousOptions.
func resolveOptions(opts []Option) (*rendezvousOptions, error) {
	cfg := &rendezvousOptions{
		modulus: DefaultCounterModulus,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyRendezvous(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// placeOptions holds configuration applied by Rendezvous.Join.
type placeOptions struct {
	busyWait BusyWaitHandler
	cas      CAS
}

// PlaceOption configures a Place instance.
type PlaceOption interface {
	applyPlace(*placeOptions) error
}

// placeOptionImpl implements PlaceOption.
type placeOptionImpl struct {
	applyPlaceFunc func(*placeOptions) error
}

func (x *placeOptionImpl) applyPlace(opts *placeOptions) error {
	return x.applyPlaceFunc(opts)
}

// WithBusyWaitHandler sets the handler invoked on every spin iteration of
// this place. See BusyWaitHandler for the contract.
// Defaults to [DefaultBusyWaitHandler].
func WithBusyWaitHandler(handler BusyWaitHandler) PlaceOption {
	return &placeOptionImpl{func(opts *placeOptions) error {
		if handler == nil {
			return fmt.Errorf(`rendezvous: nil busy wait handler`)
		}
		opts.busyWait = handler
		return nil
	}}
}

// WithCAS sets the compare-and-swap primitive used by this place for all
// shared list mutation. See CAS for the ordering contract.
// Defaults to [DefaultCAS].
func WithCAS(cas CAS) PlaceOption {
	return &placeOptionImpl{func(opts *placeOptions) error {
		if cas == nil {
			return fmt.Errorf(`rendezvous: nil cas primitive`)
		}
		opts.cas = cas
		return nil
	}}
}

// resolvePlaceOptions applies PlaceOption instances to placeOptions.
func resolvePlaceOptions(opts []PlaceOption) (*placeOptions, error) {
	cfg := &placeOptions{
		busyWait: DefaultBusyWaitHandler,
		cas:      DefaultCAS,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyPlace(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
