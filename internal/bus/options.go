package bus

import (
	"fmt"
	"time"
)

// FanOut selects how Publish reads the registry.
type FanOut int

const (
	// FanOutSnapshot copies the registry under the lock and delivers outside
	// it. A subscriber registering while a publish is in flight may miss that
	// event.
	FanOutSnapshot FanOut = iota
	// FanOutLocked delivers while holding the registry read lock, so a
	// subscriber is either fully before or fully after a given publish.
	FanOutLocked
)

// ParseFanOut maps a config value to a FanOut.
func ParseFanOut(s string) (FanOut, error) {
	switch s {
	case "", "snapshot":
		return FanOutSnapshot, nil
	case "locked":
		return FanOutLocked, nil
	default:
		return 0, fmt.Errorf("unknown fan-out mode %q", s)
	}
}

// ClosePolicy decides what happens to queued events when a subscriber is
// deregistered.
type ClosePolicy int

const (
	// DiscardPending drops queued events; Next reports ErrClosed right away.
	DiscardPending ClosePolicy = iota
	// DrainPending lets Next return queued events before ErrClosed.
	DrainPending
)

// ParseClosePolicy maps a config value to a ClosePolicy.
func ParseClosePolicy(s string) (ClosePolicy, error) {
	switch s {
	case "", "discard":
		return DiscardPending, nil
	case "drain":
		return DrainPending, nil
	default:
		return 0, fmt.Errorf("unknown close policy %q", s)
	}
}

const (
	defaultTombstoneTTL      = 10 * time.Minute
	defaultTombstoneCapacity = 4096
)

type options struct {
	fanOut            FanOut
	closePolicy       ClosePolicy
	tombstoneTTL      time.Duration
	tombstoneCapacity uint64
}

// Option configures a Bus.
type Option func(*options)

// WithFanOut sets the publish strategy.
func WithFanOut(f FanOut) Option {
	return func(o *options) { o.fanOut = f }
}

// WithClosePolicy sets what deregistration does with queued events.
func WithClosePolicy(p ClosePolicy) Option {
	return func(o *options) { o.closePolicy = p }
}

// WithTombstoneTTL sets how long a deregistered id keeps reporting ErrClosed
// before it degrades to ErrNotFound.
func WithTombstoneTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.tombstoneTTL = d
		}
	}
}

// WithTombstoneCapacity bounds the number of remembered deregistered ids.
func WithTombstoneCapacity(n uint64) Option {
	return func(o *options) {
		if n > 0 {
			o.tombstoneCapacity = n
		}
	}
}
