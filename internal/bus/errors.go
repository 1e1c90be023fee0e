package bus

import "errors"

var (
	// ErrNotFound is returned for a subscriber id the bus has never seen, or
	// one whose tombstone has expired. Callers treat it as already disconnected.
	ErrNotFound = errors.New("bus: subscriber not found")

	// ErrClosed is returned once a subscriber has been deregistered. It marks
	// the normal end of a delivery loop.
	ErrClosed = errors.New("bus: subscriber closed")
)
