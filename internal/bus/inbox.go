package bus

import (
	"context"
	"sync"
)

// inbox is an unbounded FIFO with many writers and a single reader. Reads
// report closure explicitly instead of relying on a sentinel value.
type inbox struct {
	mu     sync.Mutex
	items  []Event
	closed bool
	drain  bool
	notify chan struct{}
}

func newInbox(drain bool) *inbox {
	return &inbox{
		drain:  drain,
		notify: make(chan struct{}, 1),
	}
}

// push appends evt. It never blocks and reports false if the inbox is closed.
func (q *inbox) push(evt Event) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, evt)
	q.mu.Unlock()
	q.wake()
	return true
}

// close marks the inbox closed and wakes a blocked reader. Idempotent.
func (q *inbox) close() {
	q.mu.Lock()
	q.closed = true
	if !q.drain {
		q.items = nil
	}
	q.mu.Unlock()
	q.wake()
}

func (q *inbox) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *inbox) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *inbox) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// take blocks until an event is queued, the inbox is closed, or ctx is done.
func (q *inbox) take(ctx context.Context) (Event, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			evt := q.items[0]
			q.items[0] = Event{}
			q.items = q.items[1:]
			if len(q.items) == 0 {
				q.items = nil
			}
			q.mu.Unlock()
			return evt, nil
		}
		if q.closed {
			q.mu.Unlock()
			return Event{}, ErrClosed
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}
