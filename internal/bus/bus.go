package bus

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jellydator/ttlcache/v3"
)

// Bus is an in-process fan-out event bus. Every registered subscriber gets
// its own copy of each matching event in an unbounded inbox.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber

	// tombstones remembers recently deregistered subscribers so that a late
	// Next reports ErrClosed instead of ErrNotFound.
	tombstones *ttlcache.Cache[string, *Subscriber]

	opts options

	published atomic.Uint64
	delivered atomic.Uint64
	filtered  atomic.Uint64
}

// Stats are cumulative counters since the bus was created.
type Stats struct {
	Published uint64 `json:"published"`
	Delivered uint64 `json:"delivered"`
	Filtered  uint64 `json:"filtered"`
}

// New creates a new event bus.
func New(opts ...Option) *Bus {
	o := options{
		tombstoneTTL:      defaultTombstoneTTL,
		tombstoneCapacity: defaultTombstoneCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Bus{
		subs: make(map[string]*Subscriber),
		tombstones: ttlcache.New[string, *Subscriber](
			ttlcache.WithTTL[string, *Subscriber](o.tombstoneTTL),
			ttlcache.WithCapacity[string, *Subscriber](o.tombstoneCapacity),
		),
		opts: o,
	}
}

// Register adds sub to the registry and marks it active. Registering the same
// id again replaces the previous entry; a replaced subscriber is closed.
// A subscriber that was already deregistered cannot come back.
func (b *Bus) Register(sub *Subscriber) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub.inbox == nil {
		sub.inbox = newInbox(b.opts.closePolicy == DrainPending)
	} else if sub.inbox.isClosed() {
		return ErrClosed
	}

	if prev, ok := b.subs[sub.ID]; ok && prev != sub {
		b.closeLocked(prev)
	}
	b.subs[sub.ID] = sub
	sub.active.Store(true)
	return nil
}

// Deregister removes the subscriber and wakes any reader blocked in Next.
// It reports whether a subscriber was removed; absent ids are a no-op.
func (b *Bus) Deregister(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[id]
	if !ok {
		return false
	}
	delete(b.subs, id)
	b.closeLocked(sub)
	return true
}

// DeregisterAll closes every subscriber and returns how many were removed.
func (b *Bus) DeregisterAll() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.subs)
	for id, sub := range b.subs {
		delete(b.subs, id)
		b.closeLocked(sub)
	}
	return n
}

// closeLocked must be called with b.mu held.
func (b *Bus) closeLocked(sub *Subscriber) {
	sub.active.Store(false)
	sub.inbox.close()
	b.tombstones.Set(sub.ID, sub, ttlcache.DefaultTTL)
}

// HasSubscriber reports whether id is currently registered.
func (b *Bus) HasSubscriber(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subs[id]
	return ok
}

// Len returns the number of registered subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers evt to every registered subscriber whose filter matches.
// It never blocks on a consumer and returns the number of inboxes reached.
func (b *Bus) Publish(evt Event) int {
	b.published.Add(1)

	if b.opts.fanOut == FanOutLocked {
		b.mu.RLock()
		defer b.mu.RUnlock()
		n := 0
		for _, sub := range b.subs {
			if b.deliver(sub, evt) {
				n++
			}
		}
		return n
	}

	b.mu.RLock()
	snapshot := make([]*Subscriber, 0, len(b.subs))
	for _, sub := range b.subs {
		snapshot = append(snapshot, sub)
	}
	b.mu.RUnlock()

	n := 0
	for _, sub := range snapshot {
		if b.deliver(sub, evt) {
			n++
		}
	}
	return n
}

func (b *Bus) deliver(sub *Subscriber, evt Event) bool {
	if !sub.Filter.Matches(evt) {
		b.filtered.Add(1)
		return false
	}
	// push fails only if the subscriber closed after the snapshot was taken.
	if !sub.inbox.push(evt) {
		return false
	}
	b.delivered.Add(1)
	return true
}

// Next blocks until the subscriber's next event is available. It returns
// ErrNotFound for unknown ids without blocking, ErrClosed once the
// subscriber has been deregistered, or ctx.Err() if ctx ends first.
func (b *Bus) Next(ctx context.Context, id string) (Event, error) {
	b.mu.RLock()
	sub, ok := b.subs[id]
	b.mu.RUnlock()

	if !ok {
		item := b.tombstones.Get(id)
		if item == nil {
			return Event{}, ErrNotFound
		}
		sub = item.Value()
	}
	return sub.inbox.take(ctx)
}

// Subscribers returns a snapshot of the registry ordered by creation time.
func (b *Bus) Subscribers() []SubscriberInfo {
	b.mu.RLock()
	infos := make([]SubscriberInfo, 0, len(b.subs))
	for _, sub := range b.subs {
		infos = append(infos, SubscriberInfo{
			ID:         sub.ID,
			ModuleIDs:  sub.Filter.Modules(),
			EventTypes: sub.Filter.Types(),
			CreatedAt:  sub.CreatedAt,
			Pending:    sub.inbox.len(),
		})
	}
	b.mu.RUnlock()

	slices.SortFunc(infos, func(x, y SubscriberInfo) int {
		if c := x.CreatedAt.Compare(y.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(x.ID, y.ID)
	})
	return infos
}

// Stats returns the cumulative publish counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Filtered:  b.filtered.Load(),
	}
}
