package bus

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Filter selects which events reach a subscriber. An empty set matches all.
type Filter struct {
	ModuleIDs  map[string]struct{}
	EventTypes map[string]struct{}
}

// NewFilter builds a filter from request lists, ignoring empty entries.
func NewFilter(moduleIDs, eventTypes []string) Filter {
	return Filter{
		ModuleIDs:  toSet(moduleIDs),
		EventTypes: toSet(eventTypes),
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

// Matches reports whether evt passes both the module and the type filter.
func (f Filter) Matches(evt Event) bool {
	if len(f.ModuleIDs) > 0 {
		if _, ok := f.ModuleIDs[evt.ModuleID]; !ok {
			return false
		}
	}
	if len(f.EventTypes) > 0 {
		if _, ok := f.EventTypes[evt.Kind()]; !ok {
			return false
		}
	}
	return true
}

// Modules returns the module filter as a sorted slice.
func (f Filter) Modules() []string { return sortedKeys(f.ModuleIDs) }

// Types returns the event type filter as a sorted slice.
func (f Filter) Types() []string { return sortedKeys(f.EventTypes) }

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Subscriber is one connected observer. Its lifecycle and inbox are only
// changed through the Bus that registered it.
type Subscriber struct {
	ID        string
	Filter    Filter
	CreatedAt time.Time

	active atomic.Bool
	inbox  *inbox
}

// NewSubscriber creates an unregistered subscriber with a fresh id.
func NewSubscriber(f Filter) *Subscriber {
	return &Subscriber{
		ID:        uuid.NewString(),
		Filter:    f,
		CreatedAt: time.Now(),
	}
}

// Active reports whether the subscriber is currently registered.
func (s *Subscriber) Active() bool {
	return s.active.Load()
}

// SubscriberInfo is a read-only view of a registered subscriber.
type SubscriberInfo struct {
	ID         string    `json:"id"`
	ModuleIDs  []string  `json:"module_ids"`
	EventTypes []string  `json:"event_types"`
	CreatedAt  time.Time `json:"created_at"`
	Pending    int       `json:"pending"`
}
