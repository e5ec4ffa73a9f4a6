package service

import (
	"sync"
	"time"
)

// EventDedup is a time-bounded set of recently observed event identifiers.
// It gives the message-reward track at-most-once semantics against duplicate
// gateway deliveries. It is an auxiliary guard only: two distinct events for
// the same user are still serialized by the account row lock, not by this
// cache. Owned and injected by the call site so tests can control it.
type EventDedup struct {
	mu      sync.Mutex
	seen    map[string]time.Time
	horizon time.Duration
}

// NewEventDedup creates a dedup cache that remembers event ids for the given
// horizon.
func NewEventDedup(horizon time.Duration) *EventDedup {
	return &EventDedup{
		seen:    make(map[string]time.Time),
		horizon: horizon,
	}
}

// Observe records the event id and reports whether this is its first
// sighting inside the horizon. Stale entries are evicted on the way, keeping
// memory bounded by the event rate within one horizon.
func (d *EventDedup) Observe(eventID string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := now.Add(-d.horizon)
	for id, at := range d.seen {
		if at.Before(cutoff) {
			delete(d.seen, id)
		}
	}

	if _, dup := d.seen[eventID]; dup {
		return false
	}
	d.seen[eventID] = now
	return true
}

// Len reports the number of ids currently tracked. Test hook.
func (d *EventDedup) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
