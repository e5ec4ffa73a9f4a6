package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"honorbot/events"
)

type testEvent struct{}

func (testEvent) Type() events.EventType { return events.EventType("test") }

// recordingBus counts deliveries of testEvent through a real bus. Handlers
// run on their own goroutines, so assertions on delivery have to wait.
type recordingBus struct {
	*events.Bus

	mu    sync.Mutex
	count int
}

func newRecordingBus(t *testing.T) *recordingBus {
	t.Helper()

	rb := &recordingBus{Bus: events.NewBus()}
	rb.Subscribe(events.EventType("test"), func(ctx context.Context, e events.Event) {
		rb.mu.Lock()
		rb.count++
		rb.mu.Unlock()
	})
	return rb
}

func (rb *recordingBus) delivered() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

func (rb *recordingBus) waitForDeliveries(t *testing.T, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if rb.delivered() >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d event deliveries, saw %d", want, rb.delivered())
}
