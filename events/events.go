package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeUserCreated    EventType = "user_created"
	EventTypeCheckinClaimed EventType = "checkin_claimed"
	EventTypeWagerResolved  EventType = "wager_resolved"
	EventTypeAccountsWiped  EventType = "accounts_wiped"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeKind names the action that moved a balance.
type BalanceChangeKind string

const (
	BalanceChangeCheckin       BalanceChangeKind = "checkin"
	BalanceChangeMessageReward BalanceChangeKind = "message_reward"
	BalanceChangeWager         BalanceChangeKind = "wager"
	BalanceChangeAdminOverride BalanceChangeKind = "admin_override"
	BalanceChangeImport        BalanceChangeKind = "import"
)

// BalanceChangeEvent represents a balance change that occurred. The
// leaderboard feature subscribes to it to refresh its posted standings.
type BalanceChangeEvent struct {
	UserID     int64
	OldBalance int64
	NewBalance int64
	Kind       BalanceChangeKind
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new account created on first observed action
type UserCreatedEvent struct {
	UserID      int64
	DisplayName string
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// CheckinClaimedEvent represents a successful daily check-in
type CheckinClaimedEvent struct {
	UserID int64
	Points int64
	Streak int
}

func (e CheckinClaimedEvent) Type() EventType {
	return EventTypeCheckinClaimed
}

// WagerResolvedEvent represents a wager that reached resolution
type WagerResolvedEvent struct {
	UserID int64
	Kind   string
	Won    bool
	Delta  int64
}

func (e WagerResolvedEvent) Type() EventType {
	return EventTypeWagerResolved
}

// AccountsWipedEvent represents an administrator-confirmed bulk wipe
type AccountsWipedEvent struct {
	Deleted int64
}

func (e AccountsWipedEvent) Type() EventType {
	return EventTypeAccountsWiped
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers. Handlers run
// asynchronously; a slow or failing subscriber never blocks the emitter.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus stashes events published during a unit of work and
// forwards them to the real bus only after the database commit succeeds, so
// subscribers never observe state that was rolled back.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events. Called after a successful commit; runs on
// a background context because the transaction context may already be done.
func (b *TransactionalBus) Flush() {
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events. Called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
