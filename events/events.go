package events

import (
	"context"
	"sync"

	"github.com/harrywsong/studiobot-sub000/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange   EventType = "balance_change"
	EventTypeLevelUp         EventType = "level_up"
	EventTypeTicketOpened    EventType = "ticket_opened"
	EventTypeScrimFilled     EventType = "scrim_filled"
	EventTypeGuildConfigured EventType = "guild_configured"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a coin balance change that occurred
type BalanceChangeEvent struct {
	GuildID         int64
	UserID          int64
	ChangeAmount    int64
	NewBalance      int64
	TransactionType models.TransactionType
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// LevelUpEvent represents a user reaching a new XP level
type LevelUpEvent struct {
	GuildID  int64
	UserID   int64
	OldLevel int
	NewLevel int
	XP       int64
}

func (e LevelUpEvent) Type() EventType {
	return EventTypeLevelUp
}

// TicketOpenedEvent represents a new support ticket
type TicketOpenedEvent struct {
	GuildID   int64
	UserID    int64
	ChannelID int64
	TicketID  string
}

func (e TicketOpenedEvent) Type() EventType {
	return EventTypeTicketOpened
}

// ScrimFilledEvent fires when the last player slot of a scrim is taken
type ScrimFilledEvent struct {
	GuildID int64
	ScrimID string
	Title   string
}

func (e ScrimFilledEvent) Type() EventType {
	return EventTypeScrimFilled
}

// GuildConfiguredEvent fires when a guild completes initial setup
type GuildConfiguredEvent struct {
	GuildID   int64
	GuildName string
}

func (e GuildConfiguredEvent) Type() EventType {
	return EventTypeGuildConfigured
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

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type on main event bus")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers on main event bus")

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events from transactional bus to main event bus")

	// Use background context for event emission to avoid issues with transaction context expiration
	// Events should be processed independently of the transaction lifecycle
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
