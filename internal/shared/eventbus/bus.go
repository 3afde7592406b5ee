package eventbus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"mongo-admin/internal/shared/logger"
)

// Event represents a generic event
type Event interface {
	Type() string
	Data() interface{}
	Timestamp() time.Time
	Source() string
}

// Handler defines the event handler function type
type Handler func(ctx context.Context, event Event) error

// Subscription identifies a single registered handler.
type Subscription struct {
	eventType string
	id        uint64
}

// EventBusInterface defines the contract for event bus implementations
type EventBusInterface interface {
	Subscribe(eventType string, handler Handler) Subscription
	Unsubscribe(sub Subscription)
	Publish(ctx context.Context, event Event) error
	GetSubscriberCount(eventType string) int
}

type registration struct {
	id      uint64
	handler Handler
}

// EventBus is an in-process fan-out of events to registered handlers.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]registration
	nextID   atomic.Uint64
	logger   logger.Logger
	config   BusConfig
}

// BusConfig holds configuration for the event bus
type BusConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultBusConfig returns default configuration. Handlers in this service are
// best-effort sinks, so a failed delivery is not retried.
func DefaultBusConfig() BusConfig {
	return BusConfig{
		MaxRetries: 0,
		RetryDelay: 100 * time.Millisecond,
	}
}

// NewEventBus creates a new event bus instance
func NewEventBus(log logger.Logger) *EventBus {
	return NewEventBusWithConfig(log, DefaultBusConfig())
}

// NewEventBusWithConfig creates a new event bus with custom configuration
func NewEventBusWithConfig(log logger.Logger, config BusConfig) *EventBus {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &EventBus{
		handlers: make(map[string][]registration),
		logger:   log,
		config:   config,
	}
}

// Subscribe adds a handler for a specific event type
func (eb *EventBus) Subscribe(eventType string, handler Handler) Subscription {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	id := eb.nextID.Add(1)
	eb.handlers[eventType] = append(eb.handlers[eventType], registration{id: id, handler: handler})
	eb.logger.Debugf("Subscribed handler %d for event type: %s", id, eventType)
	return Subscription{eventType: eventType, id: id}
}

// Unsubscribe removes the single handler identified by sub.
func (eb *EventBus) Unsubscribe(sub Subscription) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	regs := eb.handlers[sub.eventType]
	for i, r := range regs {
		if r.id == sub.id {
			eb.handlers[sub.eventType] = append(regs[:i:i], regs[i+1:]...)
			break
		}
	}
	if len(eb.handlers[sub.eventType]) == 0 {
		delete(eb.handlers, sub.eventType)
	}
	eb.logger.Debugf("Unsubscribed handler %d for event type: %s", sub.id, sub.eventType)
}

// Publish delivers an event to every registered handler in subscription
// order and reports the first failure.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	regs := append([]registration(nil), eb.handlers[event.Type()]...)
	eb.mu.RUnlock()

	if len(regs) == 0 {
		eb.logger.Debugf("No handlers found for event type: %s", event.Type())
		return nil
	}

	var firstErr error
	for _, r := range regs {
		if err := eb.executeHandler(ctx, event, r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// executeHandler executes a handler with retry logic
func (eb *EventBus) executeHandler(ctx context.Context, event Event, r registration) error {
	var lastErr error

	for attempt := 0; attempt <= eb.config.MaxRetries; attempt++ {
		if attempt > 0 {
			eb.logger.Warnf("Retrying handler %d for event %s (attempt %d/%d)",
				r.id, event.Type(), attempt+1, eb.config.MaxRetries+1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(eb.config.RetryDelay):
			}
		}

		if err := r.handler(ctx, event); err != nil {
			lastErr = err
			eb.logger.Errorf("Handler %d failed for event %s: %v", r.id, event.Type(), err)
			continue
		}
		return nil
	}

	return fmt.Errorf("handler failed after %d attempts: %w", eb.config.MaxRetries+1, lastErr)
}

// GetSubscriberCount returns the number of handlers for an event type
func (eb *EventBus) GetSubscriberCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}

// BasicEvent implements the Event interface
type BasicEvent struct {
	eventType string
	data      interface{}
	timestamp time.Time
	source    string
}

// NewBasicEventWithSource creates a new basic event with source
func NewBasicEventWithSource(eventType string, data interface{}, source string) Event {
	return &BasicEvent{
		eventType: eventType,
		data:      data,
		timestamp: time.Now().UTC(),
		source:    source,
	}
}

func (e *BasicEvent) Type() string         { return e.eventType }
func (e *BasicEvent) Data() interface{}    { return e.data }
func (e *BasicEvent) Timestamp() time.Time { return e.timestamp }
func (e *BasicEvent) Source() string       { return e.source }

// Event types published by the admin module
const (
	EventTypeCollectionChanged = "collection.changed"
)
