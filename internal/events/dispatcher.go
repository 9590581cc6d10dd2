// Package events distributes draft events to interested observers.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Event is a domain event dispatched to observers.
type Event struct {
	// Type is the event type, e.g. "record:saved".
	Type string

	// Data is the typed payload, one of the *Event structs in messages.go.
	Data any

	// Time is when the event was created.
	Time time.Time

	// Context carries request-scoped values of the producer.
	Context context.Context
}

// Observer is notified of dispatched events.
type Observer interface {
	// OnEvent handles the event. Errors are logged and do not stop dispatch.
	OnEvent(event Event) error

	// GetName returns a human-readable name for logging.
	GetName() string

	// ShouldHandle filters the event types the observer receives.
	ShouldHandle(eventType string) bool
}

// EventDispatcher fans events out to registered observers. It is safe for
// concurrent use.
type EventDispatcher struct {
	observers []Observer
	mu        sync.RWMutex
	logger    *slog.Logger
}

// NewEventDispatcher creates a dispatcher logging through logger.
func NewEventDispatcher(logger *slog.Logger) *EventDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventDispatcher{logger: logger.With("component", "events")}
}

// Register adds an observer.
func (d *EventDispatcher) Register(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.observers = append(d.observers, observer)
	d.logger.Debug("registered observer", "observer", observer.GetName())
}

// Unregister removes an observer.
func (d *EventDispatcher) Unregister(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, obs := range d.observers {
		if obs == observer {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			d.logger.Debug("unregistered observer", "observer", observer.GetName())
			return
		}
	}
}

func (d *EventDispatcher) snapshot() []Observer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	return observers
}

// Dispatch notifies observers sequentially in registration order.
func (d *EventDispatcher) Dispatch(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	for _, observer := range d.snapshot() {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		if err := observer.OnEvent(event); err != nil {
			d.logger.Warn("observer failed", "observer", observer.GetName(), "event", event.Type, "error", err)
		}
	}
}

// DispatchAsync notifies each observer in its own goroutine.
func (d *EventDispatcher) DispatchAsync(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	for _, observer := range d.snapshot() {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		go func(obs Observer) {
			if err := obs.OnEvent(event); err != nil {
				d.logger.Warn("observer failed", "observer", obs.GetName(), "event", event.Type, "error", err)
			}
		}(observer)
	}
}

// ObserverCount returns the number of registered observers.
func (d *EventDispatcher) ObserverCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers)
}

// Clear removes all registered observers.
func (d *EventDispatcher) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = nil
}

// NewTypedEvent creates an Event carrying data.
func NewTypedEvent[T any](ctx context.Context, eventType string, data T) Event {
	return Event{
		Type:    eventType,
		Data:    data,
		Time:    time.Now(),
		Context: ctx,
	}
}

// GetTypedData extracts the payload of an Event as T.
func GetTypedData[T any](event Event) (T, bool) {
	typed, ok := event.Data.(T)
	return typed, ok
}
