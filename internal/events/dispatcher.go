// Package events distributes collection changes to interested observers such as
// the WebSocket hub and the log.
package events

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

// Event is one change to a collection.
type Event struct {
	// Type is one of the Type* constants.
	Type string

	// Data is the payload, one of the structs in messages.go.
	Data any

	Context context.Context
}

// Observer is notified of dispatched events.
type Observer interface {
	OnEvent(event Event) error
	GetName() string
	ShouldHandle(eventType string) bool
}

// EventDispatcher delivers events to its observers in registration order. It is
// safe for concurrent use.
type EventDispatcher struct {
	mu        sync.RWMutex
	observers []Observer
	logger    zerolog.Logger
}

// NewEventDispatcher creates a dispatcher that logs failing observers to logger.
func NewEventDispatcher(logger zerolog.Logger) *EventDispatcher {
	return &EventDispatcher{logger: logger}
}

// Register adds an observer.
func (d *EventDispatcher) Register(observer Observer) {
	d.mu.Lock()
	d.observers = append(d.observers, observer)
	d.mu.Unlock()
	d.logger.Debug().Str("observer", observer.GetName()).Msg("Registered observer")
}

// Unregister removes an observer. Unknown observers are ignored.
func (d *EventDispatcher) Unregister(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if i := slices.Index(d.observers, observer); i >= 0 {
		d.observers = slices.Delete(d.observers, i, i+1)
		d.logger.Debug().Str("observer", observer.GetName()).Msg("Unregistered observer")
	}
}

// interested returns the observers handling eventType. The lock is released
// before any observer runs, so observers may register others.
func (d *EventDispatcher) interested(eventType string) []Observer {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []Observer
	for _, o := range d.observers {
		if o.ShouldHandle(eventType) {
			out = append(out, o)
		}
	}
	return out
}

// Dispatch notifies every interested observer. A failing observer is logged and
// does not stop the others.
func (d *EventDispatcher) Dispatch(event Event) {
	for _, o := range d.interested(event.Type) {
		if err := o.OnEvent(event); err != nil {
			d.logger.Warn().Err(err).
				Str("observer", o.GetName()).
				Str("event", event.Type).
				Msg("Observer failed to handle event")
		}
	}
}

// ObserverCount returns the number of registered observers.
func (d *EventDispatcher) ObserverCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers)
}

// NewTypedEvent creates an Event carrying data.
func NewTypedEvent[T any](ctx context.Context, eventType string, data T) Event {
	return Event{Type: eventType, Data: data, Context: ctx}
}

// GetTypedData returns the payload of event as a T.
func GetTypedData[T any](event Event) (T, bool) {
	typed, ok := event.Data.(T)
	return typed, ok
}
