package websocket

import (
	"github.com/codwats/prism/internal/events"
)

// WebSocketObserver relays dispatched collection events to the hub.
type WebSocketObserver struct {
	hub *Hub
}

// NewWebSocketObserver creates an observer broadcasting through hub.
func NewWebSocketObserver(hub *Hub) *WebSocketObserver {
	return &WebSocketObserver{hub: hub}
}

// OnEvent broadcasts event to the clients subscribed to its collection.
func (o *WebSocketObserver) OnEvent(event events.Event) error {
	if o.hub == nil {
		return nil
	}
	o.hub.BroadcastEvent(Event{
		Type:       event.Type,
		Collection: events.CollectionOf(event),
		Data:       event.Data,
	})
	return nil
}

// GetName returns the observer's name.
func (o *WebSocketObserver) GetName() string {
	return "WebSocketObserver"
}

// ShouldHandle accepts every event type.
func (o *WebSocketObserver) ShouldHandle(string) bool {
	return true
}
