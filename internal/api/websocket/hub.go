// Package websocket pushes collection events to browser clients.
//
// A client connecting to /ws?collection=<id> only receives events about that
// collection; without the parameter it receives everything.
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/codwats/prism/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must stay below pongWait
	maxMessageSize = 512
	sendBuffer     = 64
)

// Event is one JSON frame sent to clients.
type Event struct {
	Type       string `json:"type"`
	Collection string `json:"collection,omitempty"`
	Data       any    `json:"data"`
}

// frame is an encoded Event on its way to the subscribers of a collection.
type frame struct {
	collection string
	payload    []byte
}

// Client is one browser connection.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	collection string
	send       chan []byte
}

// wants reports whether the client subscribed to events of collection.
func (c *Client) wants(collection string) bool {
	return c.collection == "" || collection == "" || c.collection == collection
}

// Hub tracks connected clients and fans frames out to them. Run owns the client
// set; the mutex only guards reads from other goroutines.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	running bool
	stopped bool

	join     chan *Client
	leave    chan *Client
	frames   chan frame
	done     chan struct{}
	stopOnce sync.Once

	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHub creates a hub. Browser connections are accepted from allowedOrigins; an
// empty list accepts any origin.
func NewHub(allowedOrigins ...string) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		join:    make(chan *Client),
		leave:   make(chan *Client),
		frames:  make(chan frame),
		done:    make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logging.Get("websocket"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(allowed) == 0 || origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// Run serves join, leave and broadcast requests until Stop is called.
func (h *Hub) Run() {
	h.mu.Lock()
	h.running = true
	h.mu.Unlock()

	for {
		select {
		case <-h.done:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				h.drop(client)
			}
			h.mu.Unlock()
			h.logger.Debug().Msg("WebSocket hub stopped")
			return

		case client := <-h.join:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug().Str("collection", client.collection).Int("clients", count).Msg("WebSocket client connected")

		case client := <-h.leave:
			h.mu.Lock()
			h.drop(client)
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug().Int("clients", count).Msg("WebSocket client disconnected")

		case f := <-h.frames:
			h.deliver(f)
		}
	}
}

// deliver queues f for every subscriber. Clients whose buffer is full are
// disconnected rather than allowed to stall the hub.
func (h *Hub) deliver(f frame) {
	var slow []*Client

	h.mu.RLock()
	for client := range h.clients {
		if !client.wants(f.collection) {
			continue
		}
		select {
		case client.send <- f.payload:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}
	h.mu.Lock()
	for _, client := range slow {
		h.drop(client)
	}
	h.mu.Unlock()
	h.logger.Warn().Int("clients", len(slow)).Msg("Dropped slow WebSocket clients")
}

// drop removes client from the set and closes its queue. h.mu must be held.
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
}

// BroadcastEvent sends event to every client subscribed to event.Collection. It
// returns false when Run is not active or the event cannot be encoded.
func (h *Hub) BroadcastEvent(event Event) bool {
	h.mu.RLock()
	live := h.running && !h.stopped
	h.mu.RUnlock()
	if !live {
		return false
	}

	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event.Type).Msg("Failed to encode WebSocket event")
		return false
	}

	select {
	case h.frames <- frame{collection: event.Collection, payload: payload}:
		return true
	case <-h.done:
		return false
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop disconnects every client and ends Run. Later calls do nothing.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// IsStopped reports whether Run has shut down.
func (h *Hub) IsStopped() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stopped
}

// ServeWs upgrades the request and subscribes the connection to the collection
// named by the "collection" query parameter.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	if h.IsStopped() {
		http.Error(w, "WebSocket hub is not running", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &Client{
		hub:        h,
		conn:       conn,
		collection: r.URL.Query().Get("collection"),
		send:       make(chan []byte, sendBuffer),
	}

	select {
	case h.join <- client:
		go client.writePump()
		go client.readPump()
	case <-h.done:
		_ = conn.Close()
	}
}

// readPump keeps the connection alive. Clients only listen, so anything they send
// is discarded.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.leave <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn().Err(err).Msg("WebSocket read failed")
			}
			return
		}
	}
}

// writePump writes one text message per event and pings the peer between them.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.hub.logger.Debug().Err(err).Msg("WebSocket write failed")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
