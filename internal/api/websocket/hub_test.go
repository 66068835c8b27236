package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})
	return hub, server
}

// dial connects a client, optionally subscribed to one collection, and waits for
// the hub to register it.
func dial(t *testing.T, hub *Hub, server *httptest.Server, collection string) *websocket.Conn {
	t.Helper()
	want := hub.ClientCount() + 1

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	if collection != "" {
		url += "?collection=" + collection
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount() == want }, time.Second, 5*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(message, &event))
	return event
}

func TestNewHub(t *testing.T) {
	hub := NewHub()
	assert.Equal(t, 0, hub.ClientCount())
	assert.False(t, hub.IsStopped())
}

func TestHub_BroadcastBeforeRun(t *testing.T) {
	hub := NewHub()
	assert.False(t, hub.BroadcastEvent(Event{Type: "collection.updated"}))
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	hub, _ := startHub(t)
	assert.True(t, hub.BroadcastEvent(Event{Type: "collection.updated", Collection: "c1"}))
}

func TestHub_Broadcast(t *testing.T) {
	hub, server := startHub(t)
	conns := []*websocket.Conn{
		dial(t, hub, server, ""),
		dial(t, hub, server, ""),
		dial(t, hub, server, ""),
	}

	require.True(t, hub.BroadcastEvent(Event{
		Type:       "collection.processed",
		Collection: "c1",
		Data:       map[string]int{"newCards": 4},
	}))

	for _, conn := range conns {
		event := readEvent(t, conn)
		assert.Equal(t, "collection.processed", event.Type)
		assert.Equal(t, "c1", event.Collection)
		assert.Equal(t, map[string]any{"newCards": float64(4)}, event.Data)
	}
}

func TestHub_CollectionSubscription(t *testing.T) {
	hub, server := startHub(t)
	pod := dial(t, hub, server, "pod")
	other := dial(t, hub, server, "other")
	everything := dial(t, hub, server, "")

	require.True(t, hub.BroadcastEvent(Event{Type: "collection.updated", Collection: "pod"}))

	assert.Equal(t, "pod", readEvent(t, pod).Collection)
	assert.Equal(t, "pod", readEvent(t, everything).Collection)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "client subscribed to another collection must not receive the event")
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub, server := startHub(t)
	conn := dial(t, hub, server, "")

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_Stop(t *testing.T) {
	hub, server := startHub(t)
	conn := dial(t, hub, server, "")

	hub.Stop()
	hub.Stop()

	require.Eventually(t, hub.IsStopped, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount())
	assert.False(t, hub.BroadcastEvent(Event{Type: "collection.updated"}))

	// The client is told the hub went away.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived), "got %v", err)

	rec := httptest.NewRecorder()
	hub.ServeWs(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestClientWants(t *testing.T) {
	all := &Client{}
	pod := &Client{collection: "pod"}

	assert.True(t, all.wants("pod"))
	assert.True(t, all.wants(""))
	assert.True(t, pod.wants("pod"))
	assert.True(t, pod.wants(""))
	assert.False(t, pod.wants("other"))
}

func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no restriction", nil, "http://evil.example", true},
		{"no origin header", []string{"http://localhost:3000"}, "", true},
		{"listed origin", []string{"http://localhost:3000"}, "http://localhost:3000", true},
		{"wildcard", []string{"*"}, "http://anything.example", true},
		{"unlisted origin", []string{"http://localhost:3000"}, "http://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, originChecker(tt.allowed)(r))
		})
	}
}
