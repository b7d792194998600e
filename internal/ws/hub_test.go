package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, buffer int) *Client {
	return &Client{
		hub:  hub,
		send: make(chan []byte, buffer),
	}
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func TestHubRegistration(t *testing.T) {
	hub, _ := startHub(t)
	client := mockClient(hub, sendBufferSize)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.ClientCount())
	}
}

func TestHubUnregistration(t *testing.T) {
	hub, _ := startHub(t)
	client := mockClient(hub, sendBufferSize)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)
	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Fatalf("expected 0 clients, got %d", hub.ClientCount())
	}
	if _, ok := <-client.send; ok {
		t.Fatal("send channel should be closed")
	}
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	hub, _ := startHub(t)

	clients := []*Client{mockClient(hub, sendBufferSize), mockClient(hub, sendBufferSize), mockClient(hub, sendBufferSize)}
	for _, c := range clients {
		hub.register <- c
	}
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast("order-created", map[string]any{"pickup_number": 1})

	for i, client := range clients {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != "order-created" {
				t.Errorf("client%d: expected type 'order-created', got '%s'", i+1, received.Type)
			}
			if string(received.Payload) != `{"pickup_number":1}` {
				t.Errorf("client%d: payload %s", i+1, received.Payload)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestBroadcastPreservesOrder(t *testing.T) {
	hub, _ := startHub(t)
	client := mockClient(hub, sendBufferSize)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast("order-created", map[string]string{"status": "pending"})
	hub.Broadcast("order-updated", map[string]string{"status": "preparing"})

	var types []string
	for i := 0; i < 2; i++ {
		select {
		case msg := <-client.send:
			var e Event
			_ = json.Unmarshal(msg, &e)
			types = append(types, e.Type)
		case <-time.After(100 * time.Millisecond):
			t.Fatal("missing event")
		}
	}
	if types[0] != "order-created" || types[1] != "order-updated" {
		t.Errorf("order: got %v", types)
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	hub, _ := startHub(t)
	slow := mockClient(hub, 1)
	fast := mockClient(hub, sendBufferSize)
	hub.register <- slow
	hub.register <- fast
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast("order-updated", 1)
	hub.Broadcast("order-updated", 2)
	time.Sleep(20 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Fatalf("expected slow client to be dropped, have %d clients", hub.ClientCount())
	}
	if len(fast.send) != 2 {
		t.Errorf("fast client should have both events, has %d", len(fast.send))
	}
}

func TestUnencodablePayloadIsSkipped(t *testing.T) {
	hub, _ := startHub(t)
	client := mockClient(hub, sendBufferSize)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast("order-created", make(chan int))

	select {
	case <-client.send:
		t.Fatal("nothing should be sent")
	case <-time.After(30 * time.Millisecond):
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	hub, cancel := startHub(t)
	client := mockClient(hub, sendBufferSize)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	cancel()

	select {
	case <-hub.done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("hub did not stop")
	}
	if _, ok := <-client.send; ok {
		t.Fatal("client send channel should be closed on shutdown")
	}

	// Must not block once the hub is gone.
	hub.Broadcast("order-created", 1)
	hub.remove(client)
	if hub.add(mockClient(hub, 1)) {
		t.Error("add should fail after shutdown")
	}
}

func TestServeWS_EndToEnd(t *testing.T) {
	hub, _ := startHub(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, w, r)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	hub.Broadcast("order-updated", map[string]string{"status": "ready"})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var e Event
	if err := json.Unmarshal(msg, &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Type != "order-updated" || string(e.Payload) != `{"status":"ready"}` {
		t.Errorf("got %s %s", e.Type, e.Payload)
	}

	conn.Close()
	deadline = time.Now().Add(time.Second)
	for hub.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ClientCount() != 0 {
		t.Error("client should be unregistered after disconnect")
	}
}
