package websocket

import (
	"testing"
	"time"
)

func waitForCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for h.ClientCount() != want {
		select {
		case <-deadline:
			t.Fatalf("ClientCount() = %d, want %d", h.ClientCount(), want)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestHub_BroadcastDeliversToClients(t *testing.T) {
	h := NewHub()
	go h.Run()

	client := &Client{hub: h, send: make(chan []byte, 1)}
	h.register <- client
	waitForCount(t, h, 1)

	if err := h.Broadcast("toast", map[string]string{"message": "hi"}); err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}

	select {
	case msg := <-client.send:
		if len(msg) == 0 {
			t.Fatal("empty broadcast payload")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast not delivered")
	}

	h.unregister <- client
	waitForCount(t, h, 0)
}

func TestHub_EvictsSlowConsumer(t *testing.T) {
	h := NewHub()
	go h.Run()

	// No reader and no buffer: the first broadcast cannot be delivered.
	slow := &Client{hub: h, send: make(chan []byte)}
	h.register <- slow
	waitForCount(t, h, 1)

	// Concurrent status polls while the eviction happens.
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				h.ClientCount()
			}
		}
	}()

	if err := h.Broadcast("toast", nil); err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}

	waitForCount(t, h, 0)
	close(done)

	// The evicted client's send channel is closed.
	select {
	case _, ok := <-slow.send:
		if ok {
			t.Fatal("expected closed send channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed")
	}
}
