package hub

import (
	"encoding/json"
	"testing"
	"time"
)

func startHub(t *testing.T, h *Hub) {
	t.Helper()
	go h.Run()
	t.Cleanup(h.Stop)
}

func join(h *Hub) *Client {
	c := newClient(h, nil)
	h.register <- c
	return c
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			t.Fatal("Expected message, channel closed")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("Expected message, got none")
	}
	return Message{}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastFanOut(t *testing.T) {
	h := New("test")
	startHub(t, h)

	a, b := join(h), join(h)
	waitFor(t, func() bool { return h.ClientCount() == 2 })

	h.Broadcast(Message{Data: []byte("hello")})

	for _, c := range []*Client{a, b} {
		if got := string(receive(t, c).Data); got != "hello" {
			t.Errorf("Expected hello, got %q", got)
		}
	}
}

func TestHub_Greeting(t *testing.T) {
	h := New("test")
	h.OnConnect(func() (Message, error) {
		return NewEvent("status", map[string]string{"state": "ready"}, time.Unix(0, 0)).Encode()
	})
	startHub(t, h)

	c := join(h)

	var e struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	if err := json.Unmarshal(receive(t, c).Data, &e); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if e.Type != "status" || e.Payload["state"] != "ready" {
		t.Errorf("Unexpected greeting: %+v", e)
	}
}

func TestHub_Unregister(t *testing.T) {
	h := New("test")
	startHub(t, h)

	c := join(h)
	h.unregister <- c
	waitFor(t, func() bool { return h.ClientCount() == 0 })

	if _, ok := <-c.send; ok {
		t.Error("Expected send channel closed")
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := New("test")
	startHub(t, h)

	slow := join(h)
	for i := 0; i < sendBuffer; i++ {
		slow.send <- Message{}
	}

	h.Broadcast(Message{Data: []byte("x")})
	waitFor(t, func() bool { return h.Dropped() == 1 })

	if h.ClientCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", h.ClientCount())
	}
}

func TestHub_Stop(t *testing.T) {
	h := New("test")
	go h.Run()
	waitFor(t, h.IsRunning)

	c := join(h)
	h.Stop()
	waitFor(t, func() bool { return !h.IsRunning() })

	for range c.send {
	}
	if got := NewClient(h, nil); got != nil {
		t.Error("Expected nil client after stop")
	}
}
