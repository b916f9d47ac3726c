// Package hub provides a thread-safe websocket broadcast hub
// using the idiomatic Go channel-based fan-out pattern.
package hub

import (
	"encoding/json"
	"time"
)

// Message is an encoded frame queued for clients.
type Message struct {
	Data []byte
}

// Event is the JSON envelope pushed to clients.
type Event struct {
	Type    string    `json:"type"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload"`
}

// NewEvent wraps payload in an envelope stamped with now.
func NewEvent(typ string, payload any, now time.Time) Event {
	return Event{Type: typ, Time: now, Payload: payload}
}

// Encode marshals the event into a message.
func (e Event) Encode() (Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return Message{}, err
	}
	return Message{Data: data}, nil
}
