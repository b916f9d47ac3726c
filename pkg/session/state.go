package session

import (
	"fmt"
	"time"
)

// State is the lifecycle stage of a controller.
type State int

const (
	// Uninitialized means no session is running. Enable may be called.
	Uninitialized State = iota

	// Initializing means Enable is acquiring the detector and camera.
	Initializing

	// Ready means a session is running and frames are processed.
	Ready

	// Failed means detector initialization failed. Enable short-circuits
	// until the detector gate is reset.
	Failed
)

var stateNames = [...]string{"uninitialized", "initializing", "ready", "failed"}

// String returns the state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is a snapshot of the controller lifecycle.
type Status struct {
	State     State      `json:"state"`
	Enabled   bool       `json:"enabled"`
	SessionID string     `json:"session_id,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`

	// Error is a user-facing message for the last failed enable.
	Error string `json:"error,omitempty"`

	// Reason is the detector failure cause while State is Failed.
	Reason string `json:"reason,omitempty"`
}
