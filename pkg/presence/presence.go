// Package presence estimates whether the user is in front of the screen and
// how engaged they are.
package presence

import (
	"math"
	"time"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/face"
)

// Distance is a coarse proximity class.
type Distance string

const (
	Close   Distance = "close"
	Medium  Distance = "medium"
	Far     Distance = "far"
	Unknown Distance = "unknown"
)

// Heuristic limits.
const (
	LookingGaze  = 0.3  // max |gaze| on either axis
	LookingYaw   = 20.0 // max |yaw| in degrees
	CloseTurn    = 10.0 // |pitch|+|yaw| below this reads as close
	FarTurn      = 30.0 // |pitch|+|yaw| above this reads as far
	blinkPenalty = 0.1
	talkBonus    = 0.2
)

// Data is the per-frame presence estimate.
type Data struct {
	IsPresent          bool       `json:"is_present"`
	IsLookingAtScreen  bool       `json:"is_looking_at_screen"`
	AttentionLevel     float64    `json:"attention_level"`
	DistanceFromScreen Distance   `json:"distance_from_screen"`
	LastSeenAt         *time.Time `json:"last_seen_at"`
	SessionDuration    float64    `json:"session_duration"` // seconds
}

// Analyzer keeps the session start and last-seen timestamps across frames.
// It is not safe for concurrent use.
type Analyzer struct {
	start    time.Time
	lastSeen time.Time
	duration float64
}

// NewAnalyzer creates an analyzer with no session history.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Update derives presence from one smoothed frame.
func (a *Analyzer) Update(d face.Data, now time.Time) Data {
	if !d.FaceDetected {
		return Data{
			DistanceFromScreen: Unknown,
			LastSeenAt:         a.lastSeenPtr(),
			SessionDuration:    a.duration,
		}
	}

	if a.start.IsZero() {
		a.start = now
	}
	a.lastSeen = now
	if elapsed := now.Sub(a.start).Seconds(); elapsed > a.duration {
		a.duration = elapsed
	}

	return Data{
		IsPresent:          true,
		IsLookingAtScreen:  IsLooking(d),
		AttentionLevel:     Attention(d),
		DistanceFromScreen: Estimate(d),
		LastSeenAt:         a.lastSeenPtr(),
		SessionDuration:    a.duration,
	}
}

// Reset forgets the session.
func (a *Analyzer) Reset() {
	*a = Analyzer{}
}

// SessionStart returns when the first face of the session was seen.
func (a *Analyzer) SessionStart() time.Time {
	return a.start
}

func (a *Analyzer) lastSeenPtr() *time.Time {
	if a.lastSeen.IsZero() {
		return nil
	}
	t := a.lastSeen
	return &t
}

// IsLooking reports whether gaze and yaw point at the screen.
func IsLooking(d face.Data) bool {
	return math.Abs(d.EyeGazeX) < LookingGaze &&
		math.Abs(d.EyeGazeY) < LookingGaze &&
		math.Abs(d.Yaw()) < LookingYaw
}

// Attention scores engagement in [0, 1]. Turning away and looking aside
// lower it, blinking costs a little, talking raises it.
func Attention(d face.Data) float64 {
	level := 1.0
	level -= math.Abs(d.Yaw()) / 90 * 0.5
	level -= math.Abs(d.EyeGazeX) * 0.3
	if d.IsBlinking {
		level -= blinkPenalty
	}
	if d.IsTalking {
		level += talkBonus
	}
	return math.Max(0, math.Min(1, level))
}

// Estimate approximates distance from total head rotation.
func Estimate(d face.Data) Distance {
	if !d.FaceDetected {
		return Unknown
	}
	turn := math.Abs(d.Pitch()) + math.Abs(d.Yaw())
	switch {
	case turn < CloseTurn:
		return Close
	case turn > FarTurn:
		return Far
	default:
		return Medium
	}
}
