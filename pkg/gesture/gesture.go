// Package gesture maps head motion to a small symbolic gesture vocabulary.
//
// There is no hand tracking: a nod reads as thumbs_up and a head shake as
// thumbs_down. HandPosition is therefore always nil.
package gesture

import (
	"math"
	"sync"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/internal/ringbuf"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/face"
)

// Gesture is a symbolic gesture label.
type Gesture string

const (
	None       Gesture = "none"
	Wave       Gesture = "wave"
	ThumbsUp   Gesture = "thumbs_up"
	ThumbsDown Gesture = "thumbs_down"
	Peace      Gesture = "peace"
	Pointing   Gesture = "pointing"
	OpenPalm   Gesture = "open_palm"
	Fist       Gesture = "fist"
)

// Thresholds in degrees.
const (
	NodPitch = 10.0
	ShakeYaw = 15.0
)

const (
	nodConfidence   = 0.5
	shakeConfidence = 0.4
)

// HistorySize is the number of recent labels retained.
const HistorySize = 10

// HandPosition is a normalized hand location. No detector produces it yet.
type HandPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Data is the per-frame gesture estimate.
type Data struct {
	Gesture      Gesture       `json:"gesture"`
	Confidence   float64       `json:"confidence"`
	HandPosition *HandPosition `json:"hand_position"`
}

// Detector classifies head motion and retains recent labels.
type Detector struct {
	mu      sync.RWMutex
	history *ringbuf.Ring[Gesture]
}

// NewDetector creates a detector with an empty history.
func NewDetector() *Detector {
	return &Detector{history: ringbuf.New[Gesture](HistorySize)}
}

// Detect classifies one smoothed frame and records the label.
func (g *Detector) Detect(d face.Data) Data {
	out := Classify(d)
	g.mu.Lock()
	g.history.Push(out.Gesture)
	g.mu.Unlock()
	return out
}

// History returns the retained labels, oldest first.
func (g *Detector) History() []Gesture {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.history.Slice()
}

// Reset clears the history.
func (g *Detector) Reset() {
	g.mu.Lock()
	g.history.Reset()
	g.mu.Unlock()
}

// Classify maps head pose to a gesture without touching any history.
func Classify(d face.Data) Data {
	if !d.FaceDetected {
		return Data{Gesture: None}
	}
	pitch, yaw := math.Abs(d.Pitch()), math.Abs(d.Yaw())

	nod := pitch > NodPitch && yaw <= ShakeYaw
	switch {
	case nod:
		return Data{Gesture: ThumbsUp, Confidence: nodConfidence}
	case yaw > ShakeYaw:
		return Data{Gesture: ThumbsDown, Confidence: shakeConfidence}
	default:
		return Data{Gesture: None}
	}
}
