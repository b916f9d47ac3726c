// Package landmark defines the per-frame face landmark input of the pipeline:
// normalized 3D points, the closed set of named landmarks the geometry stage
// reads, and the mesh topologies a detector can declare.
//
// Left and Right always refer to the image side, so LeftEar has the smaller x
// on an unmirrored frontal face.
package landmark

import (
	"errors"
	"time"

	"github.com/golang/geo/r3"
)

var (
	// ErrTopologyMismatch is returned when a frame's point count does not match
	// the declared topology.
	ErrTopologyMismatch = errors.New("landmark: frame does not match topology")

	// ErrMissingLandmark is returned when a topology cannot serve a required landmark.
	ErrMissingLandmark = errors.New("landmark: topology lacks required landmark")
)

// Point is a normalized landmark position. X and Y are in [0,1] image space,
// Z is relative depth on roughly the same scale as X.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec returns the point as an r3 vector.
func (p Point) Vec() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// Distance returns the Euclidean 3D distance to q.
func (p Point) Distance(q Point) float64 {
	return p.Vec().Distance(q.Vec())
}

// Midpoint returns the point halfway between p and q.
func (p Point) Midpoint(q Point) Point {
	v := p.Vec().Add(q.Vec()).Mul(0.5)
	return Point{X: v.X, Y: v.Y, Z: v.Z}
}

// Frame is one detector result. No points means no face was found.
type Frame struct {
	Points []Point   `json:"points,omitempty"`
	Score  float64   `json:"score,omitempty"` // detector confidence, 0 when not reported
	Time   time.Time `json:"time,omitempty"`
}

// HasFace reports whether the frame carries landmarks.
func (f Frame) HasFace() bool {
	return len(f.Points) > 0
}
