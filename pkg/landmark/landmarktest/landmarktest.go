// Package landmarktest builds synthetic landmark frames for tests.
//
// The neutral layout is a frontal face: ears level, nose centered between the
// ears and between forehead and chin, eyes open (lid gap 0.025), eyebrows at
// their neutral gap (0.05), mouth closed with a 0.11 corner distance.
package landmarktest

import (
	"time"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/landmark"
)

// Layout holds the knobs of a synthetic face. All values are normalized
// image coordinates.
type Layout struct {
	LeftEarX, RightEarX float64
	EarY                float64
	EarTilt             float64 // added to the right ear's y

	NoseX, NoseY     float64
	ForeheadY, ChinY float64
	EyeTopY          float64
	LeftEyeGap       float64
	RightEyeGap      float64
	EyeHalfWidth     float64
	BrowGap          float64
	IrisDX, IrisDY   float64
	MouthY           float64
	MouthGap         float64
	MouthWidth       float64
	Score            float64
	Time             time.Time
}

// Option mutates a layout.
type Option func(*Layout)

// Neutral returns the neutral layout.
func Neutral() Layout {
	return Layout{
		LeftEarX:     0.30,
		RightEarX:    0.70,
		EarY:         0.50,
		NoseX:        0.50,
		NoseY:        0.50,
		ForeheadY:    0.30,
		ChinY:        0.70,
		EyeTopY:      0.44,
		LeftEyeGap:   0.025,
		RightEyeGap:  0.025,
		EyeHalfWidth: 0.04,
		BrowGap:      0.05,
		MouthY:       0.60,
		MouthGap:     0.005,
		MouthWidth:   0.11,
	}
}

// WithNose moves the nose tip.
func WithNose(x, y float64) Option {
	return func(l *Layout) { l.NoseX, l.NoseY = x, y }
}

// WithEarTilt lowers the right ear by dy.
func WithEarTilt(dy float64) Option {
	return func(l *Layout) { l.EarTilt = dy }
}

// WithEyeGap sets both lid gaps.
func WithEyeGap(gap float64) Option {
	return func(l *Layout) { l.LeftEyeGap, l.RightEyeGap = gap, gap }
}

// WithEyeGaps sets the lid gaps per side.
func WithEyeGaps(left, right float64) Option {
	return func(l *Layout) { l.LeftEyeGap, l.RightEyeGap = left, right }
}

// WithBrowGap sets the eyebrow-to-eye-top gap on both sides.
func WithBrowGap(gap float64) Option {
	return func(l *Layout) { l.BrowGap = gap }
}

// WithIrisOffset shifts both irises from their eye centers.
func WithIrisOffset(dx, dy float64) Option {
	return func(l *Layout) { l.IrisDX, l.IrisDY = dx, dy }
}

// WithMouth sets the lip gap and corner distance.
func WithMouth(gap, width float64) Option {
	return func(l *Layout) { l.MouthGap, l.MouthWidth = gap, width }
}

// WithScore sets the detector score.
func WithScore(score float64) Option {
	return func(l *Layout) { l.Score = score }
}

// WithTime stamps the frame.
func WithTime(t time.Time) Option {
	return func(l *Layout) { l.Time = t }
}

// Frame builds a refined (478-point) frame.
func Frame(opts ...Option) landmark.Frame {
	return FrameFor(landmark.FaceMeshRefined, opts...)
}

// FrameFor builds a frame in topology t.
func FrameFor(t landmark.Topology, opts ...Option) landmark.Frame {
	l := Neutral()
	for _, opt := range opts {
		opt(&l)
	}
	return l.Build(t)
}

// Build renders the layout into a frame of topology t. Points that the layout
// does not name sit at the image center.
func (l Layout) Build(t landmark.Topology) landmark.Frame {
	pts := make([]landmark.Point, t.Size)
	for i := range pts {
		pts[i] = landmark.Point{X: 0.5, Y: 0.5}
	}
	set := func(lm landmark.Landmark, x, y, z float64) {
		if lm.IsIris() && !t.Iris {
			return
		}
		pts[lm.Index()] = landmark.Point{X: x, Y: y, Z: z}
	}

	set(landmark.LeftEar, l.LeftEarX, l.EarY, 0)
	set(landmark.RightEar, l.RightEarX, l.EarY+l.EarTilt, 0)
	set(landmark.NoseTip, l.NoseX, l.NoseY, -0.05)
	set(landmark.Forehead, 0.5, l.ForeheadY, -0.02)
	set(landmark.Chin, 0.5, l.ChinY, -0.02)

	eye := func(cx, gap float64, top, bottom, inner, outer, iris landmark.Landmark, innerSign float64) {
		cy := l.EyeTopY + gap/2
		set(top, cx, l.EyeTopY, 0)
		set(bottom, cx, l.EyeTopY+gap, 0)
		set(inner, cx+innerSign*l.EyeHalfWidth, cy, 0)
		set(outer, cx-innerSign*l.EyeHalfWidth, cy, 0)
		set(iris, cx+l.IrisDX, cy+l.IrisDY, 0)
	}
	eye(0.40, l.LeftEyeGap, landmark.LeftEyeTop, landmark.LeftEyeBottom,
		landmark.LeftEyeInner, landmark.LeftEyeOuter, landmark.LeftIris, 1)
	eye(0.60, l.RightEyeGap, landmark.RightEyeTop, landmark.RightEyeBottom,
		landmark.RightEyeInner, landmark.RightEyeOuter, landmark.RightIris, -1)

	browY := l.EyeTopY - l.BrowGap
	set(landmark.LeftBrowInner, 0.44, browY, 0)
	set(landmark.LeftBrowArch, 0.38, browY, 0)
	set(landmark.RightBrowInner, 0.56, browY, 0)
	set(landmark.RightBrowArch, 0.62, browY, 0)

	set(landmark.UpperLip, 0.5, l.MouthY, 0)
	set(landmark.LowerLip, 0.5, l.MouthY+l.MouthGap, 0)
	set(landmark.MouthLeft, 0.5-l.MouthWidth/2, l.MouthY, 0)
	set(landmark.MouthRight, 0.5+l.MouthWidth/2, l.MouthY, 0)

	return landmark.Frame{Points: pts, Score: l.Score, Time: l.Time}
}
