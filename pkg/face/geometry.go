package face

import (
	"math"
	"time"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/landmark"
)

// Calibration for normalized face mesh coordinates.
const (
	EyeOpennessScale   = 30.0 // lid distance 0.033 reads fully open
	MouthOpennessScale = 10.0
	MouthWidthScale    = 5.0
	EyebrowScale       = 10.0
	EyebrowNeutralGap  = 0.05 // brow-to-lid gap that maps to 0.5
	GazeScale          = 25.0

	// Degrees reported at full nose asymmetry between the ears, and at a nose
	// offset of one face height from the forehead/chin midpoint.
	YawScale   = 90.0
	PitchScale = 90.0
)

// Expression thresholds on raw values.
const (
	SmileThreshold = 0.6
	TalkThreshold  = 0.15

	// DefaultConfidence is used when the detector does not score its frames.
	DefaultConfidence = 0.9
)

// Extractor computes raw face parameters from one landmark mesh.
// It keeps only blink bookkeeping between calls.
type Extractor struct {
	tuning    Tuning
	lastBlink time.Time
	blinks    int
}

// NewExtractor creates an extractor with the given tuning.
func NewExtractor(t Tuning) *Extractor {
	return &Extractor{tuning: t}
}

// SetTuning replaces the blink parameters.
func (e *Extractor) SetTuning(t Tuning) {
	e.tuning = t
}

// Extract reads pose, eyes, gaze, mouth and eyebrows from m. The result is
// clamped but not smoothed.
func (e *Extractor) Extract(m landmark.Mesh, score float64, now time.Time) Data {
	var d Data
	d.HeadRotationX, d.HeadRotationY, d.HeadRotationZ = HeadPose(m)

	d.LeftEyeOpenness = eyeOpenness(m, landmark.LeftEyeTop, landmark.LeftEyeBottom)
	d.RightEyeOpenness = eyeOpenness(m, landmark.RightEyeTop, landmark.RightEyeBottom)
	d.EyeGazeX, d.EyeGazeY = gaze(m)

	d.MouthOpenness = clamp(math.Abs(m.At(landmark.LowerLip).Y-m.At(landmark.UpperLip).Y)*MouthOpennessScale, 0, 1)
	d.MouthWidth = clamp(math.Abs(m.At(landmark.MouthRight).X-m.At(landmark.MouthLeft).X)*MouthWidthScale, 0, 1)

	d.LeftEyebrowRaise = eyebrowRaise(m, landmark.LeftBrowInner, landmark.LeftBrowArch, landmark.LeftEyeTop)
	d.RightEyebrowRaise = eyebrowRaise(m, landmark.RightBrowInner, landmark.RightBrowArch, landmark.RightEyeTop)

	d.IsSmiling = d.MouthWidth > SmileThreshold
	d.IsTalking = d.MouthOpenness > TalkThreshold
	d.IsBlinking = e.blink(d, now)

	d.FaceDetected = true
	d.Confidence = DefaultConfidence
	if score > 0 {
		d.Confidence = score
	}
	return d.Clamp()
}

// blink reports whether either eye is closed and registers the blink unless
// one was registered within the debounce window.
func (e *Extractor) blink(d Data, now time.Time) bool {
	if d.LeftEyeOpenness >= e.tuning.BlinkThreshold && d.RightEyeOpenness >= e.tuning.BlinkThreshold {
		return false
	}
	if e.lastBlink.IsZero() || now.Sub(e.lastBlink) >= e.tuning.BlinkDebounce {
		e.lastBlink = now
		e.blinks++
	}
	return true
}

// Blinks returns the number of registered blinks since the last reset.
func (e *Extractor) Blinks() int {
	return e.blinks
}

// LastBlink returns when the last blink was registered.
func (e *Extractor) LastBlink() time.Time {
	return e.lastBlink
}

// Reset clears blink bookkeeping.
func (e *Extractor) Reset() {
	e.lastBlink = time.Time{}
	e.blinks = 0
}

// HeadPose returns pitch, yaw and roll in degrees, clamped to the pose limits.
//
// Yaw is a normalized nose-asymmetry reading of the ear span: twice the nose
// tip's offset from the ear midpoint over the ear x-difference, in [-1, 1],
// scaled by YawScale. Pitch comes from the nose tip against the forehead/chin
// midpoint and roll from the ear-to-ear vector.
func HeadPose(m landmark.Mesh) (pitch, yaw, roll float64) {
	left, right := m.At(landmark.LeftEar), m.At(landmark.RightEar)
	nose := m.At(landmark.NoseTip)

	span := right.X - left.X
	if math.Abs(span) > 1e-6 {
		asym := ((nose.X - left.X) - (right.X - nose.X)) / span
		yaw = asym * YawScale
	}

	forehead, chin := m.At(landmark.Forehead), m.At(landmark.Chin)
	height := chin.Y - forehead.Y
	if math.Abs(height) > 1e-6 {
		mid := (forehead.Y + chin.Y) / 2
		pitch = (nose.Y - mid) / height * PitchScale
	}

	roll = Degrees(math.Atan2(right.Y-left.Y, right.X-left.X))

	return clamp(pitch, -MaxPitch, MaxPitch), clamp(yaw, -MaxYaw, MaxYaw), clamp(roll, -MaxRoll, MaxRoll)
}

func eyeOpenness(m landmark.Mesh, top, bottom landmark.Landmark) float64 {
	return clamp(m.At(top).Distance(m.At(bottom))*EyeOpennessScale, 0, 1)
}

func eyebrowRaise(m landmark.Mesh, inner, arch, eyeTop landmark.Landmark) float64 {
	brow := m.At(inner).Midpoint(m.At(arch))
	gap := m.At(eyeTop).Y - brow.Y
	return clamp(0.5+(gap-EyebrowNeutralGap)*EyebrowScale, 0, 1)
}

// gaze sums both irises' offsets from their eye centers. Without refined
// iris points it reports (0, 0).
func gaze(m landmark.Mesh) (x, y float64) {
	leftIris, rightIris, ok := m.Iris()
	if !ok {
		return 0, 0
	}
	lx, ly := irisOffset(m, leftIris, landmark.LeftEyeInner, landmark.LeftEyeOuter, landmark.LeftEyeTop, landmark.LeftEyeBottom)
	rx, ry := irisOffset(m, rightIris, landmark.RightEyeInner, landmark.RightEyeOuter, landmark.RightEyeTop, landmark.RightEyeBottom)
	return clamp((lx+rx)*GazeScale, -1, 1), clamp((ly+ry)*GazeScale, -1, 1)
}

func irisOffset(m landmark.Mesh, iris landmark.Point, inner, outer, top, bottom landmark.Landmark) (dx, dy float64) {
	cx := (m.At(inner).X + m.At(outer).X) / 2
	cy := (m.At(top).Y + m.At(bottom).Y) / 2
	return iris.X - cx, iris.Y - cy
}
