// Package face turns landmark frames into stabilized head pose and expression
// parameters.
//
// Extractor reads one frame's geometry. Smoother blends successive raw results
// so the avatar does not jitter, and holds the last values while no face is
// visible.
package face

// Data is the smoothed per-frame face state.
type Data struct {
	HeadRotationX float64 `json:"head_rotation_x"` // pitch, degrees
	HeadRotationY float64 `json:"head_rotation_y"` // yaw, degrees
	HeadRotationZ float64 `json:"head_rotation_z"` // roll, degrees

	LeftEyeOpenness  float64 `json:"left_eye_openness"`
	RightEyeOpenness float64 `json:"right_eye_openness"`
	EyeGazeX         float64 `json:"eye_gaze_x"`
	EyeGazeY         float64 `json:"eye_gaze_y"`

	MouthOpenness float64 `json:"mouth_openness"`
	MouthWidth    float64 `json:"mouth_width"` // smile proxy

	LeftEyebrowRaise  float64 `json:"left_eyebrow_raise"` // neutral ~0.5
	RightEyebrowRaise float64 `json:"right_eyebrow_raise"`

	IsSmiling  bool `json:"is_smiling"`
	IsTalking  bool `json:"is_talking"`
	IsBlinking bool `json:"is_blinking"`

	FaceDetected bool    `json:"face_detected"`
	Confidence   float64 `json:"confidence"`
}

// Default returns the state used before the first frame and after a reset.
func Default() Data {
	return Data{
		LeftEyeOpenness:   1,
		RightEyeOpenness:  1,
		MouthWidth:        0.5,
		LeftEyebrowRaise:  0.5,
		RightEyebrowRaise: 0.5,
	}
}

// Yaw returns the head yaw in degrees.
func (d Data) Yaw() float64 { return d.HeadRotationY }

// Pitch returns the head pitch in degrees.
func (d Data) Pitch() float64 { return d.HeadRotationX }

// Roll returns the head roll in degrees.
func (d Data) Roll() float64 { return d.HeadRotationZ }

// AvgEyeOpenness returns the mean of both eyes.
func (d Data) AvgEyeOpenness() float64 {
	return (d.LeftEyeOpenness + d.RightEyeOpenness) / 2
}

// AvgEyebrowRaise returns the mean of both eyebrows.
func (d Data) AvgEyebrowRaise() float64 {
	return (d.LeftEyebrowRaise + d.RightEyebrowRaise) / 2
}

// Clamp forces every bounded field into its declared range.
func (d Data) Clamp() Data {
	d.HeadRotationX = clamp(d.HeadRotationX, -MaxPitch, MaxPitch)
	d.HeadRotationY = clamp(d.HeadRotationY, -MaxYaw, MaxYaw)
	d.HeadRotationZ = clamp(d.HeadRotationZ, -MaxRoll, MaxRoll)
	d.LeftEyeOpenness = clamp(d.LeftEyeOpenness, 0, 1)
	d.RightEyeOpenness = clamp(d.RightEyeOpenness, 0, 1)
	d.EyeGazeX = clamp(d.EyeGazeX, -1, 1)
	d.EyeGazeY = clamp(d.EyeGazeY, -1, 1)
	d.MouthOpenness = clamp(d.MouthOpenness, 0, 1)
	d.MouthWidth = clamp(d.MouthWidth, 0, 1)
	d.LeftEyebrowRaise = clamp(d.LeftEyebrowRaise, 0, 1)
	d.RightEyebrowRaise = clamp(d.RightEyebrowRaise, 0, 1)
	d.Confidence = clamp(d.Confidence, 0, 1)
	return d
}
