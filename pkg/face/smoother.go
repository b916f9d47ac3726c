package face

// Smoother applies a one-pole exponential blend to every bounded numeric field:
//
//	out = prev + (raw - prev) * factor
//
// Flags and confidence are not blended; the newest value replaces the old one.
type Smoother struct {
	factor float64
	prev   Data
}

// NewSmoother creates a smoother starting from Default. A factor outside
// (0, 1] falls back to the default 0.3.
func NewSmoother(factor float64) *Smoother {
	s := &Smoother{prev: Default()}
	s.SetFactor(factor)
	return s
}

// SetFactor changes the blend factor for subsequent frames.
func (s *Smoother) SetFactor(factor float64) {
	if factor <= 0 || factor > 1 {
		factor = DefaultTuning().SmoothingFactor
	}
	s.factor = factor
}

// Factor returns the current blend factor.
func (s *Smoother) Factor() float64 {
	return s.factor
}

// Update blends a raw frame into the state and returns the new smoothed value.
func (s *Smoother) Update(raw Data) Data {
	p := s.prev
	blend := func(prev, next float64) float64 {
		return prev + (next-prev)*s.factor
	}

	out := Data{
		HeadRotationX:     blend(p.HeadRotationX, raw.HeadRotationX),
		HeadRotationY:     blend(p.HeadRotationY, raw.HeadRotationY),
		HeadRotationZ:     blend(p.HeadRotationZ, raw.HeadRotationZ),
		LeftEyeOpenness:   blend(p.LeftEyeOpenness, raw.LeftEyeOpenness),
		RightEyeOpenness:  blend(p.RightEyeOpenness, raw.RightEyeOpenness),
		EyeGazeX:          blend(p.EyeGazeX, raw.EyeGazeX),
		EyeGazeY:          blend(p.EyeGazeY, raw.EyeGazeY),
		MouthOpenness:     blend(p.MouthOpenness, raw.MouthOpenness),
		MouthWidth:        blend(p.MouthWidth, raw.MouthWidth),
		LeftEyebrowRaise:  blend(p.LeftEyebrowRaise, raw.LeftEyebrowRaise),
		RightEyebrowRaise: blend(p.RightEyebrowRaise, raw.RightEyebrowRaise),

		IsSmiling:    raw.IsSmiling,
		IsTalking:    raw.IsTalking,
		IsBlinking:   raw.IsBlinking,
		FaceDetected: raw.FaceDetected,
		Confidence:   raw.Confidence,
	}

	s.prev = out.Clamp()
	return s.prev
}

// Hold reports a frame without a face: FaceDetected is cleared and every other
// field keeps its last smoothed value.
func (s *Smoother) Hold() Data {
	s.prev.FaceDetected = false
	return s.prev
}

// Current returns the last output without changing state.
func (s *Smoother) Current() Data {
	return s.prev
}

// Reset returns the state to Default.
func (s *Smoother) Reset() {
	s.prev = Default()
}
