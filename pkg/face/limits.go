package face

import "math"

// Head pose limits in degrees.
const (
	MaxPitch = 30.0
	MaxYaw   = 45.0
	MaxRoll  = 20.0
)

// Degrees converts radians to degrees.
func Degrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// clamp limits a value to a range. NaN is treated as zero.
func clamp(value, min, max float64) float64 {
	if math.IsNaN(value) {
		value = 0
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
