package face

import (
	"fmt"
	"time"
)

// Tuning holds the runtime-adjustable parameters of the face stage.
type Tuning struct {
	// SmoothingFactor is the EMA weight of the new raw value (0.3 = smooth, 1 = raw).
	SmoothingFactor float64 `json:"smoothing_factor" yaml:"smoothing_factor"`

	// BlinkThreshold is the eye openness below which a blink is registered.
	BlinkThreshold float64 `json:"blink_threshold" yaml:"blink_threshold"`

	// BlinkDebounce is the minimum gap between two registered blinks.
	BlinkDebounce time.Duration `json:"blink_debounce" yaml:"blink_debounce"`
}

// DefaultTuning returns the production defaults.
func DefaultTuning() Tuning {
	return Tuning{
		SmoothingFactor: 0.3,
		BlinkThreshold:  0.2,
		BlinkDebounce:   100 * time.Millisecond,
	}
}

// Merge returns t with every positive field of p applied.
// Values are clamped to their valid ranges.
func (t Tuning) Merge(p Tuning) Tuning {
	if p.SmoothingFactor > 0 {
		t.SmoothingFactor = clamp(p.SmoothingFactor, 0.01, 1)
	}
	if p.BlinkThreshold > 0 {
		t.BlinkThreshold = clamp(p.BlinkThreshold, 0.01, 0.99)
	}
	if p.BlinkDebounce > 0 {
		t.BlinkDebounce = p.BlinkDebounce
	}
	return t
}

// Validate checks the tuning ranges.
func (t Tuning) Validate() error {
	if t.SmoothingFactor <= 0 || t.SmoothingFactor > 1 {
		return fmt.Errorf("face: smoothing_factor must be in (0, 1], got %v", t.SmoothingFactor)
	}
	if t.BlinkThreshold <= 0 || t.BlinkThreshold >= 1 {
		return fmt.Errorf("face: blink_threshold must be in (0, 1), got %v", t.BlinkThreshold)
	}
	if t.BlinkDebounce < 0 {
		return fmt.Errorf("face: blink_debounce must not be negative, got %v", t.BlinkDebounce)
	}
	return nil
}
