// Package camera holds runtime-configurable webcam settings and the capture
// error vocabulary shared by camera backends.
package camera

import "fmt"

// Config holds all camera configuration parameters.
// These can be modified via the camera API at runtime and take effect on the
// next session enable.
type Config struct {
	// Device is a capture index ("0") or a device path / stream URL.
	Device string `json:"device" yaml:"device"`

	// === Resolution ===
	Width     int `json:"width" yaml:"width"`         // Frame width in pixels
	Height    int `json:"height" yaml:"height"`       // Frame height in pixels
	Framerate int `json:"framerate" yaml:"framerate"` // Target FPS
	Quality   int `json:"quality" yaml:"quality"`     // JPEG quality 1-100

	// Mirror flips frames horizontally before encoding, so the image's left
	// matches the user's left on a front-facing camera.
	Mirror bool `json:"mirror" yaml:"mirror"`

	// WarmupFrames are read and discarded after opening while exposure settles.
	WarmupFrames int `json:"warmup_frames" yaml:"warmup_frames"`
}

// Capture limits
const (
	MaxWidth     = 3840
	MaxHeight    = 2160
	MaxFramerate = 120
	MaxWarmup    = 60
)

// DefaultConfig returns the recommended configuration.
// 640x480 keeps the face mesh well above its input size at low CPU cost.
func DefaultConfig() Config {
	return Config{
		Device:       "0",
		Width:        640,
		Height:       480,
		Framerate:    30,
		Quality:      85,
		WarmupFrames: 5,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Device == "" {
		errors = append(errors, "device must not be empty")
	}
	if c.Width < 160 || c.Width > MaxWidth {
		errors = append(errors, fmt.Sprintf("width must be between 160 and %d", MaxWidth))
	}
	if c.Height < 120 || c.Height > MaxHeight {
		errors = append(errors, fmt.Sprintf("height must be between 120 and %d", MaxHeight))
	}
	if c.Framerate < 1 || c.Framerate > MaxFramerate {
		errors = append(errors, fmt.Sprintf("framerate must be between 1 and %d", MaxFramerate))
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}
	if c.WarmupFrames < 0 || c.WarmupFrames > MaxWarmup {
		errors = append(errors, fmt.Sprintf("warmup_frames must be between 0 and %d", MaxWarmup))
	}

	return errors
}

// Capabilities returns the limits the camera API accepts.
func Capabilities() map[string]interface{} {
	return map[string]interface{}{
		"max_width":     MaxWidth,
		"max_height":    MaxHeight,
		"max_framerate": MaxFramerate,
		"max_warmup":    MaxWarmup,
		"presets":       PresetNames(),
	}
}
