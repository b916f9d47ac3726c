package camera

import "errors"

// Sentinel errors reported by camera backends.
var (
	// ErrPermissionDenied is returned when the OS refuses access to the device.
	ErrPermissionDenied = errors.New("camera: permission denied")

	// ErrDeviceUnavailable is returned when the device is missing, busy or
	// stops delivering frames.
	ErrDeviceUnavailable = errors.New("camera: device unavailable")

	// ErrFrameNotReady is returned by a capture when no new frame is ready yet.
	// The caller should skip this tick.
	ErrFrameNotReady = errors.New("camera: frame not ready")
)
