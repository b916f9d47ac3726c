package session

import (
	"errors"
	"fmt"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/camera"
)

// Sentinel errors for lifecycle conditions.
var (
	// ErrDetectorUnavailable is returned when the landmark detector cannot be
	// created. It is not retryable.
	ErrDetectorUnavailable = errors.New("session: landmark detector unavailable")

	// ErrDetectorFailed is returned by enables after a detector failure was
	// recorded, until the gate is reset.
	ErrDetectorFailed = errors.New("session: landmark detector previously failed")

	// ErrNotEnabled is returned by operations that need a running session.
	ErrNotEnabled = errors.New("session: not enabled")
)

// DetectorError carries the reason a detector could not be initialized.
type DetectorError struct {
	// Reason is a human-readable cause.
	Reason string

	// Err is the lifecycle sentinel, ErrDetectorUnavailable or ErrDetectorFailed.
	Err error

	// Cause is the underlying initialization error, if any.
	Cause error
}

// Error implements the error interface.
func (e *DetectorError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Reason)
}

// Unwrap returns the sentinel and the cause.
func (e *DetectorError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// UserMessage turns a lifecycle error into a string suitable for display.
func UserMessage(err error) string {
	var de *DetectorError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &de):
		return "Face tracking is unavailable: " + de.Reason
	case errors.Is(err, camera.ErrPermissionDenied):
		return "Camera access was denied. Allow camera access and try again."
	case errors.Is(err, camera.ErrDeviceUnavailable):
		return "No camera is available. Connect a camera and try again."
	default:
		return "Face tracking could not start: " + err.Error()
	}
}
