package session

import (
	"context"
	"time"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/landmark"
)

// VideoSource delivers encoded frames. CaptureJPEG returns
// camera.ErrFrameNotReady when no new frame is available yet.
type VideoSource interface {
	CaptureJPEG() ([]byte, error)
	Close() error
}

// Camera opens a video source. Open fails with camera.ErrPermissionDenied or
// camera.ErrDeviceUnavailable.
type Camera interface {
	Open(ctx context.Context) (VideoSource, error)
}

// CameraFunc adapts a function to Camera.
type CameraFunc func(ctx context.Context) (VideoSource, error)

// Open implements Camera.
func (f CameraFunc) Open(ctx context.Context) (VideoSource, error) {
	return f(ctx)
}

// LandmarkDetector finds one face per frame. A frame without a face has no
// points.
type LandmarkDetector interface {
	Detect(jpeg []byte) (landmark.Frame, error)
	Topology() landmark.Topology
	Close() error
}

// DetectorFactory creates a landmark detector.
type DetectorFactory func(ctx context.Context) (LandmarkDetector, error)

// Observer receives lifecycle and per-frame events, typically for metrics.
// Calls are made from the frame loop and must not block.
type Observer interface {
	FrameProcessed(faceDetected bool, latency time.Duration)
	FrameSkipped()
	FrameError()
	SessionStarted()
	DetectorFailed()
	CameraFailed()
	StateChanged(s State)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) FrameProcessed(bool, time.Duration) {}
func (NopObserver) FrameSkipped()                      {}
func (NopObserver) FrameError()                        {}
func (NopObserver) SessionStarted()                    {}
func (NopObserver) DetectorFailed()                    {}
func (NopObserver) CameraFailed()                      {}
func (NopObserver) StateChanged(State)                 {}
