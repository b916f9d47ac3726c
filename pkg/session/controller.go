// Package session runs the facial-signal pipeline against a camera and a
// landmark detector.
//
// A Controller owns at most one Session. Enable acquires the detector through
// a Gate and then the camera, and starts a frame loop paced by a Clock. Each
// tick runs one synchronous step: capture, detect, extract, smooth, classify,
// analyze, detect gesture, record trend. Disable sets the stop flag, waits for
// the loop and tears the session down.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/camera"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/debug"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/emotion"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/face"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/gesture"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/presence"
)

// Controller drives sessions and exposes the latest signals.
type Controller struct {
	camera    Camera
	detectors DetectorFactory
	gate      *Gate
	obs       Observer
	log       *slog.Logger
	frameRate float64
	newClock  NewClockFunc

	// lifecycle serializes Enable, Disable and ResetDetector.
	lifecycle sync.Mutex

	mu      sync.RWMutex
	state   State
	errMsg  string
	reason  string
	tuning  face.Tuning
	sess    *Session
	signals []func(Signals)
	status  []func(Status)
}

// New creates a controller. Nothing is acquired until Enable.
func New(cam Camera, detectors DetectorFactory, opts ...Option) *Controller {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	return &Controller{
		camera:    cam,
		detectors: detectors,
		gate:      cfg.Gate,
		obs:       cfg.Observer,
		log:       cfg.Logger,
		frameRate: cfg.FrameRate,
		newClock:  cfg.NewClock,
		tuning:    cfg.Tuning,
	}
}

// Enable starts a session. It is a no-op while one is running.
//
// Detector failures are terminal: the controller enters Failed and later
// calls return ErrDetectorFailed without re-attempting initialization until
// ResetDetector. Camera failures leave the controller Uninitialized with a
// user-facing error in Status; calling Enable again retries.
func (c *Controller) Enable(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.session() != nil {
		return nil
	}
	if failed, reason := c.gate.Failed(); failed {
		err := &DetectorError{Reason: reason, Err: ErrDetectorFailed}
		c.setState(Failed, UserMessage(err), reason)
		return err
	}

	c.setState(Initializing, "", "")

	det, err := c.gate.Acquire(ctx, c.detectors)
	if err != nil {
		var de *DetectorError
		if !errors.As(err, &de) {
			c.setState(Uninitialized, UserMessage(err), "")
			return err
		}
		c.obs.DetectorFailed()
		c.log.Error("landmark detector unavailable", "error", err)
		c.setState(Failed, UserMessage(err), de.Reason)
		return err
	}

	var video VideoSource
	if c.camera == nil {
		err = fmt.Errorf("%w: no camera configured", camera.ErrDeviceUnavailable)
	} else {
		video, err = c.openCamera(ctx)
	}
	if err != nil {
		_ = det.Close()
		c.obs.CameraFailed()
		c.log.Warn("camera unavailable", "error", err)
		c.setState(Uninitialized, UserMessage(err), "")
		return err
	}

	p := NewPipeline(det.Topology(), c.Tuning())
	s := newSession(video, det, c.newClock(c.frameRate), p, time.Now())

	c.mu.Lock()
	c.sess = s
	c.mu.Unlock()

	c.obs.SessionStarted()
	c.log.Info("session enabled", "session", s.ID, "topology", det.Topology().Name, "fps", c.frameRate)
	c.setState(Ready, "", "")

	go c.run(s)
	return nil
}

// openCamera recovers a panicking camera backend into an error.
func (c *Controller) openCamera(ctx context.Context) (video VideoSource, err error) {
	defer func() {
		if r := recover(); r != nil {
			video, err = nil, fmt.Errorf("%w: %v", camera.ErrDeviceUnavailable, r)
		}
	}()
	video, err = c.camera.Open(ctx)
	if err == nil && video == nil {
		err = fmt.Errorf("%w: camera returned no source", camera.ErrDeviceUnavailable)
	}
	return video, err
}

// Disable stops the running session and releases its resources. It waits for
// the frame loop to exit and must not be called from an OnSignals callback.
func (c *Controller) Disable() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	c.stopSession()
}

func (c *Controller) stopSession() {
	s := c.session()
	if s == nil {
		return
	}

	s.requestStop()
	<-s.done
	if err := s.close(); err != nil {
		c.log.Warn("session teardown", "session", s.ID, "error", err)
	}

	c.mu.Lock()
	c.sess = nil
	c.mu.Unlock()

	c.log.Info("session disabled", "session", s.ID)
	c.setState(Uninitialized, "", "")
}

// Close disables the controller.
func (c *Controller) Close() error {
	c.Disable()
	return nil
}

// ResetDetector clears a recorded detector failure so the next Enable
// retries initialization.
func (c *Controller) ResetDetector() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.gate.Reset()
	if c.Status().State == Failed {
		c.setState(Uninitialized, "", "")
	}
}

// run is the frame loop. It exits when the stop flag is set.
func (c *Controller) run(s *Session) {
	defer close(s.done)
	ticks := s.clock.Ticks()
	for {
		select {
		case <-s.quit:
			return
		case now, ok := <-ticks:
			if !ok || s.Stopped() {
				return
			}
			c.step(s, now)
		}
	}
}

// step processes one frame. Failures and panics skip the frame.
func (c *Controller) step(s *Session, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			c.obs.FrameError()
			c.log.Warn("frame panicked", "session", s.ID, "panic", r)
		}
	}()

	start := time.Now()

	jpeg, err := s.video.CaptureJPEG()
	if errors.Is(err, camera.ErrFrameNotReady) {
		c.obs.FrameSkipped()
		return
	}
	if err != nil {
		c.obs.FrameError()
		c.log.Warn("capture failed", "session", s.ID, "error", err)
		return
	}

	frame, err := s.detector.Detect(jpeg)
	if err != nil {
		c.obs.FrameError()
		c.log.Warn("landmark detection failed", "session", s.ID, "error", err)
		return
	}

	sig, err := s.pipeline.Process(frame, now)
	if err != nil {
		c.obs.FrameError()
		c.log.Warn("frame rejected", "session", s.ID, "error", err)
		return
	}

	c.obs.FrameProcessed(sig.Face.FaceDetected, time.Since(start))
	if sig.Face.FaceDetected {
		debug.TrackLog("face",
			"pitch", sig.Face.Pitch(), "yaw", sig.Face.Yaw(), "roll", sig.Face.Roll(),
			"emotion", sig.Emotion.Primary, "attention", sig.Presence.AttentionLevel,
			"gesture", sig.Gesture.Gesture)
	}

	c.mu.RLock()
	listeners := c.signals
	c.mu.RUnlock()
	for _, fn := range listeners {
		fn(sig)
	}
}

func (c *Controller) session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess
}

func (c *Controller) setState(s State, errMsg, reason string) {
	c.mu.Lock()
	changed := c.state != s || c.errMsg != errMsg
	c.state, c.errMsg, c.reason = s, errMsg, reason
	listeners := c.status
	c.mu.Unlock()

	if !changed {
		return
	}
	c.obs.StateChanged(s)
	st := c.Status()
	for _, fn := range listeners {
		fn(st)
	}
}

// Status returns a snapshot of the lifecycle.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := Status{State: c.state, Error: c.errMsg, Reason: c.reason}
	if c.sess != nil {
		started := c.sess.StartedAt
		st.Enabled = true
		st.SessionID = c.sess.ID
		st.StartedAt = &started
	}
	return st
}

// OnStatus registers fn for every lifecycle change.
func (c *Controller) OnStatus(fn func(Status)) {
	c.mu.Lock()
	c.status = append(c.status, fn)
	c.mu.Unlock()
}

// OnSignals registers fn for every processed frame. It runs on the frame loop
// and must return quickly.
func (c *Controller) OnSignals(fn func(Signals)) {
	c.mu.Lock()
	c.signals = append(c.signals, fn)
	c.mu.Unlock()
}

// Signals returns the latest signals, or defaults without a session.
func (c *Controller) Signals() Signals {
	if s := c.session(); s != nil {
		return s.pipeline.Current()
	}
	return DefaultSignals()
}

// Face returns the latest smoothed face parameters.
func (c *Controller) Face() face.Data { return c.Signals().Face }

// Emotion returns the latest emotion estimate.
func (c *Controller) Emotion() emotion.Data { return c.Signals().Emotion }

// Presence returns the latest presence estimate.
func (c *Controller) Presence() presence.Data { return c.Signals().Presence }

// Gesture returns the latest gesture estimate.
func (c *Controller) Gesture() gesture.Data { return c.Signals().Gesture }

// EmotionTrend reports the emotional trend of the running session.
func (c *Controller) EmotionTrend() emotion.Trend {
	if s := c.session(); s != nil {
		return s.pipeline.Trend()
	}
	return emotion.Stable
}

// DominantEmotion reports the most frequent recent emotion.
func (c *Controller) DominantEmotion() emotion.Primary {
	if s := c.session(); s != nil {
		return s.pipeline.Dominant()
	}
	return emotion.Neutral
}

// GestureHistory returns the recent gesture labels of the running session.
func (c *Controller) GestureHistory() []gesture.Gesture {
	if s := c.session(); s != nil {
		return s.pipeline.GestureHistory()
	}
	return nil
}

// Blinks returns the blink count of the running session.
func (c *Controller) Blinks() (int, error) {
	s := c.session()
	if s == nil {
		return 0, ErrNotEnabled
	}
	return s.pipeline.Blinks(), nil
}

// Tuning returns the current face tuning.
func (c *Controller) Tuning() face.Tuning {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tuning
}

// SetTuning merges p into the current tuning and applies it to the running
// session. Zero fields in p are left unchanged.
func (c *Controller) SetTuning(p face.Tuning) (face.Tuning, error) {
	c.mu.Lock()
	next := c.tuning.Merge(p)
	if err := next.Validate(); err != nil {
		c.mu.Unlock()
		return c.tuning, err
	}
	c.tuning = next
	s := c.sess
	c.mu.Unlock()

	if s != nil {
		s.pipeline.SetTuning(next)
	}
	c.log.Info("tuning updated",
		"smoothing", next.SmoothingFactor, "blink_threshold", next.BlinkThreshold, "blink_debounce", next.BlinkDebounce)
	return next, nil
}
