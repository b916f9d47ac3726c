package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/camera"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/landmark"
)

// step scripts one capture + detection.
type step struct {
	notReady   bool
	captureErr error
	detectErr  error
	panics     bool
	frame      landmark.Frame
}

type fakeVideo struct {
	mu     sync.Mutex
	script []step
	next   int
	closed atomic.Bool
}

func (v *fakeVideo) CaptureJPEG() ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.next >= len(v.script) {
		return nil, camera.ErrFrameNotReady
	}
	i := v.next
	v.next++
	s := v.script[i]
	if s.notReady {
		return nil, camera.ErrFrameNotReady
	}
	if s.captureErr != nil {
		return nil, s.captureErr
	}
	return []byte{byte(i)}, nil
}

func (v *fakeVideo) Close() error {
	v.closed.Store(true)
	return nil
}

type fakeCamera struct {
	video *fakeVideo
	err   error
	opens atomic.Int32
}

func (c *fakeCamera) Open(context.Context) (VideoSource, error) {
	c.opens.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.video, nil
}

type fakeDetector struct {
	video  *fakeVideo
	topo   landmark.Topology
	closed atomic.Bool
}

func (d *fakeDetector) Detect(jpeg []byte) (landmark.Frame, error) {
	s := d.video.script[jpeg[0]]
	if s.panics {
		panic("model crashed")
	}
	if s.detectErr != nil {
		return landmark.Frame{}, s.detectErr
	}
	return s.frame, nil
}

func (d *fakeDetector) Topology() landmark.Topology { return d.topo }

func (d *fakeDetector) Close() error {
	d.closed.Store(true)
	return nil
}

type fakeClock struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{ch: make(chan time.Time)}
}

func (c *fakeClock) Ticks() <-chan time.Time { return c.ch }
func (c *fakeClock) Stop()                   { c.stopped.Store(true) }

// recorder is an Observer that reports every frame outcome on a channel.
type recorder struct {
	NopObserver
	frames    chan string
	processed atomic.Int32
	skipped   atomic.Int32
	errors    atomic.Int32
	detector  atomic.Int32
	camera    atomic.Int32
	sessions  atomic.Int32
}

func newRecorder() *recorder {
	return &recorder{frames: make(chan string, 128)}
}

func (r *recorder) FrameProcessed(bool, time.Duration) {
	r.processed.Add(1)
	r.frames <- "processed"
}

func (r *recorder) FrameSkipped() {
	r.skipped.Add(1)
	r.frames <- "skipped"
}

func (r *recorder) FrameError() {
	r.errors.Add(1)
	r.frames <- "error"
}

func (r *recorder) SessionStarted() { r.sessions.Add(1) }
func (r *recorder) DetectorFailed() { r.detector.Add(1) }
func (r *recorder) CameraFailed()   { r.camera.Add(1) }

// rig wires a controller to fakes.
type rig struct {
	t        *testing.T
	ctrl     *Controller
	cam      *fakeCamera
	video    *fakeVideo
	det      *fakeDetector
	clock    *fakeClock
	obs      *recorder
	gate     *Gate
	inits    atomic.Int32
	initErr  error
	now      time.Time
	tickStep time.Duration
}

func newRig(t *testing.T, script []step) *rig {
	t.Helper()
	r := &rig{
		t:        t,
		video:    &fakeVideo{script: script},
		clock:    newFakeClock(),
		obs:      newRecorder(),
		gate:     &Gate{},
		now:      time.Unix(10000, 0),
		tickStep: 33 * time.Millisecond,
	}
	r.cam = &fakeCamera{video: r.video}
	r.det = &fakeDetector{video: r.video, topo: landmark.FaceMeshRefined}

	factory := func(context.Context) (LandmarkDetector, error) {
		r.inits.Add(1)
		if r.initErr != nil {
			return nil, r.initErr
		}
		return r.det, nil
	}
	r.ctrl = New(r.cam, factory,
		WithGate(r.gate),
		WithObserver(r.obs),
		WithClock(func(float64) Clock { return r.clock }),
	)
	t.Cleanup(r.ctrl.Disable)
	return r
}

// tick drives one frame and waits for its outcome.
func (r *rig) tick() (time.Time, string) {
	r.t.Helper()
	now := r.now
	r.now = r.now.Add(r.tickStep)
	select {
	case r.clock.ch <- now:
	case <-time.After(2 * time.Second):
		r.t.Fatal("frame loop did not accept tick")
	}
	select {
	case outcome := <-r.obs.frames:
		return now, outcome
	case <-time.After(2 * time.Second):
		r.t.Fatal("frame did not complete")
	}
	return now, ""
}

func (r *rig) enable() {
	r.t.Helper()
	if err := r.ctrl.Enable(context.Background()); err != nil {
		r.t.Fatalf("Enable failed: %v", err)
	}
}

var errBoom = errors.New("boom")
