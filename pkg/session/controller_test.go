package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/camera"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/emotion"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/face"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/gesture"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/landmark"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/landmark/landmarktest"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/presence"
)

func repeat(n int, s step) []step {
	out := make([]step, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func TestController_HappyScenario(t *testing.T) {
	smile := step{frame: landmarktest.Frame(landmarktest.WithMouth(0.005, 0.14))}
	r := newRig(t, repeat(20, smile))
	r.enable()

	for i := 0; i < 20; i++ {
		if _, outcome := r.tick(); outcome != "processed" {
			t.Fatalf("frame %d: expected processed, got %s", i, outcome)
		}
	}

	sig := r.ctrl.Signals()
	if math.Abs(sig.Face.Pitch()) > 0.5 || math.Abs(sig.Face.Yaw()) > 0.5 || math.Abs(sig.Face.Roll()) > 0.5 {
		t.Errorf("Expected level frontal pose, got pitch=%.2f yaw=%.2f roll=%.2f",
			sig.Face.Pitch(), sig.Face.Yaw(), sig.Face.Roll())
	}
	if sig.Face.MouthWidth <= 0.6 {
		t.Errorf("Expected mouth width above 0.6, got %.3f", sig.Face.MouthWidth)
	}
	if sig.Emotion.Primary != emotion.Happy {
		t.Fatalf("Expected happy, got %s", sig.Emotion.Primary)
	}
	if sig.Emotion.Valence < 0.7 || sig.Emotion.Valence > 0.9 {
		t.Errorf("Expected valence in [0.7, 0.9], got %.3f", sig.Emotion.Valence)
	}
	if sig.Emotion.Arousal != 0.6 {
		t.Errorf("Expected arousal 0.6, got %.2f", sig.Emotion.Arousal)
	}
	if got := r.ctrl.DominantEmotion(); got != emotion.Happy {
		t.Errorf("Expected dominant happy, got %s", got)
	}
	if !sig.Presence.IsPresent || !sig.Presence.IsLookingAtScreen {
		t.Errorf("Expected present and looking, got %+v", sig.Presence)
	}
	if sig.Presence.DistanceFromScreen != presence.Close {
		t.Errorf("Expected close, got %s", sig.Presence.DistanceFromScreen)
	}
	if sig.Gesture.Gesture != gesture.None {
		t.Errorf("Expected no gesture, got %s", sig.Gesture.Gesture)
	}
	if got := len(r.ctrl.GestureHistory()); got != gesture.HistorySize {
		t.Errorf("Expected %d gesture entries, got %d", gesture.HistorySize, got)
	}
}

func TestController_NoFaceHoldsLastValues(t *testing.T) {
	script := append(
		repeat(3, step{frame: landmarktest.Frame(landmarktest.WithNose(0.53, 0.52))}),
		repeat(3, step{frame: landmark.Frame{}})...,
	)
	r := newRig(t, script)
	r.enable()

	var lastSeen time.Time
	for i := 0; i < 3; i++ {
		lastSeen, _ = r.tick()
	}
	held := r.ctrl.Face()

	for i := 0; i < 3; i++ {
		r.tick()
		sig := r.ctrl.Signals()

		got := sig.Face
		if got.FaceDetected {
			t.Fatalf("no-face frame %d: expected FaceDetected=false", i)
		}
		got.FaceDetected = true
		if got != held {
			t.Errorf("no-face frame %d: bounded fields changed:\n got %+v\nwant %+v", i, got, held)
		}

		p := sig.Presence
		if p.IsPresent || p.AttentionLevel != 0 || p.DistanceFromScreen != presence.Unknown {
			t.Errorf("no-face frame %d: unexpected presence %+v", i, p)
		}
		if p.LastSeenAt == nil || !p.LastSeenAt.Equal(lastSeen) {
			t.Errorf("no-face frame %d: expected lastSeenAt %v, got %v", i, lastSeen, p.LastSeenAt)
		}
		if sig.Emotion.Primary != emotion.Neutral || sig.Emotion.Confidence != 0 {
			t.Errorf("no-face frame %d: expected neutral default emotion, got %+v", i, sig.Emotion)
		}
	}
}

func TestController_DetectorMissing(t *testing.T) {
	r := newRig(t, nil)
	r.initErr = errors.New("FaceMesh model not found")

	err := r.ctrl.Enable(context.Background())
	if !errors.Is(err, ErrDetectorUnavailable) {
		t.Fatalf("Expected ErrDetectorUnavailable, got %v", err)
	}
	st := r.ctrl.Status()
	if st.State != Failed || st.Enabled {
		t.Errorf("Expected failed and disabled, got %+v", st)
	}
	if st.Error == "" || st.Reason != "FaceMesh model not found" {
		t.Errorf("Expected readable error and reason, got %+v", st)
	}

	err = r.ctrl.Enable(context.Background())
	if !errors.Is(err, ErrDetectorFailed) {
		t.Errorf("Expected ErrDetectorFailed on second enable, got %v", err)
	}
	if n := r.inits.Load(); n != 1 {
		t.Errorf("Expected one init attempt, got %d", n)
	}
	if n := r.cam.opens.Load(); n != 0 {
		t.Errorf("Expected camera untouched, got %d opens", n)
	}
	if n := r.obs.detector.Load(); n != 1 {
		t.Errorf("Expected one detector failure event, got %d", n)
	}

	r.initErr = nil
	r.ctrl.ResetDetector()
	if st := r.ctrl.Status(); st.State != Uninitialized {
		t.Errorf("Expected uninitialized after reset, got %s", st.State)
	}
	r.enable()
	if n := r.inits.Load(); n != 2 {
		t.Errorf("Expected a second init attempt after reset, got %d", n)
	}
	if st := r.ctrl.Status(); st.State != Ready || !st.Enabled {
		t.Errorf("Expected ready, got %+v", st)
	}
}

func TestController_FailureSharedThroughGate(t *testing.T) {
	gate := &Gate{}
	inits := 0
	factory := func(context.Context) (LandmarkDetector, error) {
		inits++
		return nil, errBoom
	}

	a := New(&fakeCamera{}, factory, WithGate(gate), WithClock(func(float64) Clock { return newFakeClock() }))
	b := New(&fakeCamera{}, factory, WithGate(gate), WithClock(func(float64) Clock { return newFakeClock() }))

	if err := a.Enable(context.Background()); err == nil {
		t.Fatal("Expected first controller to fail")
	}
	if err := b.Enable(context.Background()); !errors.Is(err, ErrDetectorFailed) {
		t.Errorf("Expected second controller to short-circuit, got %v", err)
	}
	if inits != 1 {
		t.Errorf("Expected one init across controllers, got %d", inits)
	}
	if b.Status().State != Failed {
		t.Errorf("Expected second controller failed, got %s", b.Status().State)
	}
}

func TestController_DetectorInitPanics(t *testing.T) {
	gate := &Gate{}
	factory := func(context.Context) (LandmarkDetector, error) {
		panic("class not exported")
	}
	c := New(&fakeCamera{}, factory, WithGate(gate))

	err := c.Enable(context.Background())
	if !errors.Is(err, ErrDetectorUnavailable) {
		t.Fatalf("Expected ErrDetectorUnavailable, got %v", err)
	}
	if c.Status().State != Failed {
		t.Errorf("Expected failed, got %s", c.Status().State)
	}
}

func TestController_TopologyRejected(t *testing.T) {
	r := newRig(t, nil)
	r.det.topo = landmark.Topology{Name: "blazeface", Size: 6}

	if err := r.ctrl.Enable(context.Background()); !errors.Is(err, landmark.ErrMissingLandmark) {
		t.Fatalf("Expected ErrMissingLandmark, got %v", err)
	}
	if !r.det.closed.Load() {
		t.Error("Expected rejected detector to be closed")
	}
	if r.ctrl.Status().State != Failed {
		t.Errorf("Expected failed, got %s", r.ctrl.Status().State)
	}
}

func TestController_CameraFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"permission denied", camera.ErrPermissionDenied, "Camera access was denied. Allow camera access and try again."},
		{"device unavailable", fmt.Errorf("%w: /dev/video0 busy", camera.ErrDeviceUnavailable), "No camera is available. Connect a camera and try again."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(t, nil)
			r.cam.err = tc.err

			err := r.ctrl.Enable(context.Background())
			if !errors.Is(err, tc.err) {
				t.Fatalf("Expected %v, got %v", tc.err, err)
			}
			st := r.ctrl.Status()
			if st.State != Uninitialized || st.Enabled {
				t.Errorf("Expected uninitialized, got %+v", st)
			}
			if st.Error != tc.msg {
				t.Errorf("Expected message %q, got %q", tc.msg, st.Error)
			}
			if !r.det.closed.Load() {
				t.Error("Expected detector released after camera failure")
			}

			r.cam.err = nil
			r.enable()
			if st := r.ctrl.Status(); st.State != Ready || st.Error != "" {
				t.Errorf("Expected ready after retry, got %+v", st)
			}
			if n := r.obs.camera.Load(); n != 1 {
				t.Errorf("Expected one camera failure event, got %d", n)
			}
		})
	}
}

func TestController_TransientFrameFailures(t *testing.T) {
	good := landmarktest.Frame()
	script := []step{
		{notReady: true},
		{captureErr: errBoom},
		{panics: true},
		{detectErr: errBoom},
		{frame: landmarktest.FrameFor(landmark.FaceMesh)},
		{frame: good},
	}
	r := newRig(t, script)
	r.enable()

	want := []string{"skipped", "error", "error", "error", "error", "processed"}
	for i, w := range want {
		if _, got := r.tick(); got != w {
			t.Errorf("frame %d: expected %s, got %s", i, w, got)
		}
	}
	if !r.ctrl.Face().FaceDetected {
		t.Error("Expected the loop to keep running after failures")
	}
	if st := r.ctrl.Status(); st.State != Ready {
		t.Errorf("Expected ready, got %s", st.State)
	}
}

func TestController_DisableReleasesEverything(t *testing.T) {
	r := newRig(t, repeat(3, step{frame: landmarktest.Frame(landmarktest.WithEyeGap(0.002))}))
	r.enable()
	id := r.ctrl.Status().SessionID
	if id == "" {
		t.Fatal("Expected a session ID")
	}
	for i := 0; i < 3; i++ {
		r.tick()
	}
	if n, err := r.ctrl.Blinks(); err != nil || n != 1 {
		t.Errorf("Expected 1 blink, got %d (%v)", n, err)
	}

	r.ctrl.Disable()

	if !r.video.closed.Load() || !r.det.closed.Load() || !r.clock.stopped.Load() {
		t.Errorf("Expected all resources released: video=%v detector=%v clock=%v",
			r.video.closed.Load(), r.det.closed.Load(), r.clock.stopped.Load())
	}
	st := r.ctrl.Status()
	if st.State != Uninitialized || st.Enabled || st.SessionID != "" {
		t.Errorf("Expected disabled status, got %+v", st)
	}
	if r.ctrl.Face() != face.Default() {
		t.Errorf("Expected default face after disable, got %+v", r.ctrl.Face())
	}
	if r.ctrl.EmotionTrend() != emotion.Stable || r.ctrl.DominantEmotion() != emotion.Neutral {
		t.Error("Expected empty history after disable")
	}
	if _, err := r.ctrl.Blinks(); !errors.Is(err, ErrNotEnabled) {
		t.Errorf("Expected ErrNotEnabled, got %v", err)
	}

	r.ctrl.Disable()
	r.clock = newFakeClock()
	r.enable()
	if next := r.ctrl.Status().SessionID; next == id || next == "" {
		t.Errorf("Expected a fresh session ID, got %q", next)
	}
}

func TestController_EnableTwiceIsNoop(t *testing.T) {
	r := newRig(t, nil)
	r.enable()
	r.enable()
	if n := r.inits.Load(); n != 1 {
		t.Errorf("Expected one init, got %d", n)
	}
	if n := r.obs.sessions.Load(); n != 1 {
		t.Errorf("Expected one session, got %d", n)
	}
}

func TestController_Listeners(t *testing.T) {
	r := newRig(t, []step{{frame: landmarktest.Frame()}})

	var states []State
	r.ctrl.OnStatus(func(s Status) { states = append(states, s.State) })
	got := make(chan Signals, 1)
	r.ctrl.OnSignals(func(s Signals) { got <- s })

	r.enable()
	now, _ := r.tick()

	select {
	case s := <-got:
		if !s.Time.Equal(now) || !s.Face.FaceDetected {
			t.Errorf("Unexpected signals %+v", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnSignals not called")
	}

	r.ctrl.Disable()
	want := []State{Initializing, Ready, Uninitialized}
	if fmt.Sprint(states) != fmt.Sprint(want) {
		t.Errorf("Expected states %v, got %v", want, states)
	}
}

func TestController_SetTuning(t *testing.T) {
	r := newRig(t, nil)
	r.enable()

	got, err := r.ctrl.SetTuning(face.Tuning{SmoothingFactor: 0.5})
	if err != nil {
		t.Fatalf("SetTuning failed: %v", err)
	}
	if got.SmoothingFactor != 0.5 || got.BlinkThreshold != face.DefaultTuning().BlinkThreshold {
		t.Errorf("Unexpected tuning %+v", got)
	}
	if r.ctrl.Tuning() != got {
		t.Errorf("Expected stored tuning %+v, got %+v", got, r.ctrl.Tuning())
	}
	if f := r.ctrl.session().pipeline.smoother.Factor(); f != 0.5 {
		t.Errorf("Expected running smoother factor 0.5, got %v", f)
	}
}

func TestController_NoCamera(t *testing.T) {
	c := New(nil, func(context.Context) (LandmarkDetector, error) {
		return &fakeDetector{topo: landmark.FaceMesh}, nil
	}, WithGate(&Gate{}))

	if err := c.Enable(context.Background()); !errors.Is(err, camera.ErrDeviceUnavailable) {
		t.Errorf("Expected ErrDeviceUnavailable, got %v", err)
	}
}
