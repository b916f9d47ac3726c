package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/session"
)

func TestMetrics_Observer(t *testing.T) {
	m := New()
	m.FrameProcessed(true, 2*time.Millisecond)
	m.FrameProcessed(false, time.Millisecond)
	m.FrameSkipped()
	m.FrameError()
	m.SessionStarted()
	m.DetectorFailed()
	m.CameraFailed()
	m.StateChanged(session.Ready)

	checks := []struct {
		name string
		got  uint64
		want uint64
	}{
		{"processed", m.FramesProcessed.Load(), 2},
		{"with face", m.FramesWithFace.Load(), 1},
		{"no face", m.FramesNoFace.Load(), 1},
		{"skipped", m.FramesSkipped.Load(), 1},
		{"errors", m.FrameErrors.Load(), 1},
		{"sessions", m.SessionsStarted.Load(), 1},
		{"detector", m.DetectorFailures.Load(), 1},
		{"camera", m.CameraFailures.Load(), 1},
		{"latency", m.StepLatencyUs.Load(), 1000},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: expected %d, got %d", c.name, c.want, c.got)
		}
	}
	if m.State.Load() != int64(session.Ready) {
		t.Errorf("Expected state ready, got %d", m.State.Load())
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.FrameProcessed(true, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		"facesignal_frames_processed_total 1",
		"facesignal_frames_face_total 1",
		"facesignal_session_state 0",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("Expected %q in output:\n%s", want, body)
		}
	}
}
