// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/session"
)

// Metrics holds all application metrics. It implements session.Observer.
type Metrics struct {
	// Frame counters
	FramesProcessed atomic.Uint64
	FramesWithFace  atomic.Uint64
	FramesNoFace    atomic.Uint64
	FramesSkipped   atomic.Uint64
	FrameErrors     atomic.Uint64

	// Lifecycle counters
	SessionsStarted  atomic.Uint64
	DetectorFailures atomic.Uint64
	CameraFailures   atomic.Uint64

	// Last step latency in microseconds
	StepLatencyUs atomic.Uint64

	// Current session.State
	State atomic.Int64

	registry *prometheus.Registry
}

var _ session.Observer = (*Metrics)(nil)

// New creates a new Metrics instance with Prometheus collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}
	m.register()
	return m
}

func (m *Metrics) register() {
	gauge := func(name, help string, fn func() float64) {
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Namespace: "facesignal", Name: name, Help: help},
			fn,
		))
	}
	counter := func(name, help string, v *atomic.Uint64) {
		gauge(name, help, func() float64 { return float64(v.Load()) })
	}

	counter("frames_processed_total", "Frames run through the pipeline", &m.FramesProcessed)
	counter("frames_face_total", "Processed frames with a face", &m.FramesWithFace)
	counter("frames_no_face_total", "Processed frames without a face", &m.FramesNoFace)
	counter("frames_skipped_total", "Ticks skipped because no camera frame was ready", &m.FramesSkipped)
	counter("frame_errors_total", "Frames dropped by capture, detection or processing errors", &m.FrameErrors)

	counter("sessions_started_total", "Sessions enabled", &m.SessionsStarted)
	counter("detector_failures_total", "Landmark detector initialization failures", &m.DetectorFailures)
	counter("camera_failures_total", "Camera open failures", &m.CameraFailures)

	gauge("step_latency_seconds", "Duration of the last frame step",
		func() float64 { return float64(m.StepLatencyUs.Load()) / 1e6 })
	gauge("session_state", "Lifecycle state (0 uninitialized, 1 initializing, 2 ready, 3 failed)",
		func() float64 { return float64(m.State.Load()) })
}

// FrameProcessed implements session.Observer.
func (m *Metrics) FrameProcessed(faceDetected bool, latency time.Duration) {
	m.FramesProcessed.Add(1)
	if faceDetected {
		m.FramesWithFace.Add(1)
	} else {
		m.FramesNoFace.Add(1)
	}
	m.StepLatencyUs.Store(uint64(latency.Microseconds()))
}

// FrameSkipped implements session.Observer.
func (m *Metrics) FrameSkipped() { m.FramesSkipped.Add(1) }

// FrameError implements session.Observer.
func (m *Metrics) FrameError() { m.FrameErrors.Add(1) }

// SessionStarted implements session.Observer.
func (m *Metrics) SessionStarted() { m.SessionsStarted.Add(1) }

// DetectorFailed implements session.Observer.
func (m *Metrics) DetectorFailed() { m.DetectorFailures.Add(1) }

// CameraFailed implements session.Observer.
func (m *Metrics) CameraFailed() { m.CameraFailures.Add(1) }

// StateChanged implements session.Observer.
func (m *Metrics) StateChanged(s session.State) { m.State.Store(int64(s)) }

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
