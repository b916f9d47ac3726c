package session

import (
	"sync"
	"time"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/emotion"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/face"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/gesture"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/landmark"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/presence"
)

// Signals is everything derived from one frame.
type Signals struct {
	Time     time.Time     `json:"time"`
	Face     face.Data     `json:"face"`
	Emotion  emotion.Data  `json:"emotion"`
	Presence presence.Data `json:"presence"`
	Gesture  gesture.Data  `json:"gesture"`
}

// DefaultSignals is what a controller reports without a running session.
func DefaultSignals() Signals {
	return Signals{
		Face:     face.Default(),
		Emotion:  emotion.Default(),
		Presence: presence.Data{DistanceFromScreen: presence.Unknown},
		Gesture:  gesture.Data{Gesture: gesture.None},
	}
}

// Pipeline runs the per-frame stages in order:
// extract, smooth, classify, analyze presence, detect gesture, record trend.
// It is safe for concurrent use; Process calls are serialized.
type Pipeline struct {
	mu        sync.Mutex
	topology  landmark.Topology
	extractor *face.Extractor
	smoother  *face.Smoother
	presence  *presence.Analyzer
	gestures  *gesture.Detector
	history   *emotion.History
	last      Signals
}

// NewPipeline creates a pipeline for frames of topology t, which must already
// have passed Validate.
func NewPipeline(t landmark.Topology, tuning face.Tuning) *Pipeline {
	return &Pipeline{
		topology:  t,
		extractor: face.NewExtractor(tuning),
		smoother:  face.NewSmoother(tuning.SmoothingFactor),
		presence:  presence.NewAnalyzer(),
		gestures:  gesture.NewDetector(),
		history:   emotion.NewHistory(),
		last:      DefaultSignals(),
	}
}

// Process runs one frame through every stage. A frame without points is a
// normal no-face frame. A frame that does not match the topology is rejected
// and leaves all state untouched.
func (p *Pipeline) Process(f landmark.Frame, now time.Time) (Signals, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var fd face.Data
	if f.HasFace() {
		m, err := landmark.NewMesh(f, p.topology)
		if err != nil {
			return p.last, err
		}
		fd = p.smoother.Update(p.extractor.Extract(m, f.Score, now))
	} else {
		fd = p.smoother.Hold()
	}

	em := emotion.Classify(fd)
	if fd.FaceDetected {
		p.history.Add(em)
	}

	p.last = Signals{
		Time:     now,
		Face:     fd,
		Emotion:  em,
		Presence: p.presence.Update(fd, now),
		Gesture:  p.gestures.Detect(fd),
	}
	return p.last, nil
}

// Current returns the signals of the last processed frame.
func (p *Pipeline) Current() Signals {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// SetTuning applies new smoothing and blink parameters from the next frame on.
func (p *Pipeline) SetTuning(t face.Tuning) {
	p.mu.Lock()
	p.extractor.SetTuning(t)
	p.smoother.SetFactor(t.SmoothingFactor)
	p.mu.Unlock()
}

// Trend reports the emotional trend over the retained history.
func (p *Pipeline) Trend() emotion.Trend {
	return p.history.Trend()
}

// Dominant reports the most frequent recent emotion.
func (p *Pipeline) Dominant() emotion.Primary {
	return p.history.Dominant()
}

// GestureHistory returns recent gesture labels, oldest first.
func (p *Pipeline) GestureHistory() []gesture.Gesture {
	return p.gestures.History()
}

// Blinks returns the number of blinks registered this session.
func (p *Pipeline) Blinks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.extractor.Blinks()
}

// Reset returns every stage to its initial state.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.extractor.Reset()
	p.smoother.Reset()
	p.presence.Reset()
	p.gestures.Reset()
	p.history.Reset()
	p.last = DefaultSignals()
}
