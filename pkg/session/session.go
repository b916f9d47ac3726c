package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Session owns the resources of one enabled period: the video source, the
// landmark detector, the frame clock and the pipeline state. All of them are
// released by a single teardown that runs exactly once.
type Session struct {
	ID        string
	StartedAt time.Time

	video    VideoSource
	detector LandmarkDetector
	clock    Clock
	pipeline *Pipeline

	stop     atomic.Bool
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	teardown sync.Once
	closeErr error
}

func newSession(video VideoSource, det LandmarkDetector, clock Clock, p *Pipeline, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: now,
		video:     video,
		detector:  det,
		clock:     clock,
		pipeline:  p,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Stopped reports whether the stop flag is set.
func (s *Session) Stopped() bool {
	return s.stop.Load()
}

// requestStop sets the stop flag and wakes the loop.
func (s *Session) requestStop() {
	s.stopOnce.Do(func() {
		s.stop.Store(true)
		close(s.quit)
	})
}

// close releases every resource and resets pipeline state.
func (s *Session) close() error {
	s.teardown.Do(func() {
		var errs []error
		if s.clock != nil {
			s.clock.Stop()
		}
		if s.video != nil {
			errs = append(errs, s.video.Close())
		}
		if s.detector != nil {
			errs = append(errs, s.detector.Close())
		}
		s.pipeline.Reset()
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
