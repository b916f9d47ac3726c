package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// DefaultGate is the process-wide detector gate. Controllers use it unless
// WithGate is given.
var DefaultGate = &Gate{}

// Gate guards landmark detector initialization. After a failure it keeps a
// permanent sentinel so later sessions fail fast instead of retrying.
type Gate struct {
	mu     sync.Mutex
	failed bool
	reason string
}

// Acquire creates a detector with factory unless a failure was recorded.
// The detector's topology is validated before it is returned. Context
// cancellation is not recorded as a failure.
func (g *Gate) Acquire(ctx context.Context, factory DetectorFactory) (det LandmarkDetector, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failed {
		return nil, &DetectorError{Reason: g.reason, Err: ErrDetectorFailed}
	}
	if factory == nil {
		return nil, g.fail(errors.New("no detector configured"))
	}

	defer func() {
		if r := recover(); r != nil {
			det, err = nil, g.fail(fmt.Errorf("detector init panicked: %v", r))
		}
	}()

	det, err = factory(ctx)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return nil, err
		}
		return nil, g.fail(err)
	}
	if det == nil {
		return nil, g.fail(errors.New("factory returned no detector"))
	}
	if err := det.Topology().Validate(); err != nil {
		_ = det.Close()
		return nil, g.fail(err)
	}
	return det, nil
}

func (g *Gate) fail(cause error) error {
	g.failed = true
	g.reason = cause.Error()
	return &DetectorError{Reason: g.reason, Err: ErrDetectorUnavailable, Cause: cause}
}

// Failed reports whether a failure is recorded and why.
func (g *Gate) Failed() (bool, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failed, g.reason
}

// Reset clears a recorded failure so the next enable retries.
func (g *Gate) Reset() {
	g.mu.Lock()
	g.failed = false
	g.reason = ""
	g.mu.Unlock()
}
