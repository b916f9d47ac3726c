package session

import "time"

// Clock paces the frame loop.
type Clock interface {
	// Ticks delivers one value per frame.
	Ticks() <-chan time.Time

	// Stop releases the clock. No ticks are delivered afterwards.
	Stop()
}

// NewClockFunc creates a clock for the given frame rate.
type NewClockFunc func(frameRate float64) Clock

// TickerClock is a Clock backed by time.Ticker.
type TickerClock struct {
	t *time.Ticker
}

// NewTickerClock ticks at frameRate per second. Rates at or below zero use
// 30 fps.
func NewTickerClock(frameRate float64) Clock {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	return &TickerClock{t: time.NewTicker(time.Duration(float64(time.Second) / frameRate))}
}

// Ticks implements Clock.
func (c *TickerClock) Ticks() <-chan time.Time {
	return c.t.C
}

// Stop implements Clock.
func (c *TickerClock) Stop() {
	c.t.Stop()
}
