package session

import (
	"log/slog"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/internal/log"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/face"
)

// DefaultFrameRate is the loop rate when none is configured.
const DefaultFrameRate = 30.0

// Config holds controller configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	FrameRate float64
	Tuning    face.Tuning
	NewClock  NewClockFunc
	Gate      *Gate
	Observer  Observer
	Logger    *slog.Logger
}

// Option is a functional option for configuring a Controller.
type Option func(*Config)

// WithFrameRate sets the frame loop rate in frames per second.
func WithFrameRate(fps float64) Option {
	return func(c *Config) {
		c.FrameRate = fps
	}
}

// WithTuning sets the initial face tuning.
func WithTuning(t face.Tuning) Option {
	return func(c *Config) {
		c.Tuning = t
	}
}

// WithClock overrides how frame clocks are created.
func WithClock(fn NewClockFunc) Option {
	return func(c *Config) {
		c.NewClock = fn
	}
}

// WithGate uses g instead of DefaultGate.
func WithGate(g *Gate) Option {
	return func(c *Config) {
		c.Gate = g
	}
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	return func(c *Config) {
		c.Observer = o
	}
}

// WithLogger sets the structured logger for the controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		FrameRate: DefaultFrameRate,
		Tuning:    face.DefaultTuning(),
		NewClock:  NewTickerClock,
		Gate:      DefaultGate,
		Observer:  NopObserver{},
		Logger:    log.For("session"),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
	if c.FrameRate <= 0 {
		c.FrameRate = DefaultFrameRate
	}
	if c.NewClock == nil {
		c.NewClock = NewTickerClock
	}
	if c.Gate == nil {
		c.Gate = DefaultGate
	}
	if c.Observer == nil {
		c.Observer = NopObserver{}
	}
	if c.Logger == nil {
		c.Logger = log.For("session")
	}
}
