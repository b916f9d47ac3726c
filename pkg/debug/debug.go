// Package debug provides global debug logging flags
package debug

import (
	"log/slog"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/internal/log"
)

// Enabled controls whether debug logging is active
var Enabled bool

// Tracking controls whether verbose per-frame logs are shown (pose, emotion,
// attention, gesture). Use --debug-tracking to enable these very verbose logs
var Tracking bool

// base overrides the global logger when set.
var base *slog.Logger

func logger(component string) *slog.Logger {
	if base != nil {
		return base.With("component", component)
	}
	return log.For(component)
}

// Log logs a message only if debug mode is enabled
func Log(msg string, args ...any) {
	if Enabled {
		logger("debug").Info(msg, args...)
	}
}

// TrackLog logs a message only if tracking debug mode is enabled
func TrackLog(msg string, args ...any) {
	if Tracking {
		logger("tracking").Info(msg, args...)
	}
}
