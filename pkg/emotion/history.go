package emotion

import (
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/internal/ringbuf"
)

const (
	// HistorySize is the number of samples kept for trend queries.
	HistorySize = 30

	trendWindow    = 5
	trendThreshold = 0.2
)

// History is a bounded record of recent estimates. It is safe for
// concurrent use.
type History struct {
	mu  sync.RWMutex
	buf *ringbuf.Ring[Data]
}

// NewHistory creates an empty history of HistorySize samples.
func NewHistory() *History {
	return &History{buf: ringbuf.New[Data](HistorySize)}
}

// Add records a sample, dropping the oldest when full.
func (h *History) Add(d Data) {
	h.mu.Lock()
	h.buf.Push(d)
	h.mu.Unlock()
}

// Len returns the number of retained samples.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.buf.Len()
}

// Reset drops all samples.
func (h *History) Reset() {
	h.mu.Lock()
	h.buf.Reset()
	h.mu.Unlock()
}

// Samples returns a copy of the retained samples, oldest first.
func (h *History) Samples() []Data {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.buf.Slice()
}

// Dominant returns the most frequent primary emotion. An empty history
// reports Neutral. Among labels tied at the top count, the one that occurs
// first in the history wins.
func (h *History) Dominant() Primary {
	h.mu.RLock()
	defer h.mu.RUnlock()

	counts := make(map[Primary]int)
	var order []Primary
	for i := 0; i < h.buf.Len(); i++ {
		p := h.buf.At(i).Primary
		if counts[p] == 0 {
			order = append(order, p)
		}
		counts[p]++
	}

	best, bestCount := Neutral, 0
	for _, p := range order {
		if counts[p] > bestCount {
			best, bestCount = p, counts[p]
		}
	}
	return best
}

// Trend compares the mean valence of the newest five samples with the oldest
// five. It reports Stable until five samples exist.
func (h *History) Trend() Trend {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.buf.Len() < trendWindow {
		return Stable
	}
	recent := stat.Mean(valences(h.buf.Last(trendWindow)), nil)
	early := stat.Mean(valences(h.buf.First(trendWindow)), nil)

	switch diff := recent - early; {
	case diff > trendThreshold:
		return Improving
	case diff < -trendThreshold:
		return Declining
	default:
		return Stable
	}
}

func valences(samples []Data) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Valence
	}
	return out
}
