package shortcode

import (
	"sync"
	"time"

	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// NoOpMetrics returns a metrics recorder that drops every observation.
func NoOpMetrics() interfaces.ShortcodeMetrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) ObserveRenderDuration(string, time.Duration) {}

func (noopMetrics) IncrementRenderError(string) {}

// CounterMetrics keeps in-memory render counts per shortcode.
type CounterMetrics struct {
	mu       sync.Mutex
	renders  map[string]int
	errors   map[string]int
	duration map[string]time.Duration
}

// NewCounterMetrics returns an empty recorder.
func NewCounterMetrics() *CounterMetrics {
	return &CounterMetrics{
		renders:  map[string]int{},
		errors:   map[string]int{},
		duration: map[string]time.Duration{},
	}
}

func (m *CounterMetrics) ObserveRenderDuration(shortcode string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders[shortcode]++
	m.duration[shortcode] += d
}

func (m *CounterMetrics) IncrementRenderError(shortcode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[shortcode]++
}

// MetricsSnapshot is a point in time copy of CounterMetrics.
type MetricsSnapshot struct {
	Renders  map[string]int
	Errors   map[string]int
	Duration map[string]time.Duration
}

// Snapshot copies the current counters.
func (m *CounterMetrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := MetricsSnapshot{
		Renders:  make(map[string]int, len(m.renders)),
		Errors:   make(map[string]int, len(m.errors)),
		Duration: make(map[string]time.Duration, len(m.duration)),
	}
	for k, v := range m.renders {
		snap.Renders[k] = v
	}
	for k, v := range m.errors {
		snap.Errors[k] = v
	}
	for k, v := range m.duration {
		snap.Duration[k] = v
	}
	return snap
}

var _ interfaces.ShortcodeMetrics = (*CounterMetrics)(nil)
