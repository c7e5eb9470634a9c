package pipeline

import (
	"sync"
	"time"
)

// Stats accumulates per-frame processing timings.
type Stats struct {
	mu        sync.Mutex
	frames    int64
	failures  int64
	totalTime time.Duration
	last      time.Duration
	slowest   time.Duration
}

type StatsSnapshot struct {
	Frames    int64
	Failures  int64
	TotalTime time.Duration
	Last      time.Duration
	Slowest   time.Duration
	Average   time.Duration
}

func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) record(elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frames++
	s.totalTime += elapsed
	s.last = elapsed
	if elapsed > s.slowest {
		s.slowest = elapsed
	}
}

func (s *Stats) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		Frames:    s.frames,
		Failures:  s.failures,
		TotalTime: s.totalTime,
		Last:      s.last,
		Slowest:   s.slowest,
	}
	if s.frames > 0 {
		snap.Average = s.totalTime / time.Duration(s.frames)
	}
	return snap
}

// Fields renders the snapshot as structured log fields.
func (s StatsSnapshot) Fields() map[string]interface{} {
	return map[string]interface{}{
		"frames":     s.Frames,
		"failures":   s.Failures,
		"average_ms": float64(s.Average.Microseconds()) / 1000,
		"last_ms":    float64(s.Last.Microseconds()) / 1000,
		"slowest_ms": float64(s.Slowest.Microseconds()) / 1000,
	}
}
