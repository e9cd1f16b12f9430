package ocr

import (
	"slices"
	"sync"
	"time"
)

type observation struct {
	at      time.Time
	latency time.Duration
	failed  bool
}

// StatsSnapshot aggregates the recognitions currently in the window.
// Latency figures cover successful calls only.
type StatsSnapshot struct {
	Count    int     `json:"count"`
	Failures int     `json:"failures"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
}

// Stats tracks recent recognition calls within a rolling window.
type Stats struct {
	mu     sync.Mutex
	obs    []observation
	window time.Duration
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window}
}

// Observe records one call. Negative latencies count as zero.
func (s *Stats) Observe(latency time.Duration, err error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.obs = append(s.obs, observation{at: now, latency: max(latency, 0), failed: err != nil})
}

func (s *Stats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)

	var snap StatsSnapshot
	ms := make([]int64, 0, len(s.obs))
	var sum int64
	for _, o := range s.obs {
		if o.failed {
			snap.Failures++
			continue
		}
		v := o.latency.Milliseconds()
		ms = append(ms, v)
		sum += v
	}
	if len(ms) == 0 {
		return snap
	}
	slices.Sort(ms)

	snap.Count = len(ms)
	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = float64(sum) / float64(len(ms))
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	snap.P99Ms = percentile(ms, 99)
	return snap
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.obs = slices.DeleteFunc(s.obs, func(o observation) bool {
		return o.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	idx := float64(len(sorted)-1) * pct / 100
	lo := int(idx)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := idx - float64(lo)
	return float64(sorted[lo]) + float64(sorted[lo+1]-sorted[lo])*frac
}
