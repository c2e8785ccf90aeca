// Package stats holds the pure statistical building blocks the rest of the
// scheduler folds raw samples through: weighted/rolling aggregates in
// rolling.go, and a bounded-memory percentile tracker here.
package stats

import (
	"math/rand/v2"
	"sort"
	"sync"
)

// PercentileTracker accumulates a stream of int64 readings (millisecond
// latencies in practice) and reports p50/p95/p99 without keeping the full
// history in memory.
type PercentileTracker interface {
	Add(value int64)
	GetPercentiles() (p50, p95, p99 int64)
	Count() int64
	Reset()
}

// ReservoirSampler keeps a fixed-size uniform random subsample of every
// value it has ever seen (Vitter's algorithm R), so percentile accuracy
// stays roughly constant regardless of how long an endpoint has been probed
// while memory use is capped at maxSize entries.
type ReservoirSampler struct {
	mu      sync.Mutex
	sample  []int64
	maxSize int
	seen    int64
}

// NewReservoirSampler builds a sampler holding at most maxSize values.
func NewReservoirSampler(maxSize int) *ReservoirSampler {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &ReservoirSampler{maxSize: maxSize, sample: make([]int64, 0, maxSize)}
}

// Add offers one value to the reservoir. While the reservoir has spare
// capacity every value is kept; once full, each new value replaces a
// uniformly random existing slot with probability maxSize/seen, which
// Vitter's algorithm shows preserves a uniform sample over the full stream.
func (rs *ReservoirSampler) Add(value int64) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.seen++
	if len(rs.sample) < rs.maxSize {
		rs.sample = append(rs.sample, value)
		return
	}

	slot := rand.Int64N(rs.seen) //nolint:gosec // uniform sampling, not a security primitive
	if slot < int64(rs.maxSize) {
		rs.sample[slot] = value
	}
}

// GetPercentiles sorts a private copy of the current sample and picks the
// nearest-rank value at each of the 50th/95th/99th percentiles.
func (rs *ReservoirSampler) GetPercentiles() (p50, p95, p99 int64) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if len(rs.sample) == 0 {
		return 0, 0, 0
	}

	sorted := append([]int64(nil), rs.sample...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return rankOf(sorted, 50), rankOf(sorted, 95), rankOf(sorted, 99)
}

func rankOf(sorted []int64, pct int) int64 {
	idx := len(sorted) * pct / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Count returns how many values have ever been offered to Add, which may
// exceed the sample's length once the reservoir has filled.
func (rs *ReservoirSampler) Count() int64 {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.seen
}

// Reset empties the reservoir, keeping its allocated capacity.
func (rs *ReservoirSampler) Reset() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.sample = rs.sample[:0]
	rs.seen = 0
}
