package dispatch

import (
	"testing"

	"github.com/adaptive/scheduler/internal/config"
	"github.com/adaptive/scheduler/internal/core/domain"
	"github.com/adaptive/scheduler/internal/store"
)

func testTuning() config.TuningConfig {
	return config.DefaultConfig().Tuning
}

func TestMetricScoreStacksEveryMatchingPreference(t *testing.T) {
	tuning := testTuning()
	avail := store.NewAvailabilityTracker()
	for i := 0; i < 10; i++ {
		avail.Record("ep-1", true, false)
	}
	samples := store.NewSampleStore(store.DefaultCapacity)
	samples.Record("ep-1", 0, 0, 0, 1_000_000)

	ep := &domain.Endpoint{ID: "ep-1"}
	cl := domain.Classification{
		PreferHighThroughput: true,
		PreferLowLatency:     true,
		PreferStability:      true,
	}

	score := metricScore(tuning, avail, samples, cl, ep)

	// neutral(50) + availBonus(10) + throughputBonus(log10(1+1e6)*2 rounded)
	// + latencyBonus(15, since latency 0) - jitterPenalty(0, since jitter 0)
	want := neutralBias + 10 + throughputBonus(1_000_000) + 15 - 0
	if score != want {
		t.Fatalf("expected every matching preference to stack additively, got %f want %f", score, want)
	}
}

func TestMetricScoreAppliesOnlyMatchingPreferences(t *testing.T) {
	tuning := testTuning()
	avail := store.NewAvailabilityTracker()
	samples := store.NewSampleStore(store.DefaultCapacity)
	samples.Record("ep-1", 0, 400, 0, 1_000_000)

	ep := &domain.Endpoint{ID: "ep-1"}
	cl := domain.Classification{PreferHighThroughput: true}

	score := metricScore(tuning, avail, samples, cl, ep)
	want := neutralBias - 30 + throughputBonus(1_000_000)
	if score != want {
		t.Fatalf("expected only the throughput bonus applied, got %f want %f", score, want)
	}
}

func TestThroughputBonusCapsAtTen(t *testing.T) {
	if got := throughputBonus(1e12); got != 10 {
		t.Fatalf("expected throughput bonus capped at 10, got %f", got)
	}
}

func TestLatencyBonusClampedToZeroAtCap(t *testing.T) {
	if got := latencyBonus(1000); got != 0 {
		t.Fatalf("expected latency bonus to floor at 0 for high latency, got %f", got)
	}
	if got := latencyBonus(0); got != 15 {
		t.Fatalf("expected latency bonus of 15 at zero latency, got %f", got)
	}
}

func TestJitterPenaltyCapsAtTen(t *testing.T) {
	if got := jitterPenalty(10000); got != 10 {
		t.Fatalf("expected jitter penalty capped at 10, got %f", got)
	}
}
