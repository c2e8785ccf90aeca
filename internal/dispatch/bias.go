package dispatch

import (
	"math"

	"github.com/adaptive/scheduler/internal/config"
	"github.com/adaptive/scheduler/internal/core/domain"
	"github.com/adaptive/scheduler/internal/store"
)

// neutralBias is the starting point every candidate's bias is built from
// before request-class bonuses and penalties are applied.
const neutralBias = 50.0

// metricScore derives the per-request metric component the Selector mixes
// into its utility function: a bias built additively from an endpoint's
// availability and, independently, every request-class preference it
// matches — a request can be latency-sensitive AND stability-sensitive at
// once, so these terms stack rather than picking one branch of a switch.
//
//	bias = neutral + availBonus + throughputBonus(if preferHighThroughput)
//	     + latencyBonus(if preferLowLatency) - jitterPenalty(if preferStability)
func metricScore(tuning config.TuningConfig, availability *store.AvailabilityTracker, samples *store.SampleStore, cl domain.Classification, ep *domain.Endpoint) float64 {
	bias := neutralBias + availBonus(tuning, availability, ep.ID)

	if cl.PreferHighThroughput {
		bias += throughputBonus(latest(samples.Throughputs(ep.ID)))
	}
	if cl.PreferLowLatency {
		bias += latencyBonus(latest(samples.Latencies(ep.ID)))
	}
	if cl.PreferStability {
		bias -= jitterPenalty(latest(samples.Jitters(ep.ID)))
	}

	return bias
}

// availBonus rewards an endpoint with a proven track record and penalises
// one that has fallen below the configured minimum rate, mirroring the
// Selector's own availability bias so a request-class-biased candidate
// doesn't get to ignore reliability entirely.
func availBonus(tuning config.TuningConfig, availability *store.AvailabilityTracker, endpointID string) float64 {
	if availability.Rate(endpointID) >= tuning.AvailabilityMinRate {
		return 10
	}
	return -30
}

// throughputBonus = min(10, round(log10(1+bps)*2)).
func throughputBonus(bps float64) float64 {
	if bps < 0 {
		bps = 0
	}
	return math.Min(10, math.Round(math.Log10(1+bps)*2))
}

// latencyBonus = clamp(15 - latency/30, 0, 15).
func latencyBonus(latencyMs float64) float64 {
	return clamp(15-latencyMs/30, 0, 15)
}

// jitterPenalty = min(10, round(jitter/50)).
func jitterPenalty(jitterMs float64) float64 {
	if jitterMs < 0 {
		jitterMs = 0
	}
	return math.Min(10, math.Round(jitterMs/50))
}

// latest returns the most recent sample in a series, or 0 if empty.
func latest(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
