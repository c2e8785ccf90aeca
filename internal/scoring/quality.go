// Package scoring turns raw samples into the two numbers the rest of the
// scheduler acts on: an endpoint's slow-moving Quality EMA (QualityScorer)
// and a fast per-request risk adjustment (PredictiveScorer).
package scoring

import (
	"math"

	"github.com/adaptive/scheduler/internal/config"
)

// QualityScorer computes a deterministic composite score from the latest
// rolling-window readings and folds it into an endpoint's quality EMA with
// a bounded per-update delta, so one bad sample can't crater a previously
// good endpoint's ranking in a single step.
//
// The four sub-scores are fixed arithmetic, not tuning-driven ratios: the
// caps and weights below are load-bearing constants from the composite
// formula itself, not operator knobs.
type QualityScorer struct {
	tuning config.TuningConfig
}

func NewQualityScorer(tuning config.TuningConfig) *QualityScorer {
	return &QualityScorer{tuning: tuning}
}

// MaxDelta bounds how far a single update can move an endpoint's quality.
const MaxDelta = 20.0

// Composite computes the raw [0,100] quality score from averaged window
// readings by summing four independently-clamped sub-scores:
//
//	latencyScore    = clamp(35 - clamp(latency,0,3000)/25, 0, 35)    // 0 at 875ms
//	jitterScore     = clamp(25 - clamp(jitter,0,500), 0, 25)         // 0 at 25ms
//	lossScore       = clamp(25*(1-clamp(loss,0,1)), 0, 25)
//	throughputScore = clamp(round(log10(1+clamp(bps,0,50e6))*2), 0, 15)
func (q *QualityScorer) Composite(avgLatencyMs, avgJitterMs, avgLossRate, avgBps float64) float64 {
	latencyScore := clamp(35-clamp(avgLatencyMs, 0, 3000)/25, 0, 35)
	jitterScore := clamp(25-clamp(avgJitterMs, 0, 500), 0, 25)
	lossScore := clamp(25*(1-clamp(avgLossRate, 0, 1)), 0, 25)
	throughputScore := clamp(math.Round(math.Log10(1+clamp(avgBps, 0, 50_000_000))*2), 0, 15)

	return clamp(latencyScore+jitterScore+lossScore+throughputScore, 0, 100)
}

// UpdateQuality moves previousQuality toward target by at most MaxDelta and
// returns the new, clamped-to-[0,100] quality.
func UpdateQuality(previousQuality, target float64) float64 {
	delta := target - previousQuality
	if delta > MaxDelta {
		delta = MaxDelta
	} else if delta < -MaxDelta {
		delta = -MaxDelta
	}
	return clamp(previousQuality+delta, 0, 100)
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
