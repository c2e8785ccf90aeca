// Package outcome implements the Outcome Recorder: it turns a
// host-reported request Outcome into sample/availability bookkeeping, a
// predictive quality nudge, and — on a sustained hard-failure streak — an
// emergency failover that clears cooldown and asks for an immediate
// reselect instead of waiting out the endpoint's normal cooldown window.
package outcome

import (
	"time"

	"github.com/adaptive/scheduler/internal/config"
	"github.com/adaptive/scheduler/internal/core/domain"
	"github.com/adaptive/scheduler/internal/logger"
	"github.com/adaptive/scheduler/internal/registry"
	"github.com/adaptive/scheduler/internal/scoring"
	"github.com/adaptive/scheduler/internal/stats"
	"github.com/adaptive/scheduler/internal/store"
)

// Recorder wires a reported Outcome into the endpoint's accumulated state.
type Recorder struct {
	tuning       config.TuningConfig
	registry     *registry.Registry
	samples      *store.SampleStore
	availability *store.AvailabilityTracker
	quality      *scoring.QualityScorer
	predictive   *scoring.PredictiveScorer
	log          *logger.StyledLogger

	lastLatency map[string]time.Duration // previous latency per endpoint, used for instantaneous jitter
}

func NewRecorder(
	tuning config.TuningConfig,
	reg *registry.Registry,
	samples *store.SampleStore,
	availability *store.AvailabilityTracker,
	quality *scoring.QualityScorer,
	predictive *scoring.PredictiveScorer,
	log *logger.StyledLogger,
) *Recorder {
	return &Recorder{
		tuning:       tuning,
		registry:     reg,
		samples:      samples,
		availability: availability,
		quality:      quality,
		predictive:   predictive,
		log:          log,
		lastLatency:  make(map[string]time.Duration),
	}
}

// Result describes what the Recorder did with an Outcome, so the caller
// (Orchestrator) knows whether an immediate reselect is warranted.
type Result struct {
	EmergencyFailover bool
}

// Record folds a reported Outcome into sample storage, availability
// tracking, and the endpoint's quality, then applies a normal cooldown or
// emergency-failover rule.
func (r *Recorder) Record(out domain.Outcome, now time.Time) Result {
	ep, err := r.registry.Get(out.EndpointID)
	if err != nil {
		r.log.Warn("outcome for unknown endpoint", "endpoint_id", out.EndpointID)
		return Result{}
	}

	latencyMs := float64(out.Latency)
	sample := domain.SampleFromOutcome(time.Duration(out.Latency)*time.Millisecond, out.Bytes, out.Success, out.HardFail)
	sample.JitterMs = r.jitterSince(out.EndpointID, latencyMs)
	sample.LossRate = lossRateFor(out.Success)
	sample.Bps = bpsFor(out.Bytes, out.Latency)

	r.samples.Record(out.EndpointID, sample.LatencyMs, sample.JitterMs, sample.LossRate, sample.Bps)
	r.availability.Record(out.EndpointID, sample.Success, sample.HardFail)

	latencies := r.samples.Latencies(out.EndpointID)
	target := r.quality.Composite(
		stats.WeightedMean(latencies),
		stats.WeightedMean(r.samples.Jitters(out.EndpointID)),
		stats.WeightedMean(r.samples.LossRates(out.EndpointID)),
		stats.WeightedMean(r.samples.Throughputs(out.EndpointID)),
	)
	newQuality := scoring.UpdateQuality(ep.Quality, target)
	r.registry.UpdateQuality(out.EndpointID, newQuality, now)
	ep.LastLatencyMs = latencyMs

	adjustment := r.predictive.Evaluate(scoring.RequestFeatures{
		Success:         out.Success,
		HardFail:        out.HardFail,
		SampleCount:     len(latencies),
		WeightedLatency: stats.WeightedMean(latencies),
		P95Latency:      stats.Percentile(latencies, 95),
		LatencyStdDev:   stats.StdDev(latencies),
		LossRate:        stats.WeightedMean(r.samples.LossRates(out.EndpointID)),
		JitterMs:        stats.WeightedMean(r.samples.Jitters(out.EndpointID)),
		SuccessRate:     r.availability.Rate(out.EndpointID),
		LatencyTrend:    stats.Trend(latencies),
	})
	r.lastLatency[out.EndpointID] = time.Duration(out.Latency) * time.Millisecond

	if adjustment != 0 {
		adjusted := scoring.UpdateQuality(newQuality, clamp(newQuality+float64(adjustment), 0, 100))
		r.registry.UpdateQuality(out.EndpointID, adjusted, now)
	}

	streak := r.availability.Streak(out.EndpointID)
	if out.HardFail && streak >= r.tuning.EmergencyHardFails {
		r.registry.ClearCooldown(out.EndpointID)
		r.log.WarnEmergencyFailover(out.EndpointID, ep.Name, streak)
		return Result{EmergencyFailover: true}
	}

	r.registry.SetCooldown(out.EndpointID, now)
	return Result{}
}

// jitterSince returns the absolute delta between this latency and the
// endpoint's previous one, approximating instantaneous jitter without
// keeping a second rolling window purely for that purpose.
func (r *Recorder) jitterSince(endpointID string, latencyMs float64) float64 {
	prev := r.lastLatency[endpointID]
	if prev == 0 {
		return 0
	}
	delta := latencyMs - float64(prev.Milliseconds())
	if delta < 0 {
		delta = -delta
	}
	return delta
}

func lossRateFor(success bool) float64 {
	if success {
		return 0
	}
	return 1
}

func bpsFor(bytes, latencyMs int64) float64 {
	if latencyMs <= 0 {
		return 0
	}
	return float64(bytes) / (float64(latencyMs) / 1000)
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
