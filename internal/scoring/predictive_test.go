package scoring

import "testing"

func TestPredictiveScorerSevereOnHardFailure(t *testing.T) {
	p := NewPredictiveScorer()
	adj := p.Evaluate(RequestFeatures{Success: false, HardFail: true})
	if adj != AdjustSevere {
		t.Fatalf("expected AdjustSevere on a hard failure, got %v", adj)
	}
}

func TestPredictiveScorerSevereOnPlainFailure(t *testing.T) {
	p := NewPredictiveScorer()
	adj := p.Evaluate(RequestFeatures{Success: false, HardFail: false})
	if adj != AdjustSevere {
		t.Fatalf("expected AdjustSevere on any failed outcome, got %v", adj)
	}
}

func TestPredictiveScorerNeutralBelowMinSamples(t *testing.T) {
	p := NewPredictiveScorer()
	adj := p.Evaluate(RequestFeatures{
		Success:         true,
		SampleCount:     MinSamples - 1,
		WeightedLatency: 5000, // would otherwise score as high risk
		LossRate:        1,
	})
	if adj != AdjustNeutral {
		t.Fatalf("expected AdjustNeutral below MinSamples, got %v", adj)
	}
}

func TestPredictiveScorerStrongGoodOnLowRisk(t *testing.T) {
	p := NewPredictiveScorer()
	adj := p.Evaluate(RequestFeatures{
		Success:         true,
		SampleCount:     MinSamples,
		WeightedLatency: 50,
		P95Latency:      60,
		LatencyStdDev:   5,
		LossRate:        0,
		JitterMs:        5,
		SuccessRate:     1.0,
	})
	if adj != AdjustStrongGood {
		t.Fatalf("expected AdjustStrongGood for a clean low-risk window, got %v", adj)
	}
}

func TestPredictiveScorerBadOnHighRisk(t *testing.T) {
	p := NewPredictiveScorer()
	adj := p.Evaluate(RequestFeatures{
		Success:         true,
		SampleCount:     MinSamples,
		WeightedLatency: 2900,
		P95Latency:      3000,
		LatencyStdDev:   400,
		LossRate:        0.8,
		JitterMs:        450,
		SuccessRate:     0.3,
		LatencyTrend:    60,
	})
	if adj != AdjustBad {
		t.Fatalf("expected AdjustBad for a high-risk window, got %v", adj)
	}
}

func TestPredictiveScorerReweightsTowardStabilityWhenShaky(t *testing.T) {
	// Identical latency means and jitter, but a low success rate and a wide
	// latency spread push weight onto jitter/std/successRate and away from
	// raw latency, raising the resulting risk score.
	shaky := RequestFeatures{
		WeightedLatency: 500,
		P95Latency:      600,
		LatencyStdDev:   100,
		LossRate:        0.1,
		JitterMs:        200,
		SuccessRate:     0.5,
	}
	steady := shaky
	steady.SuccessRate = 1.0
	steady.LatencyStdDev = 10

	if riskScore(shaky) <= riskScore(steady) {
		t.Fatalf("expected the shaky profile to score riskier than the steady one: shaky=%f steady=%f",
			riskScore(shaky), riskScore(steady))
	}
}

func TestRiskScoreStaysWithinBounds(t *testing.T) {
	f := RequestFeatures{
		WeightedLatency: 1e9,
		P95Latency:      1e9,
		LatencyStdDev:   1e9,
		LossRate:        100,
		JitterMs:        1e9,
		SuccessRate:     -5,
		LatencyTrend:    1e9,
	}
	if r := riskScore(f); r < 0 || r > 1 {
		t.Fatalf("riskScore out of bounds: %f", r)
	}
}
