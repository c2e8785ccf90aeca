package outcome

import (
	"testing"
	"time"

	"github.com/adaptive/scheduler/internal/config"
	"github.com/adaptive/scheduler/internal/core/domain"
	"github.com/adaptive/scheduler/internal/logger"
	"github.com/adaptive/scheduler/internal/registry"
	"github.com/adaptive/scheduler/internal/scoring"
	"github.com/adaptive/scheduler/internal/store"
)

func testRecorder(t *testing.T) (*Recorder, *registry.Registry) {
	t.Helper()
	cfg := config.DefaultConfig()
	reg := registry.New(cfg.Tuning)
	samples := store.NewSampleStore(store.DefaultCapacity)
	avail := store.NewAvailabilityTracker()
	qs := scoring.NewQualityScorer(cfg.Tuning)
	ps := scoring.NewPredictiveScorer()
	base, _, err := logger.New(&logger.Config{Level: "error", Theme: "default"})
	if err != nil {
		t.Fatalf("unexpected error constructing logger: %v", err)
	}
	log := logger.NewStyled(base)

	r := NewRecorder(cfg.Tuning, reg, samples, avail, qs, ps, log)
	reg.Upsert(&domain.Endpoint{ID: "ep-1", Name: "primary", Quality: 50})
	return r, reg
}

func TestRecorderSetsCooldownOnSuccess(t *testing.T) {
	r, reg := testRecorder(t)
	now := time.Now()

	res := r.Record(domain.Outcome{EndpointID: "ep-1", Success: true, Latency: 100, Bytes: 1000}, now)
	if res.EmergencyFailover {
		t.Fatal("did not expect emergency failover on success")
	}

	ep, _ := reg.Get("ep-1")
	if !ep.InCooldown(now) {
		t.Fatal("expected cooldown to be set after a recorded outcome")
	}
}

func TestRecorderEmergencyFailoverOnSustainedHardFails(t *testing.T) {
	r, reg := testRecorder(t)
	now := time.Now()

	for i := 0; i < 3; i++ {
		r.Record(domain.Outcome{EndpointID: "ep-1", Success: false, HardFail: true, Latency: 5000}, now)
	}
	res := r.Record(domain.Outcome{EndpointID: "ep-1", Success: false, HardFail: true, Latency: 5000}, now)
	if !res.EmergencyFailover {
		t.Fatal("expected emergency failover after a sustained hard-fail streak")
	}

	ep, _ := reg.Get("ep-1")
	if ep.InCooldown(now) {
		t.Fatal("expected cooldown to be cleared on emergency failover")
	}
}

func TestRecorderUnknownEndpointIsNoop(t *testing.T) {
	r, _ := testRecorder(t)
	res := r.Record(domain.Outcome{EndpointID: "nope", Success: true}, time.Now())
	if res.EmergencyFailover {
		t.Fatal("unexpected emergency failover for an unknown endpoint")
	}
}

func TestRecorderQualityDropsOnRepeatedFailure(t *testing.T) {
	r, reg := testRecorder(t)
	now := time.Now()

	before, _ := reg.Get("ep-1")
	startQuality := before.Quality

	for i := 0; i < 5; i++ {
		r.Record(domain.Outcome{EndpointID: "ep-1", Success: false, HardFail: false, Latency: 4000}, now)
	}

	after, _ := reg.Get("ep-1")
	if after.Quality >= startQuality {
		t.Fatalf("expected quality to drop after repeated failures, started %f ended %f", startQuality, after.Quality)
	}
}
