package selector

import (
	"testing"
	"time"

	"github.com/adaptive/scheduler/internal/config"
	"github.com/adaptive/scheduler/internal/core/domain"
	"github.com/adaptive/scheduler/internal/store"
)

func testTuning() config.TuningConfig {
	return config.DefaultConfig().Tuning
}

func TestSelectorPrefersHigherQuality(t *testing.T) {
	avail := store.NewAvailabilityTracker()
	s := New(testTuning(), avail)

	good := &domain.Endpoint{ID: "good", Quality: 90}
	bad := &domain.Endpoint{ID: "bad", Quality: 20}

	chosen, ok := s.Select([]Candidate{{Endpoint: bad}, {Endpoint: good}}, nil, time.Now())
	if !ok {
		t.Fatal("expected a selection")
	}
	if chosen.ID != "good" {
		t.Fatalf("expected 'good' to win, got %s", chosen.ID)
	}
}

func TestSelectorFiltersCooldown(t *testing.T) {
	avail := store.NewAvailabilityTracker()
	s := New(testTuning(), avail)

	now := time.Now()
	cooling := &domain.Endpoint{ID: "cooling", Quality: 99, CooldownUntil: now.Add(time.Hour)}
	ok1 := &domain.Endpoint{ID: "ok", Quality: 50}

	chosen, ok := s.Select([]Candidate{{Endpoint: cooling}, {Endpoint: ok1}}, nil, now)
	if !ok {
		t.Fatal("expected a selection")
	}
	if chosen.ID != "ok" {
		t.Fatalf("expected the non-cooling endpoint to win, got %s", chosen.ID)
	}
}

func TestSelectorFallsBackWhenAllInCooldown(t *testing.T) {
	avail := store.NewAvailabilityTracker()
	s := New(testTuning(), avail)

	now := time.Now()
	a := &domain.Endpoint{ID: "a", Quality: 80, CooldownUntil: now.Add(time.Hour)}
	b := &domain.Endpoint{ID: "b", Quality: 40, CooldownUntil: now.Add(time.Hour)}

	chosen, ok := s.Select([]Candidate{{Endpoint: a}, {Endpoint: b}}, nil, now)
	if !ok {
		t.Fatal("expected a selection even when every candidate is cooling down")
	}
	if chosen.ID != "a" {
		t.Fatalf("expected the best-quality cooling endpoint to still win, got %s", chosen.ID)
	}
}

func TestSelectorEmptyCandidates(t *testing.T) {
	avail := store.NewAvailabilityTracker()
	s := New(testTuning(), avail)

	_, ok := s.Select(nil, nil, time.Now())
	if ok {
		t.Fatal("expected no selection for an empty candidate set")
	}
}

func TestSelectorAvailabilityBiasPenalisesFlakyEndpoint(t *testing.T) {
	avail := store.NewAvailabilityTracker()
	tuning := testTuning()
	s := New(tuning, avail)

	flaky := &domain.Endpoint{ID: "flaky", Quality: 60}
	for i := 0; i < 10; i++ {
		avail.Record("flaky", i < 2, i >= 2) // 20% success rate
	}
	steady := &domain.Endpoint{ID: "steady", Quality: 55}
	for i := 0; i < 10; i++ {
		avail.Record("steady", true, false)
	}

	chosen, ok := s.Select([]Candidate{{Endpoint: flaky}, {Endpoint: steady}}, nil, time.Now())
	if !ok {
		t.Fatal("expected a selection")
	}
	if chosen.ID != "steady" {
		t.Fatalf("expected the reliable endpoint to beat a slightly-higher-quality flaky one, got %s", chosen.ID)
	}
}

func TestSelectorUntestedEndpointStartsBehindAProvenOne(t *testing.T) {
	avail := store.NewAvailabilityTracker()
	s := New(testTuning(), avail)

	untested := &domain.Endpoint{ID: "untested", Quality: 55}
	proven := &domain.Endpoint{ID: "proven", Quality: 50}
	for i := 0; i < 10; i++ {
		avail.Record("proven", true, false)
	}

	chosen, ok := s.Select([]Candidate{{Endpoint: untested}, {Endpoint: proven}}, nil, time.Now())
	if !ok {
		t.Fatal("expected a selection")
	}
	if chosen.ID != "proven" {
		t.Fatalf("expected the proven endpoint to beat an untested one with no recorded outcomes, got %s", chosen.ID)
	}
}

func TestSelectorDeterministicTieBreak(t *testing.T) {
	avail := store.NewAvailabilityTracker()
	s := New(testTuning(), avail)

	a := &domain.Endpoint{ID: "a", Quality: 50, LastLatencyMs: 100}
	b := &domain.Endpoint{ID: "b", Quality: 50, LastLatencyMs: 50}

	chosen, _ := s.Select([]Candidate{{Endpoint: a}, {Endpoint: b}}, nil, time.Now())
	if chosen.ID != "b" {
		t.Fatalf("expected tie broken by lower latency (b), got %s", chosen.ID)
	}
}

func TestSelectorGeoHintRestrictsToMatchingCandidates(t *testing.T) {
	avail := store.NewAvailabilityTracker()
	s := New(testTuning(), avail)

	near := &domain.Endpoint{ID: "near", Quality: 40, Geo: &domain.GeoTag{Country: "DE"}}
	far := &domain.Endpoint{ID: "far", Quality: 90, Geo: &domain.GeoTag{Country: "US"}}

	hint := &domain.GeoTag{Country: "DE"}
	chosen, ok := s.Select([]Candidate{{Endpoint: far}, {Endpoint: near}}, hint, time.Now())
	if !ok {
		t.Fatal("expected a selection")
	}
	if chosen.ID != "near" {
		t.Fatalf("expected the geo-matching endpoint to win despite lower quality, got %s", chosen.ID)
	}
}

func TestSelectorGeoHintFallsBackWhenNoCandidateMatches(t *testing.T) {
	avail := store.NewAvailabilityTracker()
	s := New(testTuning(), avail)

	a := &domain.Endpoint{ID: "a", Quality: 40, Geo: &domain.GeoTag{Country: "US"}}
	b := &domain.Endpoint{ID: "b", Quality: 90}

	hint := &domain.GeoTag{Country: "DE"}
	chosen, ok := s.Select([]Candidate{{Endpoint: a}, {Endpoint: b}}, hint, time.Now())
	if !ok {
		t.Fatal("expected a selection")
	}
	if chosen.ID != "b" {
		t.Fatalf("expected fallback to the full set when no geo matches, got %s", chosen.ID)
	}
}
