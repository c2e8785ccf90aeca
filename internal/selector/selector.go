// Package selector picks the best endpoint from a candidate set using a
// single weighted utility function rather than a strategy-per-algorithm
// factory, since there's only ever one ranking function in play.
package selector

import (
	"sort"
	"time"

	"github.com/adaptive/scheduler/internal/config"
	"github.com/adaptive/scheduler/internal/core/domain"
	"github.com/adaptive/scheduler/internal/store"
)

// Selector ranks endpoints by a weighted composite of quality, a caller-
// supplied per-request metric score, and historical availability.
type Selector struct {
	tuning       config.TuningConfig
	availability *store.AvailabilityTracker
}

func New(tuning config.TuningConfig, availability *store.AvailabilityTracker) *Selector {
	return &Selector{tuning: tuning, availability: availability}
}

// Candidate bundles an endpoint with the request-specific metric score the
// Dispatcher computed for it (e.g. a throughput or latency bias, already in
// [0,100]).
type Candidate struct {
	Endpoint     *domain.Endpoint
	MetricScore  float64
}

// GeoHint narrows Select to endpoints with a matching cached geo, when at
// least one candidate has one. A nil hint, or a hint with an empty Country,
// disables the restriction entirely.
type GeoHint = *domain.GeoTag

// geoSubset restricts candidates to those whose cached Geo matches hint's
// country (and region, when given), returning the full set unchanged if the
// hint is absent or no candidate matches.
func geoSubset(candidates []Candidate, hint GeoHint) []Candidate {
	if hint == nil || hint.Country == "" {
		return candidates
	}

	matched := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		geo := c.Endpoint.Geo
		if geo == nil || geo.Country != hint.Country {
			continue
		}
		if hint.Region != "" && geo.Region != hint.Region {
			continue
		}
		matched = append(matched, c)
	}
	if len(matched) == 0 {
		return candidates
	}
	return matched
}

// utility implements the weighted scoring function:
//
//	U = 0.5*quality + 0.35*metric + 0.15*(rate*100) + availabilityBias
//
// where availabilityBias adds +10 for a well-proven endpoint (rate >= the
// configured minimum) and -30 for one that has fallen below it, so a
// flaky endpoint with an otherwise-decent quality score still loses to a
// consistently reliable one.
func (s *Selector) utility(c Candidate) float64 {
	rate := s.availability.Rate(c.Endpoint.ID)

	bias := 0.0
	if rate >= s.tuning.AvailabilityMinRate {
		bias = 10
	} else {
		bias = -30
	}

	return s.tuning.WeightQuality*c.Endpoint.Quality +
		s.tuning.WeightMetric*c.MetricScore +
		s.tuning.WeightSuccessRate*(rate*100) +
		bias
}

// Select filters out endpoints currently in cooldown, then restricts to a
// target-geo hint if one matches, and returns the highest-utility survivor.
// If every candidate is in cooldown, the filter is dropped entirely and the
// best of the full set is returned instead — serving a degraded endpoint
// beats refusing to serve at all.
func (s *Selector) Select(candidates []Candidate, geoHint GeoHint, now time.Time) (*domain.Endpoint, bool) {
	if len(candidates) == 0 {
		return nil, false
	}

	pool := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !c.Endpoint.InCooldown(now) {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		pool = candidates
	}

	pool = geoSubset(pool, geoHint)

	sort.Slice(pool, func(i, j int) bool {
		ui, uj := s.utility(pool[i]), s.utility(pool[j])
		if ui != uj {
			return ui > uj
		}
		// Deterministic tie-break: higher quality, then lower last-seen
		// latency, then lexicographic id, so repeated ties under
		// identical load always resolve the same way.
		if pool[i].Endpoint.Quality != pool[j].Endpoint.Quality {
			return pool[i].Endpoint.Quality > pool[j].Endpoint.Quality
		}
		if pool[i].Endpoint.LastLatencyMs != pool[j].Endpoint.LastLatencyMs {
			return pool[i].Endpoint.LastLatencyMs < pool[j].Endpoint.LastLatencyMs
		}
		return pool[i].Endpoint.ID < pool[j].Endpoint.ID
	})

	return pool[0].Endpoint, true
}
