// Package registry holds the live set of configured endpoints and their
// mutable state (quality, cooldown, geo tag) in a map+RWMutex-backed
// in-memory repository.
package registry

import (
	"sync"
	"time"

	"github.com/adaptive/scheduler/internal/config"
	"github.com/adaptive/scheduler/internal/core/domain"
)

// Registry is the single source of truth for endpoint identity and state.
// All mutation goes through its methods so the EMA-clamp and bounded-
// history invariants in domain.Endpoint are never bypassed.
type Registry struct {
	mu      sync.RWMutex
	byID    map[string]*domain.Endpoint
	order   []string // stable iteration order, insertion order
	tuning  config.TuningConfig
	current string // id of the endpoint currently favoured by the caller, if pinned
}

func New(tuning config.TuningConfig) *Registry {
	return &Registry{
		byID:   make(map[string]*domain.Endpoint),
		tuning: tuning,
	}
}

// Upsert adds ep, or replaces the mutable identity fields of an existing
// entry with the same ID while preserving its accumulated Quality/History/
// CooldownUntil — a config reload shouldn't reset an endpoint's track
// record just because its probe URL changed.
func (r *Registry) Upsert(ep *domain.Endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byID[ep.ID]; ok {
		existing.Name = ep.Name
		existing.Host = ep.Host
		existing.Port = ep.Port
		existing.Protocol = ep.Protocol
		existing.ProbeURL = ep.ProbeURL
		return
	}

	r.byID[ep.ID] = ep
	r.order = append(r.order, ep.ID)
}

// Remove drops an endpoint entirely, e.g. after it disappears from config.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns the endpoint with the given id, or ErrEndpointNotFound.
func (r *Registry) Get(id string) (*domain.Endpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ep, ok := r.byID[id]
	if !ok {
		return nil, &domain.ErrEndpointNotFound{ID: id}
	}
	return ep, nil
}

// All returns every registered endpoint in stable insertion order. The
// returned slice shares endpoint pointers with the registry; callers must
// not mutate fields directly except through Registry's own methods.
func (r *Registry) All() []*domain.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Endpoint, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// UpdateQuality sets an endpoint's quality to newQuality (already clamped
// and delta-bounded by the caller's scorer) and appends a history record.
func (r *Registry) UpdateQuality(id string, newQuality float64, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ep, ok := r.byID[id]
	if !ok {
		return
	}
	ep.Quality = newQuality
	ep.LastEvaluated = at
	ep.History = append(ep.History, domain.ScoreRecord{Timestamp: at, Score: newQuality})
	if len(ep.History) > domain.HistoryCapacity {
		ep.History = ep.History[len(ep.History)-domain.HistoryCapacity:]
	}
}

// cooldownDuration computes a cooldown where the better an endpoint's
// quality, the longer its cooldown, bounded to [floor, ceil].
//
//	base * (1 + (score/100) * 0.9), clamped to [floor, ceil]
func cooldownDuration(tuning config.TuningConfig, quality float64) time.Duration {
	d := time.Duration(float64(tuning.CooldownBase) * (1 + (quality/100)*0.9))
	if d < tuning.CooldownFloor {
		return tuning.CooldownFloor
	}
	if d > tuning.CooldownCeil {
		return tuning.CooldownCeil
	}
	return d
}

// SetCooldown puts an endpoint into cooldown for a duration derived from
// its current quality.
func (r *Registry) SetCooldown(id string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ep, ok := r.byID[id]
	if !ok {
		return
	}
	ep.CooldownUntil = now.Add(cooldownDuration(r.tuning, ep.Quality))
}

// ClearCooldown lifts an endpoint's cooldown immediately, used by the
// emergency-failover path in the Outcome Recorder.
func (r *Registry) ClearCooldown(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ep, ok := r.byID[id]; ok {
		ep.CooldownUntil = time.Time{}
	}
}

// CurrentEndpoint returns the id of the endpoint the caller last pinned as
// "current", if any.
func (r *Registry) CurrentEndpoint() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, r.current != ""
}

func (r *Registry) SetCurrent(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = id
}

// Cleanup removes endpoints that have either gone stale (no evaluation in
// staleAfter) or sunk below lowWaterQuality — either condition alone is
// enough, since a long-silent endpoint is exactly as uninteresting as a
// consistently bad one. It returns the ids removed this pass.
func (r *Registry) Cleanup(now time.Time, staleAfter time.Duration, lowWaterQuality float64) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for id, ep := range r.byID {
		if ep.LastEvaluated.IsZero() {
			continue
		}

		stale := now.Sub(ep.LastEvaluated) >= staleAfter
		belowLowWater := ep.Quality < lowWaterQuality
		if !stale && !belowLowWater {
			continue
		}

		delete(r.byID, id)
		removed = append(removed, id)
	}

	if len(removed) == 0 {
		return removed
	}
	removedSet := make(map[string]struct{}, len(removed))
	for _, id := range removed {
		removedSet[id] = struct{}{}
	}
	kept := r.order[:0:0]
	for _, id := range r.order {
		if _, gone := removedSet[id]; !gone {
			kept = append(kept, id)
		}
	}
	r.order = kept

	if _, ok := r.byID[r.current]; !ok {
		r.current = ""
	}

	return removed
}
