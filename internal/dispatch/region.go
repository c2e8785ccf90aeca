package dispatch

import (
	"regexp"

	"github.com/adaptive/scheduler/internal/config"
	"github.com/adaptive/scheduler/internal/core/domain"
)

// regionMatcher holds the compiled, ordered region table from config; the
// first entry whose regex matches an endpoint's name or resolved country
// wins. Overlapping region patterns resolve in favour of config order.
type regionMatcher struct {
	entries []compiledRegion
}

type compiledRegion struct {
	name string
	re   *regexp.Regexp
}

func newRegionMatcher(regions []config.RegionConfig) (*regionMatcher, error) {
	entries := make([]compiledRegion, 0, len(regions))
	for _, rc := range regions {
		re, err := regexp.Compile(rc.Regex)
		if err != nil {
			return nil, err
		}
		entries = append(entries, compiledRegion{name: rc.Name, re: re})
	}
	return &regionMatcher{entries: entries}, nil
}

// regionOf returns the name of the first matching region for an endpoint,
// checking its Name and, if resolved, its Geo.Country — or "" if none match.
func (m *regionMatcher) regionOf(ep *domain.Endpoint) string {
	for _, e := range m.entries {
		if e.re.MatchString(ep.Name) {
			return e.name
		}
		if ep.Geo != nil && e.re.MatchString(ep.Geo.Country) {
			return e.name
		}
	}
	return ""
}

// preferredSubset narrows candidates to those sharing the destination's
// region, falling back to the full set when the target's region is unknown
// or no endpoint matches it — a region preference should never starve
// selection.
func preferredSubset(m *regionMatcher, candidates []*domain.Endpoint, targetGeo *domain.GeoTag) []*domain.Endpoint {
	if targetGeo == nil {
		return candidates
	}
	targetRegion := m.regionOf(&domain.Endpoint{Geo: targetGeo})
	if targetRegion == "" {
		return candidates
	}

	subset := make([]*domain.Endpoint, 0, len(candidates))
	for _, ep := range candidates {
		if m.regionOf(ep) == targetRegion {
			subset = append(subset, ep)
		}
	}
	if len(subset) == 0 {
		return candidates
	}
	return subset
}
