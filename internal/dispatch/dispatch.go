// Package dispatch implements the Dispatcher: it classifies an outbound
// request, resolves client/target geography, narrows candidates to
// the preferred region, asks the Selector for the best survivor, and caches
// the resulting Decision so identical requests skip region narrowing and
// selection until the cache entry expires, as long as the cached endpoint
// is still registered and out of cooldown.
package dispatch

import (
	"context"
	"time"

	"github.com/adaptive/scheduler/internal/cache"
	"github.com/adaptive/scheduler/internal/config"
	"github.com/adaptive/scheduler/internal/core/domain"
	"github.com/adaptive/scheduler/internal/geo"
	"github.com/adaptive/scheduler/internal/registry"
	"github.com/adaptive/scheduler/internal/selector"
	"github.com/adaptive/scheduler/internal/store"
	"github.com/adaptive/scheduler/pkg/pool"
)

// candidateBuf is the scratch slice decide() fills with one selector.Candidate
// per endpoint on every Dispatch call. Pooled because it's rebuilt on every
// cache miss, which on a busy proxy is the majority of requests.
type candidateBuf struct {
	items []selector.Candidate
}

func (b *candidateBuf) Reset() { b.items = b.items[:0] }

// Dispatcher turns a RequestContext into a Decision.
type Dispatcher struct {
	tuning       config.TuningConfig
	classifier   *Classifier
	regions      *regionMatcher
	registry     *registry.Registry
	selector     *selector.Selector
	samples      *store.SampleStore
	availability *store.AvailabilityTracker
	geo          *geo.Resolver
	decisions    *cache.Cache[domain.Decision]
	candidates   *pool.Pool[*candidateBuf]
}

func New(
	cfg config.Config,
	reg *registry.Registry,
	sel *selector.Selector,
	samples *store.SampleStore,
	availability *store.AvailabilityTracker,
	geoResolver *geo.Resolver,
) (*Dispatcher, error) {
	classifier, err := NewClassifier(cfg.Classify)
	if err != nil {
		return nil, err
	}
	regions, err := newRegionMatcher(cfg.Regions)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		tuning:       cfg.Tuning,
		classifier:   classifier,
		regions:      regions,
		registry:     reg,
		selector:     sel,
		samples:      samples,
		availability: availability,
		geo:          geoResolver,
		decisions:    cache.New[domain.Decision](cfg.Tuning.DecisionCacheSize, cfg.Tuning.DecisionCacheTTL),
		candidates:   pool.New(func() *candidateBuf { return &candidateBuf{} }),
	}, nil
}

// decisionCacheKey matches identical requests: the same caller, from the
// same resolved client country, hitting the same destination host.
func decisionCacheKey(req domain.RequestContext, clientGeo *domain.GeoTag) string {
	country := ""
	if clientGeo != nil {
		country = clientGeo.Country
	}
	return req.UserTag + "|" + country + "|" + req.Host
}

// Dispatch classifies req, picks the best candidate endpoint, and returns
// the Decision the host should act on. It only ever errors when the config
// has AllowDirectFallback disabled and no endpoint survives selection — the
// one case where the core refuses to silently send a request direct.
func (d *Dispatcher) Dispatch(ctx context.Context, req domain.RequestContext, now time.Time) (domain.Decision, error) {
	classification := d.classifier.Classify(req)
	targetGeo := d.geo.ResolveHost(ctx, req.Host)
	var clientGeo *domain.GeoTag
	if req.ClientIP != "" {
		clientGeo = d.geo.ResolveIP(ctx, req.ClientIP)
	}

	key := decisionCacheKey(req, clientGeo)
	if cached, ok := d.decisions.Get(key); ok {
		if cached.Endpoint == nil {
			return cached, nil
		}
		if ep, err := d.registry.Get(cached.Endpoint.ID); err == nil && !ep.InCooldown(now) {
			return cached, nil
		}
	}

	candidates := preferredSubset(d.regions, d.registry.All(), targetGeo)

	decision, err := d.decide(candidates, classification, targetGeo, clientGeo, now)
	if err != nil {
		return domain.Decision{}, err
	}
	d.decisions.Set(key, decision)
	return decision, nil
}

func (d *Dispatcher) decide(
	candidates []*domain.Endpoint,
	classification domain.Classification,
	targetGeo, clientGeo *domain.GeoTag,
	now time.Time,
) (domain.Decision, error) {
	if len(candidates) == 0 {
		return d.fallbackOrErr(classification, targetGeo, clientGeo)
	}

	buf := d.candidates.Get()
	defer d.candidates.Put(buf)
	for _, ep := range candidates {
		buf.items = append(buf.items, selector.Candidate{
			Endpoint:    ep,
			MetricScore: metricScore(d.tuning, d.availability, d.samples, classification, ep),
		})
	}

	chosen, ok := d.selector.Select(buf.items, targetGeo, now)
	if !ok {
		return d.fallbackOrErr(classification, targetGeo, clientGeo)
	}
	d.registry.SetCurrent(chosen.ID)

	return domain.Decision{
		Mode: domain.ModeProxy,
		Endpoint: &domain.EndpointDescriptor{
			ID:       chosen.ID,
			Host:     chosen.Host,
			Port:     chosen.Port,
			Protocol: chosen.Protocol,
		},
		TargetGeo:      targetGeo,
		ClientGeo:      clientGeo,
		Classification: classification,
	}, nil
}

func (d *Dispatcher) fallbackOrErr(classification domain.Classification, targetGeo, clientGeo *domain.GeoTag) (domain.Decision, error) {
	if !d.tuning.AllowDirectFallback {
		return domain.Decision{}, domain.NewHostMisuseError("no proxy endpoint available and direct fallback is disabled")
	}
	return directFallback(classification, targetGeo, clientGeo), nil
}

func directFallback(classification domain.Classification, targetGeo, clientGeo *domain.GeoTag) domain.Decision {
	return domain.Decision{
		Mode:           domain.ModeDirect,
		TargetGeo:      targetGeo,
		ClientGeo:      clientGeo,
		Classification: classification,
	}
}
