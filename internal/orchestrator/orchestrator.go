// Package orchestrator wires every component into a running scheduler, with
// a New/Start/Stop lifecycle and pkg/eventbus pub/sub for reactive signals.
// There are no periodic timers here beyond the probe Scheduler's own
// due-time heap: config reload, network-online, and evaluation-completed
// are all event-driven.
package orchestrator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/adaptive/scheduler/internal/config"
	"github.com/adaptive/scheduler/internal/core/domain"
	"github.com/adaptive/scheduler/internal/core/ports"
	"github.com/adaptive/scheduler/internal/dispatch"
	"github.com/adaptive/scheduler/internal/geo"
	"github.com/adaptive/scheduler/internal/logger"
	"github.com/adaptive/scheduler/internal/outcome"
	"github.com/adaptive/scheduler/internal/probe"
	"github.com/adaptive/scheduler/internal/registry"
	"github.com/adaptive/scheduler/internal/scoring"
	"github.com/adaptive/scheduler/internal/selector"
	"github.com/adaptive/scheduler/internal/stats"
	"github.com/adaptive/scheduler/internal/store"
	"github.com/adaptive/scheduler/internal/util"
	"github.com/adaptive/scheduler/pkg/container"
	"github.com/adaptive/scheduler/pkg/eventbus"
)

// Signal is published on the Orchestrator's reactive event bus, which hosts
// reach through Subscribe; Kind distinguishes the reactive signals it publishes.
type Signal struct {
	Kind string
	At   time.Time
}

const (
	SignalConfigChanged       = "config_changed"
	SignalNetworkOnline       = "network_online"
	SignalEvaluationCompleted = "evaluation_completed"
)

// Orchestrator owns every collaborator's lifecycle and is the single entry
// point a host embeds: Dispatch for outbound requests, RecordOutcome once
// they complete.
type Orchestrator struct {
	cfg config.Config
	log *logger.StyledLogger

	registry     *registry.Registry
	samples      *store.SampleStore
	availability *store.AvailabilityTracker
	selector     *selector.Selector
	dispatcher   *dispatch.Dispatcher
	recorder     *outcome.Recorder
	quality      *scoring.QualityScorer

	client     *probe.Client
	tracker    *probe.StatusTransitionTracker
	workerPool *probe.WorkerPool
	scheduler  *probe.Scheduler

	storage ports.Storage

	signals *eventbus.EventBus[Signal]

	stopOnce sync.Once
	cancel   context.CancelFunc
}

// New builds an Orchestrator from config and the host-supplied collaborator
// implementations. httpClient and storage may be nil to disable HTTP
// probing and persistence respectively.
func New(cfg config.Config, log *logger.StyledLogger, httpClient ports.HTTPClient, storage ports.Storage, geoResolver ports.GeoResolver) (*Orchestrator, error) {
	reg := registry.New(cfg.Tuning)
	samples := store.NewSampleStore(cfg.Tuning.SampleWindowSize)
	availability := store.NewAvailabilityTracker()
	sel := selector.New(cfg.Tuning, availability)
	resolver := geo.New(geoResolver, geoExternalAllowed(cfg.Privacy.GeoExternalLookup), cfg.Tuning.GeoCacheTTL)

	d, err := dispatch.New(cfg, reg, sel, samples, availability, resolver)
	if err != nil {
		return nil, err
	}

	qs := scoring.NewQualityScorer(cfg.Tuning)
	ps := scoring.NewPredictiveScorer()
	rec := outcome.NewRecorder(cfg.Tuning, reg, samples, availability, qs, ps, log)

	cb := probe.NewCircuitBreaker()
	client := probe.NewClient(httpClient, cb, cfg.Tuning.ProbeTimeout)
	tracker := probe.NewStatusTransitionTracker()

	o := &Orchestrator{
		cfg:          cfg,
		log:          log,
		registry:     reg,
		samples:      samples,
		availability: availability,
		selector:     sel,
		dispatcher:   d,
		recorder:     rec,
		quality:      qs,
		client:       client,
		tracker:      tracker,
		storage:      storage,
		signals:      eventbus.New[Signal](),
	}

	pool := probe.NewWorkerPool(client, tracker, log, probe.DefaultQueueSize, o.onProbeResult)
	o.workerPool = pool
	o.scheduler = probe.NewScheduler(pool.JobChannel())

	for _, ec := range cfg.Endpoints {
		ec := ec
		if err := ec.Validate(); err != nil {
			log.Warn("rejecting invalid endpoint config", "id", ec.ID, "name", ec.Name, "error", err)
			continue
		}
		reg.Upsert(endpointFromConfig(ec))
	}

	return o, nil
}

// geoExternalAllowed honours an explicit operator choice; left unset, it
// defaults off inside a container, where outbound GeoIP lookups are
// frequently blocked by egress policy, and on everywhere else.
func geoExternalAllowed(explicit *bool) bool {
	if explicit != nil {
		return *explicit
	}
	return !container.IsContainerised()
}

func endpointFromConfig(ec config.EndpointConfig) *domain.Endpoint {
	host, port := splitHostPort(ec.Server)
	return &domain.Endpoint{
		ID:       ec.ID,
		Name:     ec.Name,
		Host:     host,
		Port:     port,
		Protocol: ec.Type,
		ProbeURL: resolveProbeURL(ec),
		Quality:  50,
	}
}

// resolveProbeURL lets config specify either an absolute probe URL or just
// a path ("/healthz") to append to the endpoint's own address, so operators
// don't have to repeat scheme+host+port for every endpoint that shares a
// common health-check path.
func resolveProbeURL(ec config.EndpointConfig) string {
	if ec.ProbeURL == "" || strings.Contains(ec.ProbeURL, "://") {
		return ec.ProbeURL
	}
	scheme := "http"
	if ec.Type == "https" || ec.Type == "tls" {
		scheme = "https"
	}
	base := util.NormaliseBaseURL(scheme + "://" + ec.Server)
	return util.JoinURLPath(base, ec.ProbeURL)
}

// Start loads any persisted sample snapshot, preheats the configured
// endpoints, and launches the scheduler and worker pool. It returns once
// preheat completes; ongoing probing continues in the background until Stop.
func (o *Orchestrator) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	o.loadPersisted(runCtx)

	endpoints := o.registry.All()
	probe.Preheat(runCtx, o.client, endpoints, o.cfg.Tuning.PreheatCount, o.cfg.Tuning.PreheatConcurrency, o.onProbeResult)

	o.workerPool.Start(runCtx, o.cfg.Tuning.ConcurrencyLimit)
	o.scheduler.Start(runCtx)

	now := time.Now()
	for _, ep := range endpoints {
		o.scheduler.Schedule(ep, now)
	}

	o.log.InfoWithCount("orchestrator started", "endpoints", len(endpoints))
	o.signals.Publish(Signal{Kind: SignalNetworkOnline, At: now})
	return nil
}

// Stop drains the worker pool and scheduler, then persists a final snapshot.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.stopOnce.Do(func() {
		if o.cancel != nil {
			o.cancel()
		}
		o.scheduler.Stop()
		o.workerPool.Stop()
	})
	return o.persist(ctx)
}

// Dispatch classifies and routes req to the best current endpoint. It
// errors only when direct fallback is disabled in config and no proxy
// endpoint survived selection.
func (o *Orchestrator) Dispatch(ctx context.Context, req domain.RequestContext) (domain.Decision, error) {
	return o.dispatcher.Dispatch(ctx, req, time.Now())
}

// RecordOutcome folds a completed request's outcome back into scoring and,
// on sustained hard failure, triggers an immediate reschedule instead of
// waiting for the endpoint's normal cooldown to expire.
func (o *Orchestrator) RecordOutcome(out domain.Outcome) {
	res := o.recorder.Record(out, time.Now())
	if res.EmergencyFailover {
		if ep, err := o.registry.Get(out.EndpointID); err == nil {
			o.scheduler.Schedule(ep, time.Now())
		}
	}
	o.signals.Publish(Signal{Kind: SignalEvaluationCompleted, At: time.Now()})
}

// Reevaluate reschedules every known endpoint for an immediate probe; call
// this from a host-driven config-changed or network-online handler.
func (o *Orchestrator) Reevaluate(kind string) {
	now := time.Now()
	for _, ep := range o.registry.All() {
		o.scheduler.Schedule(ep, now)
	}
	o.signals.Publish(Signal{Kind: kind, At: now})
}

// Endpoints returns a snapshot of every registered endpoint, for CLI/TUI
// reporting. Callers must not mutate fields directly.
func (o *Orchestrator) Endpoints() []*domain.Endpoint {
	return o.registry.All()
}

// CurrentEndpoint returns the id of the endpoint most recently handed out
// by Dispatch, for CLI/TUI highlighting.
func (o *Orchestrator) CurrentEndpoint() (string, bool) {
	return o.registry.CurrentEndpoint()
}

// Subscribe exposes the Orchestrator's reactive signal bus to the host.
func (o *Orchestrator) Subscribe(ctx context.Context) (<-chan Signal, func()) {
	return o.signals.Subscribe(ctx)
}

func (o *Orchestrator) onProbeResult(ep *domain.Endpoint, res probe.Result, sample domain.Sample) {
	if !res.Success {
		o.log.ErrorWithEndpoint("probe failed", ep.ID, ep.Name, res.Err)
	}

	o.samples.Record(ep.ID, sample.LatencyMs, sample.JitterMs, sample.LossRate, sample.Bps)
	o.availability.Record(ep.ID, sample.Success, sample.HardFail)

	p50, p95, p99 := o.samples.Percentiles(ep.ID)
	o.log.InfoWithNumbers("probe sample recorded", map[string]float64{
		"latency_ms":     sample.LatencyMs,
		"jitter_ms":      sample.JitterMs,
		"loss_rate":      sample.LossRate,
		"latency_p50_ms": float64(p50),
		"latency_p95_ms": float64(p95),
		"latency_p99_ms": float64(p99),
	})

	before := ep.Quality
	target := o.quality.Composite(
		stats.WeightedMean(o.samples.Latencies(ep.ID)),
		stats.WeightedMean(o.samples.Jitters(ep.ID)),
		stats.WeightedMean(o.samples.LossRates(ep.ID)),
		stats.WeightedMean(o.samples.Throughputs(ep.ID)),
	)
	newQuality := scoring.UpdateQuality(ep.Quality, target)
	o.registry.UpdateQuality(ep.ID, newQuality, time.Now())
	o.log.InfoQualityChange(ep.ID, ep.Name, before, newQuality)

	o.registry.SetCooldown(ep.ID, time.Now())

	next := time.Now().Add(o.cfg.Tuning.CooldownBase)
	if updated, err := o.registry.Get(ep.ID); err == nil {
		next = updated.CooldownUntil
	}
	o.log.InfoCooldown(ep.ID, ep.Name, next.Sub(time.Now()).Seconds())
	o.scheduler.Schedule(ep, next)
}
