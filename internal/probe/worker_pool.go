package probe

import (
	"context"
	"sync"

	"github.com/adaptive/scheduler/internal/core/domain"
	"github.com/adaptive/scheduler/internal/logger"
)

// ResultHandler is invoked once per completed probe. Implementations
// typically feed the sample into the Sample Store and the quality scorer,
// then reschedule the endpoint.
type ResultHandler func(ep *domain.Endpoint, res Result, sample domain.Sample)

// WorkerPool bounds probe concurrency to the configured limit (the
// concurrency_limit knob) by running a fixed number of goroutines pulling
// from a single job channel: a worker-pool-over-a-channel shape rather
// than an unbounded goroutine-per-probe fan-out.
type WorkerPool struct {
	client  *Client
	tracker *StatusTransitionTracker
	log     *logger.StyledLogger
	jobCh   chan *domain.Endpoint
	stopCh  chan struct{}
	wg      sync.WaitGroup
	onDone  ResultHandler
}

func NewWorkerPool(client *Client, tracker *StatusTransitionTracker, log *logger.StyledLogger, queueSize int, onDone ResultHandler) *WorkerPool {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &WorkerPool{
		client:  client,
		tracker: tracker,
		log:     log,
		jobCh:   make(chan *domain.Endpoint, queueSize),
		stopCh:  make(chan struct{}),
		onDone:  onDone,
	}
}

// JobChannel exposes the send side for the Scheduler to push due endpoints.
func (wp *WorkerPool) JobChannel() chan<- *domain.Endpoint { return wp.jobCh }

func (wp *WorkerPool) Start(ctx context.Context, workerCount int) {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}
	for i := 0; i < workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx)
	}
}

func (wp *WorkerPool) Stop() {
	close(wp.stopCh)
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(ctx context.Context) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.stopCh:
			return
		case <-ctx.Done():
			return
		case ep := <-wp.jobCh:
			wp.process(ctx, ep)
		}
	}
}

func (wp *WorkerPool) process(ctx context.Context, ep *domain.Endpoint) {
	res, sample := wp.client.Probe(ctx, ep)

	shouldLog, errCount := wp.tracker.ShouldLog(ep.ID, ep.Quality, !res.Success)
	if shouldLog && wp.log != nil {
		if res.Success {
			wp.log.InfoWithEndpoint("probe succeeded", ep.ID, ep.Name, "latency_ms", sample.LatencyMs)
		} else {
			wp.log.WarnWithEndpoint("probe failing", ep.ID, ep.Name, "error_count", errCount, "hard_fail", res.HardFail)
		}
	}

	if wp.onDone != nil {
		wp.onDone(ep, res, sample)
	}
}
