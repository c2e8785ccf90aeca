package probe

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/adaptive/scheduler/internal/core/domain"
)

type scheduledProbe struct {
	endpoint *domain.Endpoint
	dueTime  time.Time
}

type probeHeap []*scheduledProbe

func (h probeHeap) Len() int            { return len(h) }
func (h probeHeap) Less(i, j int) bool  { return h[i].dueTime.Before(h[j].dueTime) }
func (h probeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *probeHeap) Push(x interface{}) { *h = append(*h, x.(*scheduledProbe)) }
func (h *probeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// Scheduler drives ongoing probing with a min-heap ordered by due time, so
// endpoints probed more often (or just probed) don't starve ones waiting
// longer. Due probes are pushed onto a bounded job channel consumed by a
// WorkerPool; a full channel reschedules the probe a second out rather than
// blocking the scheduler loop.
type Scheduler struct {
	heap   probeHeap
	mu     sync.Mutex
	jobCh  chan<- *domain.Endpoint
	stopCh chan struct{}
	period time.Duration
}

func NewScheduler(jobCh chan<- *domain.Endpoint) *Scheduler {
	h := probeHeap{}
	heap.Init(&h)
	return &Scheduler{heap: h, jobCh: jobCh, stopCh: make(chan struct{}), period: 100 * time.Millisecond}
}

// Start launches the scheduler's background loop. It returns immediately;
// Stop must be called to release the goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
}

// Schedule queues ep to be probed at dueTime.
func (s *Scheduler) Schedule(ep *domain.Endpoint, dueTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	heap.Push(&s.heap, &scheduledProbe{endpoint: ep, dueTime: dueTime})
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heap.Len()
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			s.processDue(now)
		}
	}
}

func (s *Scheduler) processDue(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.heap.Len() > 0 {
		next := s.heap[0]
		if now.Before(next.dueTime) {
			return
		}
		due := heap.Pop(&s.heap).(*scheduledProbe)

		select {
		case s.jobCh <- due.endpoint:
		default:
			due.dueTime = now.Add(time.Second)
			heap.Push(&s.heap, due)
			return
		}
	}
}

// Preheat probes up to n endpoints with bounded concurrency before the
// scheduler hands control to the host, so the Registry starts with real
// quality numbers instead of every endpoint at its zero-value default.
func Preheat(ctx context.Context, client *Client, endpoints []*domain.Endpoint, n, concurrency int, onResult func(*domain.Endpoint, Result, domain.Sample)) {
	if n > len(endpoints) {
		n = len(endpoints)
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		ep := endpoints[i]
		wg.Add(1)
		sem <- struct{}{}
		go func(ep *domain.Endpoint) {
			defer wg.Done()
			defer func() { <-sem }()
			res, sample := client.Probe(ctx, ep)
			if onResult != nil {
				onResult(ep, res, sample)
			}
		}(ep)
	}

	wg.Wait()
}
