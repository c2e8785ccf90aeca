package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPoolStressConcurrentPublishers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}
	eb := New[string]()
	ch, cleanup := eb.Subscribe(context.Background())
	defer cleanup()
	defer eb.Shutdown()

	var published, received atomic.Int64
	seen := map[string]bool{}
	var mu sync.Mutex

	const publishers = 10
	const perPublisher = 100

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event := <-ch:
				received.Add(1)
				mu.Lock()
				seen[event] = true
				mu.Unlock()
			case <-done:
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for p := 0; p < publishers; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perPublisher; i++ {
				eb.PublishAsync(string(rune('A'+id)) + string(rune('0'+i)))
				published.Add(1)
			}
		}(p)
	}
	wg.Wait()

	time.Sleep(500 * time.Millisecond)
	close(done)
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	unique := len(seen)
	mu.Unlock()

	total := int64(publishers * perPublisher)
	t.Logf("published=%d received=%d unique=%d", published.Load(), received.Load(), unique)

	minExpected := int64(float64(total) * 0.3)
	if received.Load() < minExpected {
		t.Errorf("expected at least %d of %d events delivered under stress, got %d", minExpected, total, received.Load())
	}
}

func TestEventBusHighVolumePublishing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping high volume test in short mode")
	}
	bus := New[int]()
	defer bus.Shutdown()

	ch, cleanup := bus.Subscribe(context.Background())
	defer cleanup()

	var received atomic.Int64
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				received.Add(1)
			case <-done:
				return
			}
		}
	}()

	const total = 100000
	start := time.Now()
	for i := 0; i < total; i++ {
		bus.PublishAsync(i)
	}
	elapsed := time.Since(start)

	time.Sleep(2 * time.Second)
	close(done)

	t.Logf("published %d events in %v (%.0f events/sec), received %d (%.2f%%)",
		total, elapsed, float64(total)/elapsed.Seconds(), received.Load(), float64(received.Load())/float64(total)*100)

	if received.Load() < 1000 {
		t.Errorf("expected at least 1000 of %d events received, got %d", total, received.Load())
	}
}

func TestEventBusManyConcurrentSubscribers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping concurrent subscribers test in short mode")
	}
	bus := New[int]()
	defer bus.Shutdown()

	ctx := context.Background()
	const subscribers = 50
	const events = 1000

	var totalReceived atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < subscribers; i++ {
		ch, cleanup := bus.Subscribe(ctx)
		defer cleanup()

		wg.Add(1)
		go func() {
			defer wg.Done()
			count := 0
			for range ch {
				count++
				if count >= events/10 {
					break
				}
			}
			totalReceived.Add(int64(count))
		}()
	}

	start := time.Now()
	for i := 0; i < events; i++ {
		delivered := bus.Publish(i)
		if delivered < subscribers/2 {
			t.Logf("only delivered to %d/%d subscribers at event %d", delivered, subscribers, i)
		}
	}
	elapsed := time.Since(start)

	bus.Shutdown()
	wg.Wait()

	avg := float64(totalReceived.Load()) / float64(subscribers)
	t.Logf("published %d events to %d subscribers in %v, avg received per subscriber %.0f, total %d",
		events, subscribers, elapsed, avg, totalReceived.Load())

	if avg < 10 {
		t.Errorf("expected subscribers to receive more events on average, got %.0f", avg)
	}
}
