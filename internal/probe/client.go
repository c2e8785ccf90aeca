package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/adaptive/scheduler/internal/core/domain"
	"github.com/adaptive/scheduler/internal/core/ports"
	"github.com/adaptive/scheduler/internal/util"
	"github.com/adaptive/scheduler/internal/version"
)

// Client performs a single probe against an endpoint: a TCP connect to
// measure raw reachability/latency, followed by an HTTP GET against the
// endpoint's configured probe URL if one is set. Retries follow an
// exponential backoff; a circuit breaker shortcuts endpoints that are
// currently failing hard.
type Client struct {
	http           ports.HTTPClient
	circuitBreaker *CircuitBreaker
	timeout        time.Duration
	maxRetries     int
}

func NewClient(httpClient ports.HTTPClient, cb *CircuitBreaker, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Client{
		http:           httpClient,
		circuitBreaker: cb,
		timeout:        timeout,
		maxRetries:     DefaultMaxRetries,
	}
}

// Probe runs the full retry loop against a single endpoint and returns a
// Result plus the domain.Sample built from it. If every attempt fails with a
// retryable error, the caller receives a Simulated hard-failure sample in
// place of the last attempt's reading, so the scorer still has something to
// integrate and the endpoint doesn't freeze at its last known quality forever.
func (c *Client) Probe(ctx context.Context, ep *domain.Endpoint) (Result, domain.Sample) {
	if c.circuitBreaker.IsOpen(ep.ID) {
		return c.simulatedResult(ep, ErrCircuitBreakerOpen)
	}

	var last Result
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := util.CalculateExponentialBackoff(attempt, DefaultBaseDelay, MaxBackoffDelay, 0.25)
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return c.simulatedResult(ep, ctx.Err())
			}
		}

		last = c.attempt(ctx, ep)
		if last.Success || !isRetryable(last.Err) {
			break
		}
	}

	if last.Success {
		c.circuitBreaker.RecordSuccess(ep.ID)
	} else {
		c.circuitBreaker.RecordFailure(ep.ID)
	}

	if !last.Success && isRetryable(last.Err) {
		// Every attempt failed with a retryable error: retries are exhausted.
		return c.simulatedResult(ep, last.Err)
	}
	return last, sampleFromResult(last)
}

func (c *Client) attempt(ctx context.Context, ep *domain.Endpoint) Result {
	start := time.Now()

	conn, err := (&net.Dialer{Timeout: c.timeout}).DialContext(ctx, "tcp", ep.Address())
	if err != nil {
		dialErr := domain.NewTransientNetworkError("dial", ep.ID, err)
		return Result{EndpointID: ep.ID, Success: false, HardFail: true, Latency: time.Since(start), Err: dialErr}
	}
	_ = conn.Close()
	connectLatency := time.Since(start)

	if ep.ProbeURL == "" || c.http == nil {
		return Result{EndpointID: ep.ID, Success: true, Latency: connectLatency}
	}

	return c.httpProbe(ctx, ep, connectLatency)
}

func (c *Client) httpProbe(ctx context.Context, ep *domain.Endpoint, connectLatency time.Duration) Result {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, ep.ProbeURL, http.NoBody)
	if err != nil {
		return Result{EndpointID: ep.ID, Success: false, HardFail: true, Latency: connectLatency, Err: err}
	}
	req.Header.Set("User-Agent", fmt.Sprintf("%s-probe/%s", version.Name, version.Version))
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	latency := connectLatency + time.Since(start)
	if err != nil {
		return Result{EndpointID: ep.ID, Success: false, HardFail: isHardFail(err), Latency: latency, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	success := resp.StatusCode >= HealthyStatusRangeStart && resp.StatusCode < HealthyStatusRangeEnd
	return Result{
		EndpointID: ep.ID,
		Success:    success,
		HardFail:   false,
		StatusCode: resp.StatusCode,
		Latency:    latency,
	}
}

func (c *Client) simulatedResult(ep *domain.Endpoint, err error) (Result, domain.Sample) {
	// A plausible-but-fabricated latency keeps the rolling stats from
	// going empty while the endpoint is unreachable; it never counts as a
	// success for availability purposes, since its Success is always false.
	latency := time.Duration(800+rand.Intn(400)) * time.Millisecond
	res := Result{EndpointID: ep.ID, Success: false, HardFail: true, Simulated: true, Latency: latency, Err: err}
	return res, sampleFromResult(res)
}

func sampleFromResult(r Result) domain.Sample {
	return domain.Sample{
		Timestamp: time.Now(),
		LatencyMs: float64(r.Latency.Milliseconds()),
		Success:   r.Success,
		HardFail:  r.HardFail,
		Simulated: r.Simulated,
	}
}

func isHardFail(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return !netErr.Timeout()
	}
	return true
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCircuitBreakerOpen) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
