package domain

import "time"

// Sample is one probe or request outcome: the atomic unit of measurement
// the rest of the scheduler reasons about. Loss and bytes are best-effort;
// callers that can't measure them leave the zero value.
type Sample struct {
	Timestamp time.Time

	LatencyMs float64
	JitterMs  float64
	LossRate  float64 // [0,1]
	Bytes     int64
	Bps       float64

	Success bool

	// HardFail means the probe never completed a transport handshake
	// (connect refused, timeout, TLS failure). Distinct from a completed
	// probe that merely reported poor numbers.
	HardFail bool

	// Simulated flags a fallback sample built from plausible random values
	// when a real probe could not be completed after retries. Simulated
	// samples must never count as a success for availability purposes.
	Simulated bool
}

// SampleFromOutcome builds a Sample from a completed request's outcome,
// as recorded by the Outcome Recorder.
func SampleFromOutcome(latency time.Duration, bytes int64, success, hardFail bool) Sample {
	return Sample{
		Timestamp: time.Now(),
		LatencyMs: float64(latency.Milliseconds()),
		Bytes:     bytes,
		Success:   success,
		HardFail:  hardFail,
	}
}
