package probe

import "testing"

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker()
	id := "ep-1"

	if cb.IsOpen(id) {
		t.Fatal("fresh circuit breaker should not be open")
	}

	for i := 0; i < DefaultCircuitBreakerThreshold; i++ {
		cb.RecordFailure(id)
	}

	if !cb.IsOpen(id) {
		t.Fatal("expected circuit breaker to open after reaching failure threshold")
	}
}

func TestCircuitBreakerRecordSuccessResets(t *testing.T) {
	cb := NewCircuitBreaker()
	id := "ep-2"

	for i := 0; i < DefaultCircuitBreakerThreshold; i++ {
		cb.RecordFailure(id)
	}
	if !cb.IsOpen(id) {
		t.Fatal("expected open circuit before reset")
	}

	cb.RecordSuccess(id)
	if cb.IsOpen(id) {
		t.Fatal("expected circuit to close after a recorded success")
	}
}

func TestCircuitBreakerCleanup(t *testing.T) {
	cb := NewCircuitBreaker()
	id := "ep-3"
	cb.RecordFailure(id)
	cb.CleanupEndpoint(id)

	if len(cb.GetActiveEndpoints()) != 0 {
		t.Fatal("expected no active endpoints after cleanup")
	}
}
