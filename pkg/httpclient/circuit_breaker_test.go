package httpclient

import (
	"testing"
	"time"
)

func TestCircuitBreaker_Transitions(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(2, time.Minute)
	cb.now = func() time.Time { return now }

	cb.OnFailure()
	if cb.State() != StateClosed {
		t.Fatalf("state = %v after one failure, want closed", cb.State())
	}
	cb.OnFailure()
	if cb.State() != StateOpen {
		t.Fatalf("state = %v after threshold, want open", cb.State())
	}
	if err := cb.CheckBeforeRequest(); err != ErrCircuitOpen {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}

	now = now.Add(2 * time.Minute)
	if err := cb.CheckBeforeRequest(); err != nil {
		t.Fatalf("expected probe to be allowed, got %v", err)
	}
	if cb.State() != StateHalfOpen {
		t.Fatalf("state = %v, want half-open", cb.State())
	}
	if err := cb.CheckBeforeRequest(); err != ErrCircuitOpen {
		t.Fatalf("second request during probe should be blocked, got %v", err)
	}

	cb.OnSuccess()
	if cb.State() != StateClosed {
		t.Fatalf("state = %v after successful probe, want closed", cb.State())
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(1, time.Second)
	cb.now = func() time.Time { return now }

	cb.OnFailure()
	now = now.Add(2 * time.Second)
	_ = cb.CheckBeforeRequest()
	cb.OnFailure()

	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Second)

	cb.OnFailure()
	cb.OnSuccess()
	cb.OnFailure()

	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed", cb.State())
	}
}
