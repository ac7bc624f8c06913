package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	b := NewCircuitBreaker(2, time.Minute, 1)

	if err := b.Allow(); err != nil {
		t.Fatalf("closed breaker rejected request: %v", err)
	}
	b.RecordFailure()
	b.RecordFailure()

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if got := b.State(); got != CircuitStateOpen {
		t.Fatalf("unexpected state: %s", got)
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	b := NewCircuitBreaker(1, time.Minute, 1)
	current := time.Unix(1000, 0)
	b.now = func() time.Time { return current }

	b.RecordFailure()
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open breaker, got %v", err)
	}

	current = current.Add(2 * time.Minute)
	if err := b.Allow(); err != nil {
		t.Fatalf("half-open probe rejected: %v", err)
	}
	b.RecordSuccess()

	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("expected closed after probe success, got %s", got)
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := NewCircuitBreaker(1, time.Minute, 1)
	current := time.Unix(1000, 0)
	b.now = func() time.Time { return current }

	b.RecordFailure()
	current = current.Add(2 * time.Minute)
	if err := b.Allow(); err != nil {
		t.Fatalf("half-open probe rejected: %v", err)
	}
	b.RecordFailure()

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected reopened breaker, got %v", err)
	}
}

func TestSingleFlight_SharesResult(t *testing.T) {
	var g SingleFlight
	calls := 0

	release := make(chan struct{})
	started := make(chan struct{})
	results := make(chan any, 2)

	go func() {
		val, _, _ := g.Do("k", func() (any, error) {
			calls++
			close(started)
			<-release
			return 42, nil
		})
		results <- val
	}()

	<-started
	go func() {
		val, _, shared := g.Do("k", func() (any, error) {
			calls++
			return 0, nil
		})
		if !shared {
			t.Error("expected shared result")
		}
		results <- val
	}()

	time.Sleep(10 * time.Millisecond)
	close(release)

	for i := 0; i < 2; i++ {
		if val := <-results; val != 42 {
			t.Fatalf("unexpected value: %v", val)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
}
