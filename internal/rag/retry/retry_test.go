package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"policyrag/internal/domain/policymodel"
)

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, time.Millisecond, nil, func() error {
		calls++
		if calls < 3 {
			return policymodel.Faultf(policymodel.FaultEmbed, "flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoStopsOnNonTransient(t *testing.T) {
	calls := 0
	wantErr := policymodel.NewFault(policymodel.FaultStoreWrite, false, errors.New("dimension mismatch"))
	err := Do(context.Background(), 3, time.Millisecond, nil, func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected the store fault, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("non-transient fault should not be retried, got %d calls", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, time.Millisecond, nil, func() error {
		calls++
		return policymodel.Faultf(policymodel.FaultGeneration, "still down")
	})
	if err == nil {
		t.Fatal("expected the final error to surface")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Do(ctx, 5, 10*time.Second, nil, func() error {
		calls++
		return policymodel.Faultf(policymodel.FaultEmbed, "flaky")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("cancelled context should stop retries, got %d calls", calls)
	}
}
