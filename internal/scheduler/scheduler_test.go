package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type countingRefresher struct {
	calls atomic.Int32
	done  atomic.Int32
}

func (r *countingRefresher) Refresh(ctx context.Context, onDone func()) {
	r.calls.Add(1)
	onDone()
	r.done.Add(1)
}

func TestSchedulerDisabled(t *testing.T) {
	r := &countingRefresher{}
	s := New(0, r, zaptest.NewLogger(t))
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	if r.calls.Load() != 0 {
		t.Fatal("expected no refresh when the interval is zero")
	}
}

func TestSchedulerRefreshesPeriodically(t *testing.T) {
	r := &countingRefresher{}
	s := New(20*time.Millisecond, r, zaptest.NewLogger(t))
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for r.done.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected at least 2 refreshes, got %d", r.done.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
