package rescan

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"onyx/internal/logging"
	"onyx/internal/pipeline"
	"onyx/internal/scan"
)

type countingRunner struct {
	runs  atomic.Int64
	delay time.Duration
}

func (r *countingRunner) Run(ctx context.Context, _ scan.ProgressSink) (pipeline.Summary, error) {
	r.runs.Add(1)
	if r.delay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(r.delay):
		}
	}
	return pipeline.Summary{}, nil
}

func TestTriggerNowRunsOnce(t *testing.T) {
	runner := &countingRunner{}
	scheduler := New(runner, time.Hour, logging.NewNop())
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	scheduler.TriggerNow()

	deadline := time.After(2 * time.Second)
	for runner.runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("expected triggered run")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestTriggerNowCoalescesPendingRequests(t *testing.T) {
	runner := &countingRunner{delay: 100 * time.Millisecond}
	scheduler := New(runner, time.Hour, logging.NewNop())
	scheduler.Start(context.Background())

	scheduler.TriggerNow()
	scheduler.TriggerNow()
	scheduler.TriggerNow()

	time.Sleep(400 * time.Millisecond)
	scheduler.Stop()

	// Three rapid triggers collapse into at most two runs: one in flight
	// plus one pending.
	if got := runner.runs.Load(); got > 2 {
		t.Fatalf("expected coalesced triggers, got %d runs", got)
	}
}

func TestStopWaitsForLoopExit(t *testing.T) {
	runner := &countingRunner{}
	scheduler := New(runner, 10*time.Millisecond, logging.NewNop())
	scheduler.Start(context.Background())

	time.Sleep(50 * time.Millisecond)
	scheduler.Stop()
	after := runner.runs.Load()
	if after == 0 {
		t.Fatal("expected ticker runs before stop")
	}

	time.Sleep(50 * time.Millisecond)
	if runner.runs.Load() != after {
		t.Fatal("expected no runs after stop")
	}
}

func TestStartTwiceIsNoOp(t *testing.T) {
	runner := &countingRunner{}
	scheduler := New(runner, time.Hour, logging.NewNop())
	scheduler.Start(context.Background())
	scheduler.Start(context.Background())
	scheduler.Stop()
	// A second Stop on a stopped scheduler must not block or panic.
	scheduler.Stop()
}
