// Package rescan owns the periodic background import loop. The scheduler is
// an explicitly owned object with a start/stop lifecycle; overlapping runs
// are skipped via an in-flight flag and manual triggers are debounced.
package rescan

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"onyx/internal/logging"
	"onyx/internal/pipeline"
	"onyx/internal/scan"
)

// Runner executes one import run. Satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, sink scan.ProgressSink) (pipeline.Summary, error)
}

// Scheduler drives periodic rescans.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	inFlight bool
	cancel   context.CancelFunc
	done     chan struct{}
	trigger  chan struct{}
}

// New builds a scheduler. The interval must be positive.
func New(runner Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logging.NewComponentLogger(logger, "rescan"),
		trigger:  make(chan struct{}, 1),
	}
}

// Start launches the background loop. Calling Start on a running scheduler
// is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(loopCtx, s.done)
}

// Stop halts the loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// TriggerNow requests an immediate run. Requests arriving while a trigger is
// already pending or a run is in flight are coalesced.
func (s *Scheduler) TriggerNow() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx)
		case <-s.trigger:
			s.run(ctx)
		}
	}
}

// run executes one import unless a previous run is still in flight.
func (s *Scheduler) run(ctx context.Context) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		s.logger.Debug("rescan skipped, previous run still in flight")
		return
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	summary, err := s.runner.Run(ctx, scan.NopSink{})
	if err != nil {
		s.logger.Error("background rescan failed", logging.Error(err))
		return
	}
	s.logger.Info("background rescan complete",
		logging.Int("scanned", summary.Scanned),
		logging.Int("new", summary.New),
		logging.Int("missing", len(summary.Missing)))
}
