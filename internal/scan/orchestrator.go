package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"onyx/internal/config"
	"onyx/internal/logging"
)

// ProgressSink receives free-text progress notifications during a scan run.
// Delivery is best-effort and synchronous; implementations must not block.
type ProgressSink interface {
	Progress(message string)
}

// NopSink discards progress notifications.
type NopSink struct{}

func (NopSink) Progress(string) {}

// Orchestrator runs all enabled scanners concurrently and flattens their
// output. Scanner panics are converted to empty contributions so one broken
// adapter never aborts the batch.
type Orchestrator struct {
	roots  map[Source]string
	logger *slog.Logger
}

// NewOrchestrator builds an orchestrator over the enabled scanner roots.
func NewOrchestrator(cfg *config.Config, logger *slog.Logger) *Orchestrator {
	roots := make(map[Source]string)
	for _, sr := range cfg.Scanners.Enabled() {
		if source, ok := ParseSource(sr.Source); ok {
			roots[source] = sr.Root
		}
	}
	return &Orchestrator{
		roots:  roots,
		logger: logging.NewComponentLogger(logger, "scan"),
	}
}

// ScanAll invokes every scanner concurrently, each against its configured
// root. Results are flattened in scanner declaration order so output is
// deterministic regardless of completion order.
func (o *Orchestrator) ScanAll(ctx context.Context, scanners []Scanner, sink ProgressSink) []Result {
	if sink == nil {
		sink = NopSink{}
	}

	contributions := make([][]Result, len(scanners))
	var wg sync.WaitGroup
	for i, scanner := range scanners {
		root, ok := o.roots[scanner.Source()]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(slot int, scanner Scanner, root string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					o.logger.Warn("scanner panicked, contributing no results",
						logging.String("source", string(scanner.Source())),
						logging.Any("panic", r))
					contributions[slot] = nil
				}
			}()
			sink.Progress(fmt.Sprintf("Scanning %s library...", scanner.Source()))
			results := scanner.Scan(ctx, root)
			sink.Progress(fmt.Sprintf("%s: found %d installed games", scanner.Source(), len(results)))
			contributions[slot] = results
		}(i, scanner, root)
	}
	wg.Wait()

	var flattened []Result
	for _, contribution := range contributions {
		flattened = append(flattened, contribution...)
	}
	o.logger.Info("scan batch complete",
		logging.Int("scanners", len(scanners)),
		logging.Int("results", len(flattened)))
	return flattened
}
