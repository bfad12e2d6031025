package scan

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"onyx/internal/config"
)

type stubScanner struct {
	source  Source
	results []Result
	panics  bool
}

func (s *stubScanner) Source() Source { return s.source }

func (s *stubScanner) Scan(ctx context.Context, root string) []Result {
	if s.panics {
		panic("adapter exploded")
	}
	return s.results
}

type recordingSink struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingSink) Progress(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func orchestratorConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Scanners.Steam = config.Scanner{Enabled: true, Root: filepath.Join(t.TempDir(), "steam")}
	cfg.Scanners.Manual = config.Scanner{Enabled: true, Root: filepath.Join(t.TempDir(), "games")}
	return &cfg
}

func TestScanAllFlattensInDeclarationOrder(t *testing.T) {
	cfg := orchestratorConfig(t)
	orchestrator := NewOrchestrator(cfg, nil)

	scanners := []Scanner{
		&stubScanner{source: SourceSteam, results: []Result{{Source: SourceSteam, Title: "Portal 2"}}},
		&stubScanner{source: SourceManual, results: []Result{{Source: SourceManual, Title: "Freeware Gem"}}},
	}

	results := orchestrator.ScanAll(context.Background(), scanners, nil)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Source != SourceSteam || results[1].Source != SourceManual {
		t.Errorf("results out of declaration order: %+v", results)
	}
}

func TestScanAllIsolatesPanickingScanner(t *testing.T) {
	cfg := orchestratorConfig(t)
	orchestrator := NewOrchestrator(cfg, nil)

	scanners := []Scanner{
		&stubScanner{source: SourceSteam, panics: true},
		&stubScanner{source: SourceManual, results: []Result{{Source: SourceManual, Title: "Survivor"}}},
	}

	results := orchestrator.ScanAll(context.Background(), scanners, nil)
	if len(results) != 1 {
		t.Fatalf("expected surviving scanner's result, got %d results", len(results))
	}
	if results[0].Title != "Survivor" {
		t.Errorf("unexpected result %+v", results[0])
	}
}

func TestScanAllDeliversProgress(t *testing.T) {
	cfg := orchestratorConfig(t)
	orchestrator := NewOrchestrator(cfg, nil)
	sink := &recordingSink{}

	orchestrator.ScanAll(context.Background(), []Scanner{
		&stubScanner{source: SourceSteam},
	}, sink)

	if len(sink.messages) == 0 {
		t.Error("expected progress notifications")
	}
}

func TestScanAllSkipsScannerWithoutRoot(t *testing.T) {
	cfg := orchestratorConfig(t)
	orchestrator := NewOrchestrator(cfg, nil)

	// GOG is not enabled in the config, so its scanner has no root.
	results := orchestrator.ScanAll(context.Background(), []Scanner{
		&stubScanner{source: SourceGOG, results: []Result{{Source: SourceGOG, Title: "Ghost"}}},
	}, nil)
	if len(results) != 0 {
		t.Errorf("expected no results for unconfigured source, got %+v", results)
	}
}
