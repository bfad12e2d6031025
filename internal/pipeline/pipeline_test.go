package pipeline_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"onyx/internal/assetcache"
	"onyx/internal/library"
	"onyx/internal/logging"
	"onyx/internal/metadata"
	"onyx/internal/pipeline"
	"onyx/internal/testsupport"
)

type artProvider struct {
	boxArtURL  string
	candidates []metadata.Candidate
}

func (p *artProvider) Kind() metadata.Kind { return metadata.KindCuratedArt }
func (p *artProvider) Name() string        { return "art" }

func (p *artProvider) Search(ctx context.Context, query metadata.Query) ([]metadata.Candidate, error) {
	var matches []metadata.Candidate
	for _, candidate := range p.candidates {
		if strings.EqualFold(candidate.Title, query.Title) {
			matches = append(matches, candidate)
		}
	}
	return matches, nil
}

func (p *artProvider) FetchAssets(ctx context.Context, externalID string) (metadata.AssetURLs, error) {
	return metadata.AssetURLs{BoxArt: p.boxArtURL}, nil
}

func TestRunImportsAndResolves(t *testing.T) {
	assetServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("art"))
	}))
	defer assetServer.Close()

	root := t.TempDir()
	testsupport.WriteGameDir(t, root, "Portal 2", "portal2.exe")

	cfg := testsupport.NewConfig(t, testsupport.WithScannerRoot("manual", root))
	cfg.Matching.ProviderTimeout = 1
	cfg.Matching.MasterTimeout = 1
	store := testsupport.MustOpenStore(t, cfg)

	provider := &artProvider{
		boxArtURL: assetServer.URL + "/box.png",
		candidates: []metadata.Candidate{
			{ID: "a1", Title: "Portal 2", ExternalID: "a1", Description: "Puzzle sequel."},
		},
	}
	resolver := metadata.NewResolver(cfg, logging.NewNop(), provider)
	assets, err := assetcache.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("assetcache.New: %v", err)
	}

	p := pipeline.New(cfg, store, resolver, assets, logging.NewNop())
	summary, err := p.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Scanned != 1 || summary.New != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Resolved != 1 {
		t.Fatalf("expected one resolved entry, got %+v", summary)
	}

	entries, err := store.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Description != "Puzzle sequel." {
		t.Fatalf("expected metadata applied, got %q", entry.Description)
	}
	if entry.BoxArtURL != assetcache.Locator(entry.ID, assetcache.TypeBoxArt) {
		t.Fatalf("expected cached box art locator, got %q", entry.BoxArtURL)
	}
}

func TestRunIsIdempotentAcrossRepeats(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteGameDir(t, root, "Cave Story", "doukutsu.exe")

	cfg := testsupport.NewConfig(t, testsupport.WithScannerRoot("manual", root))
	store := testsupport.MustOpenStore(t, cfg)

	p := pipeline.New(cfg, store, nil, nil, logging.NewNop())
	if _, err := p.Run(context.Background(), nil); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	summary, err := p.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if summary.New != 0 {
		t.Fatalf("expected repeat run to add nothing, got %d new", summary.New)
	}
	if summary.Known != 1 {
		t.Fatalf("expected one known entry, got %+v", summary)
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one entry after repeat runs, got %d", count)
	}
}

func TestRunReportsMissingWithoutDeleting(t *testing.T) {
	root := t.TempDir()
	cfg := testsupport.NewConfig(t, testsupport.WithScannerRoot("manual", root))
	store := testsupport.MustOpenStore(t, cfg)

	gone := &library.Entry{
		ID:      "manual-gone",
		Title:   "Uninstalled Game",
		Source:  "manual",
		ExePath: root + "/Uninstalled/game.exe",
	}
	if err := store.Upsert(context.Background(), gone); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	p := pipeline.New(cfg, store, nil, nil, logging.NewNop())
	summary, err := p.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Missing) != 1 || summary.Missing[0].ID != "manual-gone" {
		t.Fatalf("expected missing report, got %+v", summary.Missing)
	}

	// Missing games are flagged only; the row survives.
	entry, err := store.Get(context.Background(), "manual-gone")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry == nil {
		t.Fatal("expected missing entry to remain in the store")
	}
}
