// Package pipeline runs one full import: scan all enabled sources,
// reconcile against the library, merge discoveries, and optionally resolve
// metadata and cache art for newly imported games. It is shared by the scan
// command and the background rescan scheduler.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"onyx/internal/assetcache"
	"onyx/internal/config"
	"onyx/internal/library"
	"onyx/internal/logging"
	"onyx/internal/metadata"
	"onyx/internal/reconcile"
	"onyx/internal/scan"
)

// Pipeline wires the import stages together.
type Pipeline struct {
	cfg      *config.Config
	store    *library.Store
	resolver *metadata.Resolver
	assets   *assetcache.Cache
	logger   *slog.Logger
}

// Summary reports the outcome of one import run.
type Summary struct {
	Scanned   int
	New       int
	Known     int
	Missing   []*library.Entry
	Resolved  int
	Ambiguous int
	Unmatched int
}

// New builds a pipeline. The resolver and asset cache may be nil; the run
// then stops after reconciliation and merge.
func New(cfg *config.Config, store *library.Store, resolver *metadata.Resolver, assets *assetcache.Cache, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		cfg:      cfg,
		store:    store,
		resolver: resolver,
		assets:   assets,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Run executes a full import. Missing games are reported, never removed.
func (p *Pipeline) Run(ctx context.Context, sink scan.ProgressSink) (Summary, error) {
	if sink == nil {
		sink = scan.NopSink{}
	}
	var summary Summary

	existing, err := p.store.GetAll(ctx)
	if err != nil {
		return summary, fmt.Errorf("load library: %w", err)
	}

	scanners := scan.ForConfig(p.cfg, p.logger)
	orchestrator := scan.NewOrchestrator(p.cfg, p.logger)
	results := orchestrator.ScanAll(ctx, scanners, sink)
	summary.Scanned = len(results)

	report := reconcile.Classify(results, existing)
	summary.Known = len(report.Known)
	summary.Missing = report.Missing

	newEntries := make([]*library.Entry, 0, len(report.New))
	for _, result := range report.New {
		entry, created, err := p.store.MergeFromScan(ctx, result)
		if err != nil {
			return summary, fmt.Errorf("merge %s: %w", result.OriginalName, err)
		}
		if created {
			summary.New++
			newEntries = append(newEntries, entry)
		}
	}
	for _, result := range report.Known {
		if _, _, err := p.store.MergeFromScan(ctx, result); err != nil {
			return summary, fmt.Errorf("refresh %s: %w", result.OriginalName, err)
		}
	}

	p.logger.Info("import reconciled",
		logging.Int("scanned", summary.Scanned),
		logging.Int("new", summary.New),
		logging.Int("known", summary.Known),
		logging.Int("missing", len(summary.Missing)))

	if p.resolver == nil {
		return summary, nil
	}

	for _, entry := range newEntries {
		sink.Progress(fmt.Sprintf("resolving %s", entry.Title))
		outcome, err := p.ResolveEntry(ctx, entry)
		if err != nil {
			// A hard resolution error (mandatory provider down) aborts the
			// metadata phase; the merged library state is already durable.
			return summary, err
		}
		switch outcome {
		case metadata.OutcomeMatched:
			summary.Resolved++
		case metadata.OutcomeAmbiguous:
			summary.Ambiguous++
		default:
			summary.Unmatched++
		}
	}
	return summary, nil
}

// ResolveEntry resolves metadata for one entry, caches its art, and applies
// the result honoring field locks. Ambiguous and unmatched outcomes leave
// the entry untouched for the manual match flow.
func (p *Pipeline) ResolveEntry(ctx context.Context, entry *library.Entry) (metadata.Outcome, error) {
	match, err := p.resolver.MatchBest(ctx, metadata.Query{
		Title:       entry.Title,
		Source:      entry.Source,
		SourceAppID: entry.SourceAppID,
		Platform:    entry.PlatformTag,
	})
	if err != nil {
		return "", err
	}
	if match.Outcome != metadata.OutcomeMatched {
		p.logger.Info("resolution needs manual review",
			logging.String("entry", entry.ID),
			logging.String("title", entry.Title),
			logging.String("outcome", string(match.Outcome)),
			logging.Float64("confidence", match.Confidence))
		return match.Outcome, nil
	}
	if err := p.ApplyCandidate(ctx, entry, *match.Best); err != nil {
		return match.Outcome, err
	}
	return match.Outcome, nil
}

// ApplyCandidate writes a chosen candidate's metadata and cached art onto an
// entry. Used both by automatic resolution and by the manual match flow.
func (p *Pipeline) ApplyCandidate(ctx context.Context, entry *library.Entry, candidate metadata.Candidate) error {
	meta := metadata.ToLibraryMetadata(candidate)

	if p.assets != nil {
		urls, err := p.resolver.FetchAssets(ctx, candidate)
		if err != nil {
			p.logger.Warn("asset fetch failed",
				logging.String("entry", entry.ID),
				logging.String("provider", candidate.Provider),
				logging.Error(err))
		} else {
			meta.BoxArtURL = p.cacheAsset(ctx, entry.ID, assetcache.TypeBoxArt, urls.BoxArt)
			meta.BannerURL = p.cacheAsset(ctx, entry.ID, assetcache.TypeBanner, urls.Banner)
			meta.LogoURL = p.cacheAsset(ctx, entry.ID, assetcache.TypeLogo, urls.Logo)
			meta.HeroURL = p.cacheAsset(ctx, entry.ID, assetcache.TypeHero, urls.Hero)
		}
	}

	if _, err := p.store.ApplyMetadata(ctx, entry.ID, meta, false); err != nil {
		return fmt.Errorf("apply metadata to %s: %w", entry.ID, err)
	}
	return nil
}

// cacheAsset caches one remote asset and returns its locator, or the remote
// URL when fetching failed, or empty when the provider had no asset.
func (p *Pipeline) cacheAsset(ctx context.Context, entityID, assetType, remoteURL string) string {
	if remoteURL == "" {
		return ""
	}
	locator, err := p.assets.Cache(ctx, remoteURL, entityID, assetType)
	if err != nil {
		p.logger.Warn("asset cache failed",
			logging.String("entity", entityID),
			logging.String("asset_type", assetType),
			logging.Error(err))
	}
	return locator
}
