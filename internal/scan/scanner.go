package scan

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"onyx/internal/config"
	"onyx/internal/fileutil"
)

func normalizeKey(path string) string {
	return strings.TrimSpace(fileutil.NormalizePath(path))
}

// Scanner discovers installs for one source. Scan never fails: a missing or
// unreadable root yields an empty slice.
type Scanner interface {
	Source() Source
	Scan(ctx context.Context, root string) []Result
}

// Options tunes scanner behavior shared across sources.
type Options struct {
	MaxDepth int
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return 3
	}
	return o.MaxDepth
}

// ForConfig builds the scanner set for the enabled sources in cfg,
// preserving configuration order.
func ForConfig(cfg *config.Config, logger *slog.Logger) []Scanner {
	opts := Options{MaxDepth: cfg.Matching.ScanMaxDepth}
	scanners := make([]Scanner, 0, 7)
	for _, sr := range cfg.Scanners.Enabled() {
		source, ok := ParseSource(sr.Source)
		if !ok {
			continue
		}
		scanners = append(scanners, New(source, opts, logger))
	}
	return scanners
}

// New builds the adapter for a single source.
func New(source Source, opts Options, logger *slog.Logger) Scanner {
	switch source {
	case SourceSteam:
		return &steamScanner{opts: opts, logger: logger}
	case SourceEpic:
		return &epicScanner{opts: opts, logger: logger}
	case SourceGOG:
		return &gogScanner{opts: opts, logger: logger}
	default:
		return &dirScanner{source: source, opts: opts, logger: logger}
	}
}

// dirScanner is the plain directory-walk adapter used by sources without a
// structured install manifest (xbox, ubisoft, rockstar, manual). Each
// immediate subdirectory of the root is treated as one install.
type dirScanner struct {
	source Source
	opts   Options
	logger *slog.Logger
}

func (s *dirScanner) Source() Source { return s.source }

func (s *dirScanner) Scan(ctx context.Context, root string) []Result {
	return scanSubdirectories(ctx, s.source, root, s.opts)
}

func scanSubdirectories(ctx context.Context, source Source, root string, opts Options) []Result {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	results := make([]Result, 0, len(names))
	for _, name := range names {
		if ctx.Err() != nil {
			return results
		}
		installPath := filepath.Join(root, name)
		exePath := bestExecutable(installPath, opts.maxDepth())
		if exePath == "" {
			continue
		}
		results = append(results, Result{
			Source:       source,
			OriginalName: name,
			InstallPath:  installPath,
			ExePath:      exePath,
			Title:        titleFromDir(name),
			Status:       StatusPending,
		})
	}
	return results
}

// mergeManifestResults overlays manifest-derived results onto walk-derived
// ones, keyed by install path. Manifest data wins because it carries the
// source's own title and app id; walk results fill in installs the manifest
// does not cover.
func mergeManifestResults(manifest, walked []Result) []Result {
	if len(manifest) == 0 {
		return walked
	}
	byPath := make(map[string]struct{}, len(manifest))
	merged := make([]Result, 0, len(manifest)+len(walked))
	for _, result := range manifest {
		byPath[normalizeKey(result.InstallPath)] = struct{}{}
		merged = append(merged, result)
	}
	for _, result := range walked {
		if _, ok := byPath[normalizeKey(result.InstallPath)]; ok {
			continue
		}
		merged = append(merged, result)
	}
	return merged
}
