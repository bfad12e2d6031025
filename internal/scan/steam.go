package scan

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"onyx/internal/fileutil"
	"onyx/internal/logging"
)

// steamScanner reads appmanifest_*.acf files under <root>/steamapps and
// resolves each manifest's installdir beneath steamapps/common. Installs
// without a manifest are picked up by a directory walk of common.
type steamScanner struct {
	opts   Options
	logger *slog.Logger
}

func (s *steamScanner) Source() Source { return SourceSteam }

func (s *steamScanner) Scan(ctx context.Context, root string) []Result {
	steamapps := filepath.Join(root, "steamapps")
	if !fileutil.DirExists(steamapps) {
		// Roots pointed directly at a library folder still work.
		steamapps = root
	}
	common := filepath.Join(steamapps, "common")

	manifest := s.scanManifests(ctx, steamapps, common)
	walked := scanSubdirectories(ctx, SourceSteam, common, s.opts)
	return mergeManifestResults(manifest, walked)
}

// acfField matches the flat "key" "value" pairs in Valve's ACF format. The
// nesting is irrelevant here; appid, name, and installdir are unique per file.
var acfField = regexp.MustCompile(`^\s*"([^"]+)"\s+"([^"]*)"\s*$`)

func (s *steamScanner) scanManifests(ctx context.Context, steamapps, common string) []Result {
	matches, err := filepath.Glob(filepath.Join(steamapps, "appmanifest_*.acf"))
	if err != nil {
		return nil
	}
	sort.Strings(matches)

	results := make([]Result, 0, len(matches))
	for _, manifestPath := range matches {
		if ctx.Err() != nil {
			return results
		}
		fields, err := parseACF(manifestPath)
		if err != nil {
			logging.NewComponentLogger(s.logger, "scan.steam").Warn("skipping unreadable manifest",
				logging.String("path", manifestPath),
				logging.Error(err))
			continue
		}
		appID := fields["appid"]
		installDir := fields["installdir"]
		if appID == "" || installDir == "" {
			continue
		}
		installPath := filepath.Join(common, installDir)
		if !fileutil.DirExists(installPath) {
			continue
		}
		title := fields["name"]
		if title == "" {
			title = titleFromDir(installDir)
		}
		results = append(results, Result{
			Source:       SourceSteam,
			OriginalName: installDir,
			InstallPath:  installPath,
			ExePath:      bestExecutable(installPath, s.opts.maxDepth()),
			SourceAppID:  appID,
			Title:        title,
			Status:       StatusPending,
		})
	}
	return results
}

func parseACF(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if match := acfField.FindStringSubmatch(line); match != nil {
			key := strings.ToLower(match[1])
			if _, exists := fields[key]; !exists {
				fields[key] = match[2]
			}
		}
	}
	return fields, nil
}
