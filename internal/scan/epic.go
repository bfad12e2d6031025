package scan

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"onyx/internal/fileutil"
	"onyx/internal/logging"
)

// epicScanner prefers the launcher's *.item install manifests when a
// Manifests directory exists beside or beneath the configured root, falling
// back to a plain directory walk.
type epicScanner struct {
	opts   Options
	logger *slog.Logger
}

func (s *epicScanner) Source() Source { return SourceEpic }

type epicItemManifest struct {
	AppName          string `json:"AppName"`
	CatalogItemID    string `json:"CatalogItemId"`
	DisplayName      string `json:"DisplayName"`
	InstallLocation  string `json:"InstallLocation"`
	LaunchExecutable string `json:"LaunchExecutable"`
}

func (s *epicScanner) Scan(ctx context.Context, root string) []Result {
	manifest := s.scanManifests(ctx, root)
	walked := scanSubdirectories(ctx, SourceEpic, root, s.opts)
	return mergeManifestResults(manifest, walked)
}

func (s *epicScanner) scanManifests(ctx context.Context, root string) []Result {
	manifestDir := filepath.Join(root, "Manifests")
	if !fileutil.DirExists(manifestDir) {
		manifestDir = root
	}
	matches, err := filepath.Glob(filepath.Join(manifestDir, "*.item"))
	if err != nil {
		return nil
	}
	sort.Strings(matches)

	logger := logging.NewComponentLogger(s.logger, "scan.epic")
	results := make([]Result, 0, len(matches))
	for _, manifestPath := range matches {
		if ctx.Err() != nil {
			return results
		}
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			logger.Warn("skipping unreadable manifest",
				logging.String("path", manifestPath),
				logging.Error(err))
			continue
		}
		var item epicItemManifest
		if err := json.Unmarshal(data, &item); err != nil {
			logger.Warn("skipping malformed manifest",
				logging.String("path", manifestPath),
				logging.Error(err))
			continue
		}
		if item.InstallLocation == "" || !fileutil.DirExists(item.InstallLocation) {
			continue
		}
		exePath := ""
		if item.LaunchExecutable != "" {
			candidate := filepath.Join(item.InstallLocation, filepath.FromSlash(item.LaunchExecutable))
			if fileutil.Exists(candidate) {
				exePath = candidate
			}
		}
		if exePath == "" {
			exePath = bestExecutable(item.InstallLocation, s.opts.maxDepth())
		}
		appID := item.CatalogItemID
		if appID == "" {
			appID = item.AppName
		}
		title := item.DisplayName
		if title == "" {
			title = titleFromDir(filepath.Base(item.InstallLocation))
		}
		results = append(results, Result{
			Source:       SourceEpic,
			OriginalName: filepath.Base(item.InstallLocation),
			InstallPath:  item.InstallLocation,
			ExePath:      exePath,
			SourceAppID:  appID,
			Title:        title,
			Status:       StatusPending,
		})
	}
	return results
}
