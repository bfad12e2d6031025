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

// gogScanner reads the goggame-<id>.info file GOG drops into each install
// directory. Directories without one fall back to the plain walk.
type gogScanner struct {
	opts   Options
	logger *slog.Logger
}

func (s *gogScanner) Source() Source { return SourceGOG }

type gogInfoFile struct {
	GameID    string `json:"gameId"`
	Name      string `json:"name"`
	PlayTasks []struct {
		Path      string `json:"path"`
		IsPrimary bool   `json:"isPrimary"`
	} `json:"playTasks"`
}

func (s *gogScanner) Scan(ctx context.Context, root string) []Result {
	manifest := s.scanInfoFiles(ctx, root)
	walked := scanSubdirectories(ctx, SourceGOG, root, s.opts)
	return mergeManifestResults(manifest, walked)
}

func (s *gogScanner) scanInfoFiles(ctx context.Context, root string) []Result {
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

	logger := logging.NewComponentLogger(s.logger, "scan.gog")
	var results []Result
	for _, name := range names {
		if ctx.Err() != nil {
			return results
		}
		installPath := filepath.Join(root, name)
		matches, err := filepath.Glob(filepath.Join(installPath, "goggame-*.info"))
		if err != nil || len(matches) == 0 {
			continue
		}
		sort.Strings(matches)

		data, err := os.ReadFile(matches[0])
		if err != nil {
			logger.Warn("skipping unreadable info file",
				logging.String("path", matches[0]),
				logging.Error(err))
			continue
		}
		var info gogInfoFile
		if err := json.Unmarshal(data, &info); err != nil {
			logger.Warn("skipping malformed info file",
				logging.String("path", matches[0]),
				logging.Error(err))
			continue
		}

		exePath := ""
		for _, task := range info.PlayTasks {
			if !task.IsPrimary || task.Path == "" {
				continue
			}
			candidate := filepath.Join(installPath, filepath.FromSlash(task.Path))
			if fileutil.Exists(candidate) {
				exePath = candidate
			}
			break
		}
		if exePath == "" {
			exePath = bestExecutable(installPath, s.opts.maxDepth())
		}

		title := info.Name
		if title == "" {
			title = titleFromDir(name)
		}
		results = append(results, Result{
			Source:       SourceGOG,
			OriginalName: name,
			InstallPath:  installPath,
			ExePath:      exePath,
			SourceAppID:  info.GameID,
			Title:        title,
			Status:       StatusPending,
		})
	}
	return results
}
