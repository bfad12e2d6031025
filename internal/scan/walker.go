package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// denySubstrings excludes non-game binaries by filename. Matched
// case-insensitively against the base name.
var denySubstrings = []string{
	"unins",
	"installer",
	"setup",
	"updater",
	"update",
	"bootstrap",
	"launcherhelper",
	"crashhandler",
	"crashreport",
	"redist",
	"vcredist",
	"dxsetup",
	"dotnet",
	"easyanticheat",
	"battleye",
	"touchup",
	"cleanup",
	"repair",
	"unitycrash",
	"ue4prereq",
	"ueprereq",
}

type executable struct {
	path  string
	depth int
}

// findExecutables walks root up to maxDepth directory levels collecting
// candidate game executables. A missing or unreadable root yields nil.
// When multiple candidates share a base name the shallowest wins, ties
// broken by lexical path order.
func findExecutables(root string, maxDepth int) []executable {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil
	}

	var found []executable
	_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: skip, never fatal.
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		depth := pathDepth(root, path)
		if entry.IsDir() {
			if depth > maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if depth > maxDepth {
			return nil
		}
		if !isCandidateExecutable(path, entry) {
			return nil
		}
		found = append(found, executable{path: path, depth: depth})
		return nil
	})

	return dedupeByBaseName(found)
}

// bestExecutable returns the single most plausible game executable under
// root, or "" when none is found.
func bestExecutable(root string, maxDepth int) string {
	candidates := findExecutables(root, maxDepth)
	if len(candidates) == 0 {
		return ""
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].depth != candidates[j].depth {
			return candidates[i].depth < candidates[j].depth
		}
		return candidates[i].path < candidates[j].path
	})
	return candidates[0].path
}

func pathDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func isCandidateExecutable(path string, entry fs.DirEntry) bool {
	name := strings.ToLower(entry.Name())
	isExe := strings.HasSuffix(name, ".exe")
	if !isExe {
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
			return false
		}
		if strings.Contains(name, ".") {
			// Executable-bit noise like .sh/.so wrappers; games ship bare
			// binaries or .exe files.
			return false
		}
	}
	for _, deny := range denySubstrings {
		if strings.Contains(name, deny) {
			return false
		}
	}
	return true
}

func dedupeByBaseName(found []executable) []executable {
	sort.Slice(found, func(i, j int) bool {
		if found[i].depth != found[j].depth {
			return found[i].depth < found[j].depth
		}
		return found[i].path < found[j].path
	})
	seen := make(map[string]struct{}, len(found))
	deduped := found[:0]
	for _, candidate := range found {
		base := strings.ToLower(filepath.Base(candidate.path))
		if _, ok := seen[base]; ok {
			continue
		}
		seen[base] = struct{}{}
		deduped = append(deduped, candidate)
	}
	return deduped
}
