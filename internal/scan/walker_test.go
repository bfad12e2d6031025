package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("bin"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestFindExecutablesMissingRoot(t *testing.T) {
	results := findExecutables(filepath.Join(t.TempDir(), "nope"), 3)
	if results != nil {
		t.Errorf("expected nil for missing root, got %v", results)
	}
}

func TestFindExecutablesDenyList(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "game.exe"))
	writeFile(t, filepath.Join(root, "unins000.exe"))
	writeFile(t, filepath.Join(root, "setup.exe"))
	writeFile(t, filepath.Join(root, "UnityCrashHandler64.exe"))

	results := findExecutables(root, 3)
	if len(results) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(results))
	}
	if filepath.Base(results[0].path) != "game.exe" {
		t.Errorf("unexpected candidate %q", results[0].path)
	}
}

func TestFindExecutablesShallowestWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bin", "game.exe"))
	writeFile(t, filepath.Join(root, "game.exe"))

	results := findExecutables(root, 3)
	if len(results) != 1 {
		t.Fatalf("expected 1 deduped candidate, got %d", len(results))
	}
	if results[0].depth != 1 {
		t.Errorf("expected shallowest candidate, got depth %d (%s)", results[0].depth, results[0].path)
	}
}

func TestFindExecutablesDepthBound(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "b", "c", "d", "deep.exe"))

	if results := findExecutables(root, 3); len(results) != 0 {
		t.Errorf("expected depth bound to exclude deep file, got %v", results)
	}
	if results := findExecutables(root, 5); len(results) != 1 {
		t.Errorf("expected deep file within raised bound, got %v", results)
	}
}

func TestBestExecutableLexicalTieBreak(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "beta.exe"))
	writeFile(t, filepath.Join(root, "alpha.exe"))

	best := bestExecutable(root, 3)
	if filepath.Base(best) != "alpha.exe" {
		t.Errorf("expected lexical tie-break, got %q", best)
	}
}

func TestBestExecutableEmpty(t *testing.T) {
	if best := bestExecutable(t.TempDir(), 3); best != "" {
		t.Errorf("expected empty result, got %q", best)
	}
}
