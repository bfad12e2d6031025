package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"onyx/internal/config"
	"onyx/internal/library"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	manualRoot string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	manualRoot := filepath.Join(base, "games")
	if err := os.MkdirAll(manualRoot, 0o755); err != nil {
		t.Fatalf("create manual root: %v", err)
	}

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q
asset_cache_dir = %q

[scanners.manual]
enabled = true
root = %q

[logging]
format = "json"
level = "error"
`,
		filepath.Join(base, "data"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "assets"),
		manualRoot,
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{baseDir: base, configPath: configPath, manualRoot: manualRoot}
}

func runCLI(t *testing.T, configPath string, args []string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got %q", want, output)
	}
}

func writeGameDir(t *testing.T, root, dirName, exeName string) {
	t.Helper()
	dir := filepath.Join(root, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create game dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, exeName), []byte("MZ"), 0o755); err != nil {
		t.Fatalf("write exe: %v", err)
	}
}

// entryID opens the store briefly to look up the single entry's id. The store
// must not stay open across CLI invocations or the writer lock would collide.
func entryID(t *testing.T, configPath string) string {
	t.Helper()
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("open library: %v", err)
	}
	defer store.Close()
	entries, err := store.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	return entries[0].ID
}

func TestConfigInit(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(env.baseDir, "fresh", "config.toml")
	out, _, err := runCLI(t, env.configPath, []string{"config", "init", "--path", target})
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, env.configPath, []string{"config", "init", "--path", target}); err == nil {
		t.Fatal("expected init without --overwrite to fail on existing file")
	}
	if _, _, err := runCLI(t, env.configPath, []string{"config", "init", "--path", target, "--overwrite"}); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestCLIScanAndLibraryCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	writeGameDir(t, env.manualRoot, "Hollow Knight", "hollow_knight.exe")

	out, _, err := runCLI(t, env.configPath, []string{"scan", "--skip-metadata"})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "1 new")

	out, _, err = runCLI(t, env.configPath, []string{"library", "list"})
	if err != nil {
		t.Fatalf("library list: %v", err)
	}
	requireContains(t, out, "Hollow Knight")

	id := entryID(t, env.configPath)

	if _, _, err := runCLI(t, env.configPath, []string{"library", "lock", id, "title"}); err != nil {
		t.Fatalf("library lock: %v", err)
	}
	out, _, err = runCLI(t, env.configPath, []string{"library", "show", id})
	if err != nil {
		t.Fatalf("library show: %v", err)
	}
	requireContains(t, out, "Locked fields: title")

	if _, _, err := runCLI(t, env.configPath, []string{"library", "hide", id}); err != nil {
		t.Fatalf("library hide: %v", err)
	}
	out, _, err = runCLI(t, env.configPath, []string{"library", "list"})
	if err != nil {
		t.Fatalf("library list after hide: %v", err)
	}
	if strings.Contains(out, "Hollow Knight") {
		t.Fatalf("hidden entry should be excluded from default list, got %q", out)
	}
	out, _, err = runCLI(t, env.configPath, []string{"library", "list", "--hidden"})
	if err != nil {
		t.Fatalf("library list --hidden: %v", err)
	}
	requireContains(t, out, "Hollow Knight")

	out, _, err = runCLI(t, env.configPath, []string{"library", "remove", id})
	if err != nil {
		t.Fatalf("library remove: %v", err)
	}
	requireContains(t, out, "Removed")

	if _, _, err := runCLI(t, env.configPath, []string{"library", "show", id}); err == nil {
		t.Fatal("expected show of removed entry to fail")
	}
}

func TestCLIScanIsIdempotent(t *testing.T) {
	env := setupCLITestEnv(t)
	writeGameDir(t, env.manualRoot, "Celeste", "celeste.exe")

	if _, _, err := runCLI(t, env.configPath, []string{"scan", "--skip-metadata"}); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	out, _, err := runCLI(t, env.configPath, []string{"scan", "--skip-metadata"})
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	requireContains(t, out, "0 new")
	requireContains(t, out, "1 known")
}
