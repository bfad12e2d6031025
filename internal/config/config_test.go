package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	cfg, _, exists, err := Load(missing)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Error("expected exists=false for missing file")
	}
	if cfg.Matching.ConfidenceFloor != defaultConfidenceFloor {
		t.Errorf("confidence floor = %v, want default", cfg.Matching.ConfidenceFloor)
	}
	if cfg.Providers.SteamGrid.BaseURL != defaultSteamGridBaseURL {
		t.Errorf("steamgrid base url = %q, want default", cfg.Providers.SteamGrid.BaseURL)
	}
}

func TestLoadParsesScannerRoots(t *testing.T) {
	path := writeConfig(t, `
[scanners.steam]
enabled = true
root = "/tmp/steam"

[scanners.manual]
enabled = true
root = "/tmp/games"
`)
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}

	enabled := cfg.Scanners.Enabled()
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled scanners, got %d", len(enabled))
	}
	if enabled[0].Source != "steam" || enabled[1].Source != "manual" {
		t.Errorf("enabled order wrong: %+v", enabled)
	}
}

func TestLoadRejectsEnabledScannerWithoutRoot(t *testing.T) {
	path := writeConfig(t, `
[scanners.gog]
enabled = true
`)
	_, _, _, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for missing root")
	}
	if !strings.Contains(err.Error(), "scanners.gog.root") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadRejectsBadConfidenceFloor(t *testing.T) {
	path := writeConfig(t, `
[matching]
confidence_floor = 1.5
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected validation error for confidence floor out of range")
	}
}

func TestLoadRejectsMasterBelowProviderTimeout(t *testing.T) {
	path := writeConfig(t, `
[matching]
provider_timeout = 20
master_timeout = 5
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected validation error for master timeout below provider timeout")
	}
}

func TestLoadRejectsIGDBWithoutCredentials(t *testing.T) {
	path := writeConfig(t, `
[providers.igdb]
enabled = true
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected validation error for IGDB without credentials")
	}
}

func TestArtProviderTimeoutStaysUnderMaster(t *testing.T) {
	cfg := Default()
	cfg.Providers.SteamGrid.TimeoutSeconds = 60
	cfg.Matching.MasterTimeout = 12

	if got, master := cfg.ArtProviderTimeout(), cfg.MasterTimeout(); got >= master {
		t.Errorf("art provider timeout %v not below master %v", got, master)
	}
}

func TestNormalizeTrimsBaseURLs(t *testing.T) {
	path := writeConfig(t, `
[providers.steamgrid]
base_url = "https://example.test/api/v2/"
`)
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Providers.SteamGrid.BaseURL != "https://example.test/api/v2" {
		t.Errorf("base url not trimmed: %q", cfg.Providers.SteamGrid.BaseURL)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[providers.steamgrid]") {
		t.Error("sample config missing steamgrid section")
	}
}
