package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir       string `toml:"data_dir"`
	LogDir        string `toml:"log_dir"`
	AssetCacheDir string `toml:"asset_cache_dir"`
}

// Scanner configures a single install source. A scanner reads no global
// configuration beyond its enabled flag and root path.
type Scanner struct {
	Enabled bool   `toml:"enabled"`
	Root    string `toml:"root"`
}

// Scanners contains one Scanner per supported install source.
type Scanners struct {
	Steam    Scanner `toml:"steam"`
	Epic     Scanner `toml:"epic"`
	GOG      Scanner `toml:"gog"`
	Xbox     Scanner `toml:"xbox"`
	Ubisoft  Scanner `toml:"ubisoft"`
	Rockstar Scanner `toml:"rockstar"`
	Manual   Scanner `toml:"manual"`
}

// SourceRoot pairs a source name with its configured root path.
type SourceRoot struct {
	Source string
	Root   string
}

// Enabled returns the enabled scanner configs in fixed declaration order.
func (s Scanners) Enabled() []SourceRoot {
	all := []struct {
		name string
		cfg  Scanner
	}{
		{"steam", s.Steam},
		{"epic", s.Epic},
		{"gog", s.GOG},
		{"xbox", s.Xbox},
		{"ubisoft", s.Ubisoft},
		{"rockstar", s.Rockstar},
		{"manual", s.Manual},
	}
	enabled := make([]SourceRoot, 0, len(all))
	for _, entry := range all {
		if entry.cfg.Enabled {
			enabled = append(enabled, SourceRoot{Source: entry.name, Root: entry.cfg.Root})
		}
	}
	return enabled
}

// SteamStore contains configuration for the first-party storefront provider.
type SteamStore struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// SteamGrid contains configuration for the curated art provider. This
// provider is mandatory for metadata resolution; without an API key the
// resolver reports a configuration error rather than empty results.
type SteamGrid struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// IGDB contains configuration for the general game database provider.
type IGDB struct {
	Enabled        bool   `toml:"enabled"`
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TGDB contains configuration for the open game database provider.
type TGDB struct {
	Enabled        bool   `toml:"enabled"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Providers groups the external metadata provider settings.
type Providers struct {
	SteamStore SteamStore `toml:"steamstore"`
	SteamGrid  SteamGrid  `toml:"steamgrid"`
	IGDB       IGDB       `toml:"igdb"`
	TGDB       TGDB       `toml:"tgdb"`
}

// Matching contains thresholds for metadata resolution.
type Matching struct {
	ConfidenceFloor      float64 `toml:"confidence_floor"`
	ProviderTimeout      int     `toml:"provider_timeout"`
	MasterTimeout        int     `toml:"master_timeout"`
	ScanMaxDepth         int     `toml:"scan_max_depth"`
	ProviderCacheMinutes int     `toml:"provider_cache_minutes"`
}

// Assets contains configuration for the local asset cache.
type Assets struct {
	FetchTimeout int `toml:"fetch_timeout"`
	RetryBudget  int `toml:"retry_budget"`
}

// Rescan contains configuration for the periodic background rescan loop.
type Rescan struct {
	Enabled         bool `toml:"enabled"`
	IntervalMinutes int  `toml:"interval_minutes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Onyx.
//
// Configuration sections by subsystem:
//   - Paths: data, log, and asset cache directories
//   - Scanners: per-source enabled flag and filesystem root
//   - Providers: external metadata/art provider credentials and endpoints
//   - Matching: resolution timeouts and the confidence floor
//   - Assets: asset fetch timeout and broken-locator retry budget
//   - Rescan: periodic background rescan interval
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Scanners  Scanners  `toml:"scanners"`
	Providers Providers `toml:"providers"`
	Matching  Matching  `toml:"matching"`
	Assets    Assets    `toml:"assets"`
	Rescan    Rescan    `toml:"rescan"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/onyx/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The bool reports
// whether a file was found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("onyx.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories required for operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.AssetCacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ProviderTimeout returns the per-provider timeout for optional providers.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Matching.ProviderTimeout) * time.Second
}

// MasterTimeout returns the aggregate deadline for one resolution run.
func (c *Config) MasterTimeout() time.Duration {
	return time.Duration(c.Matching.MasterTimeout) * time.Second
}

// ArtProviderTimeout returns the mandatory art provider's own timeout, which
// is always shorter than the master deadline so its outcome is never lost to
// the race.
func (c *Config) ArtProviderTimeout() time.Duration {
	timeout := time.Duration(c.Providers.SteamGrid.TimeoutSeconds) * time.Second
	if master := c.MasterTimeout(); timeout >= master {
		timeout = master / 2
	}
	return timeout
}

// AssetFetchTimeout returns the timeout applied to a single asset download.
func (c *Config) AssetFetchTimeout() time.Duration {
	return time.Duration(c.Assets.FetchTimeout) * time.Second
}

// RescanInterval returns the period between background rescans.
func (c *Config) RescanInterval() time.Duration {
	return time.Duration(c.Rescan.IntervalMinutes) * time.Minute
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
