package testsupport

import (
	"path/filepath"
	"testing"

	"onyx/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.AssetCacheDir = filepath.Join(base, "assets")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithScannerRoot enables the named scanner with the given root directory.
func WithScannerRoot(source, root string) ConfigOption {
	return func(b *configBuilder) {
		scanner := config.Scanner{Enabled: true, Root: root}
		switch source {
		case "steam":
			b.cfg.Scanners.Steam = scanner
		case "epic":
			b.cfg.Scanners.Epic = scanner
		case "gog":
			b.cfg.Scanners.GOG = scanner
		case "xbox":
			b.cfg.Scanners.Xbox = scanner
		case "ubisoft":
			b.cfg.Scanners.Ubisoft = scanner
		case "rockstar":
			b.cfg.Scanners.Rockstar = scanner
		case "manual":
			b.cfg.Scanners.Manual = scanner
		default:
			b.t.Fatalf("unknown scanner source %q", source)
		}
	}
}

// WithSteamGridKey sets the SteamGridDB API key on the test config.
func WithSteamGridKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Providers.SteamGrid.APIKey = key
	}
}

// WithIGDBCredentials sets the IGDB client credentials on the test config.
func WithIGDBCredentials(clientID, secret string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Providers.IGDB.ClientID = clientID
		b.cfg.Providers.IGDB.ClientSecret = secret
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
