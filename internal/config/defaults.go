package config

const (
	defaultDataDir       = "~/.local/share/onyx"
	defaultLogDir        = "~/.local/share/onyx/logs"
	defaultAssetCacheDir = "~/.cache/onyx/assets"

	defaultSteamStoreBaseURL = "https://store.steampowered.com/api"
	defaultSteamGridBaseURL  = "https://www.steamgriddb.com/api/v2"
	defaultTGDBBaseURL       = "https://api.thegamesdb.net/v1"

	defaultConfidenceFloor      = 0.62
	defaultProviderTimeout      = 8
	defaultMasterTimeout        = 12
	defaultArtProviderTimeout   = 5
	defaultScanMaxDepth         = 3
	defaultProviderCacheMinutes = 10

	defaultAssetFetchTimeout = 15
	defaultAssetRetryBudget  = 3

	defaultRescanIntervalMinutes = 30

	defaultLogFormat = "text"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:       defaultDataDir,
			LogDir:        defaultLogDir,
			AssetCacheDir: defaultAssetCacheDir,
		},
		Providers: Providers{
			SteamStore: SteamStore{
				Enabled:        true,
				BaseURL:        defaultSteamStoreBaseURL,
				TimeoutSeconds: defaultProviderTimeout,
			},
			SteamGrid: SteamGrid{
				BaseURL:        defaultSteamGridBaseURL,
				TimeoutSeconds: defaultArtProviderTimeout,
			},
			IGDB: IGDB{
				TimeoutSeconds: defaultProviderTimeout,
			},
			TGDB: TGDB{
				BaseURL:        defaultTGDBBaseURL,
				TimeoutSeconds: defaultProviderTimeout,
			},
		},
		Matching: Matching{
			ConfidenceFloor:      defaultConfidenceFloor,
			ProviderTimeout:      defaultProviderTimeout,
			MasterTimeout:        defaultMasterTimeout,
			ScanMaxDepth:         defaultScanMaxDepth,
			ProviderCacheMinutes: defaultProviderCacheMinutes,
		},
		Assets: Assets{
			FetchTimeout: defaultAssetFetchTimeout,
			RetryBudget:  defaultAssetRetryBudget,
		},
		Rescan: Rescan{
			Enabled:         true,
			IntervalMinutes: defaultRescanIntervalMinutes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
