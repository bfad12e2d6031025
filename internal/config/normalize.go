package config

import "strings"

// normalize expands paths, trims string fields, and backfills zero values
// with defaults so the rest of the system never re-checks them.
func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(fallback(c.Paths.DataDir, defaultDataDir)); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(fallback(c.Paths.LogDir, defaultLogDir)); err != nil {
		return err
	}
	if c.Paths.AssetCacheDir, err = expandPath(fallback(c.Paths.AssetCacheDir, defaultAssetCacheDir)); err != nil {
		return err
	}

	if err := c.normalizeScanners(); err != nil {
		return err
	}

	c.Providers.SteamStore.BaseURL = trimmedURL(fallback(c.Providers.SteamStore.BaseURL, defaultSteamStoreBaseURL))
	c.Providers.SteamGrid.BaseURL = trimmedURL(fallback(c.Providers.SteamGrid.BaseURL, defaultSteamGridBaseURL))
	c.Providers.TGDB.BaseURL = trimmedURL(fallback(c.Providers.TGDB.BaseURL, defaultTGDBBaseURL))
	c.Providers.SteamGrid.APIKey = strings.TrimSpace(c.Providers.SteamGrid.APIKey)
	c.Providers.IGDB.ClientID = strings.TrimSpace(c.Providers.IGDB.ClientID)
	c.Providers.IGDB.ClientSecret = strings.TrimSpace(c.Providers.IGDB.ClientSecret)
	c.Providers.TGDB.APIKey = strings.TrimSpace(c.Providers.TGDB.APIKey)

	if c.Providers.SteamStore.TimeoutSeconds <= 0 {
		c.Providers.SteamStore.TimeoutSeconds = defaultProviderTimeout
	}
	if c.Providers.SteamGrid.TimeoutSeconds <= 0 {
		c.Providers.SteamGrid.TimeoutSeconds = defaultArtProviderTimeout
	}
	if c.Providers.IGDB.TimeoutSeconds <= 0 {
		c.Providers.IGDB.TimeoutSeconds = defaultProviderTimeout
	}
	if c.Providers.TGDB.TimeoutSeconds <= 0 {
		c.Providers.TGDB.TimeoutSeconds = defaultProviderTimeout
	}

	if c.Matching.ConfidenceFloor == 0 {
		c.Matching.ConfidenceFloor = defaultConfidenceFloor
	}
	if c.Matching.ProviderTimeout <= 0 {
		c.Matching.ProviderTimeout = defaultProviderTimeout
	}
	if c.Matching.MasterTimeout <= 0 {
		c.Matching.MasterTimeout = defaultMasterTimeout
	}
	if c.Matching.ScanMaxDepth <= 0 {
		c.Matching.ScanMaxDepth = defaultScanMaxDepth
	}
	if c.Matching.ProviderCacheMinutes <= 0 {
		c.Matching.ProviderCacheMinutes = defaultProviderCacheMinutes
	}

	if c.Assets.FetchTimeout <= 0 {
		c.Assets.FetchTimeout = defaultAssetFetchTimeout
	}
	if c.Assets.RetryBudget <= 0 {
		c.Assets.RetryBudget = defaultAssetRetryBudget
	}

	if c.Rescan.IntervalMinutes <= 0 {
		c.Rescan.IntervalMinutes = defaultRescanIntervalMinutes
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(fallback(c.Logging.Format, defaultLogFormat)))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(fallback(c.Logging.Level, defaultLogLevel)))

	return nil
}

func (c *Config) normalizeScanners() error {
	scanners := []*Scanner{
		&c.Scanners.Steam,
		&c.Scanners.Epic,
		&c.Scanners.GOG,
		&c.Scanners.Xbox,
		&c.Scanners.Ubisoft,
		&c.Scanners.Rockstar,
		&c.Scanners.Manual,
	}
	for _, scanner := range scanners {
		scanner.Root = strings.TrimSpace(scanner.Root)
		if scanner.Root == "" {
			continue
		}
		expanded, err := expandPath(scanner.Root)
		if err != nil {
			return err
		}
		scanner.Root = expanded
	}
	return nil
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

func trimmedURL(value string) string {
	return strings.TrimRight(strings.TrimSpace(value), "/")
}
