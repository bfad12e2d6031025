package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScanners(); err != nil {
		return err
	}
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScanners() error {
	for _, sr := range c.Scanners.Enabled() {
		if sr.Root == "" {
			return fmt.Errorf("scanners.%s.root must be set when the scanner is enabled", sr.Source)
		}
	}
	return nil
}

func (c *Config) validateProviders() error {
	if c.Providers.IGDB.Enabled {
		if c.Providers.IGDB.ClientID == "" || c.Providers.IGDB.ClientSecret == "" {
			return errors.New("providers.igdb requires client_id and client_secret when enabled")
		}
	}
	if c.Providers.TGDB.Enabled && c.Providers.TGDB.APIKey == "" {
		return errors.New("providers.tgdb.api_key is required when the provider is enabled")
	}
	// The steamgrid key is intentionally not required here: resolution
	// reports its absence as a provider-unavailable outcome so scanning and
	// library operations keep working without it.
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.ConfidenceFloor < 0 || c.Matching.ConfidenceFloor > 1 {
		return errors.New("matching.confidence_floor must be between 0 and 1")
	}
	if c.Matching.MasterTimeout < c.Matching.ProviderTimeout {
		return errors.New("matching.master_timeout must be at least matching.provider_timeout")
	}
	return nil
}
