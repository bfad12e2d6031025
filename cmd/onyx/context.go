package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"onyx/internal/assetcache"
	"onyx/internal/config"
	"onyx/internal/library"
	"onyx/internal/logging"
	"onyx/internal/metadata"
	"onyx/internal/metadata/griddb"
	"onyx/internal/metadata/igdbprov"
	"onyx/internal/metadata/steamstore"
	"onyx/internal/metadata/tgdb"
	"onyx/internal/pipeline"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(logging.Options{
		Format: cfg.Logging.Format,
		Level:  cfg.Logging.Level,
	})
}

// withStore opens the library store, runs fn, and closes the store.
func (c *commandContext) withStore(ctx context.Context, fn func(context.Context, *config.Config, *library.Store, *slog.Logger) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger := c.newLogger(cfg)

	store, err := library.Open(cfg)
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}
	defer store.Close()

	return fn(ctx, cfg, store, logger)
}

// buildResolver constructs the provider set in band priority order. The
// curated art provider is always registered; its missing API key surfaces as
// an unavailable error at search time, not here.
func buildResolver(cfg *config.Config, logger *slog.Logger) (*metadata.Resolver, error) {
	var providers []metadata.Provider

	if cfg.Providers.SteamStore.Enabled {
		store, err := steamstore.New(cfg.Providers.SteamStore.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("steam store provider: %w", err)
		}
		providers = append(providers, store)
	}

	grid, err := griddb.New(cfg.Providers.SteamGrid.APIKey, cfg.Providers.SteamGrid.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("steamgriddb provider: %w", err)
	}
	providers = append(providers, grid)

	if cfg.Providers.IGDB.Enabled {
		igdb, err := igdbprov.New(cfg.Providers.IGDB.ClientID, cfg.Providers.IGDB.ClientSecret)
		if err != nil {
			return nil, fmt.Errorf("igdb provider: %w", err)
		}
		providers = append(providers, igdb)
	}

	if cfg.Providers.TGDB.Enabled {
		open, err := tgdb.New(cfg.Providers.TGDB.APIKey, cfg.Providers.TGDB.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("tgdb provider: %w", err)
		}
		providers = append(providers, open)
	}

	return metadata.NewResolver(cfg, logger, providers...), nil
}

// buildPipeline assembles the full import pipeline with resolver and asset
// cache attached.
func buildPipeline(cfg *config.Config, store *library.Store, logger *slog.Logger) (*pipeline.Pipeline, error) {
	resolver, err := buildResolver(cfg, logger)
	if err != nil {
		return nil, err
	}
	assets, err := assetcache.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, store, resolver, assets, logger), nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
