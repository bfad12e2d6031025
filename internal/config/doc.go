// Package config loads, normalizes, and validates the Onyx configuration
// file. Configuration is TOML with sections per subsystem: paths, logging,
// per-source scanner roots, metadata providers, matching thresholds, asset
// cache behavior, and the background rescan loop.
package config
