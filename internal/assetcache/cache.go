// Package assetcache stores remote binary assets in a flat local directory
// behind a private resource locator scheme. Files are keyed by a
// deterministic {sanitizedEntityId}-{assetType}.{ext} name so concurrent
// writes for the same key are idempotent, and resolution self-heals after an
// entity's id changes via a fallback directory search.
package assetcache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"onyx/internal/config"
	"onyx/internal/fileutil"
	"onyx/internal/logging"
	"onyx/internal/services"
)

// maxAssetBytes bounds a single fetched asset.
const maxAssetBytes = 64 << 20

// Cache manages the on-disk asset store.
type Cache struct {
	dir          string
	httpClient   *http.Client
	fetchTimeout time.Duration
	retryBudget  int
	logger       *slog.Logger

	mu     sync.Mutex
	broken map[string]int
}

// Option configures a Cache.
type Option func(*Cache)

// WithHTTPClient overrides the default HTTP client used for fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates the cache directory if needed and returns a Cache.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Cache, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	dir := cfg.Paths.AssetCacheDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset cache dir: %w", err)
	}
	budget := cfg.Assets.RetryBudget
	if budget <= 0 {
		budget = 3
	}
	cache := &Cache{
		dir:          dir,
		httpClient:   &http.Client{Timeout: cfg.AssetFetchTimeout()},
		fetchTimeout: cfg.AssetFetchTimeout(),
		retryBudget:  budget,
		logger:       logging.NewComponentLogger(logger, "assetcache"),
		broken:       make(map[string]int),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache, nil
}

// Cache stores the remote asset locally and returns its locator. An already
// cached key short-circuits without refetching. On fetch failure the original
// remote URL is returned unchanged so the reference is never lost.
func (c *Cache) Cache(ctx context.Context, remoteURL, entityID, assetType string) (string, error) {
	if !ValidType(assetType) {
		return remoteURL, services.Wrap(services.ErrValidation, "assetcache", "cache",
			fmt.Sprintf("unknown asset type %q", assetType), nil)
	}
	key := assetKey{entityID: entityID, assetType: assetType}

	if existing := c.findFile(key); existing != "" {
		return Locator(entityID, assetType), nil
	}

	ext, data, err := c.fetch(ctx, remoteURL)
	if err != nil {
		c.logger.Warn("asset fetch failed, keeping remote url",
			logging.String("url", remoteURL),
			logging.String("entity", entityID),
			logging.String("asset_type", assetType),
			logging.Error(err))
		return remoteURL, err
	}

	target := filepath.Join(c.dir, key.stem()+"."+ext)
	if err := c.removeKeyFiles(key); err != nil {
		return remoteURL, err
	}
	if err := fileutil.WriteAtomic(target, data, 0o644); err != nil {
		return remoteURL, fmt.Errorf("persist asset: %w", err)
	}

	c.clearBroken(Locator(entityID, assetType))
	c.logger.Debug("asset cached",
		logging.String("entity", entityID),
		logging.String("asset_type", assetType),
		logging.Int("bytes", len(data)))
	return Locator(entityID, assetType), nil
}

// Delete removes the cached file for a key. Deleting an absent key is a
// no-op.
func (c *Cache) Delete(entityID, assetType string) error {
	if !ValidType(assetType) {
		return services.Wrap(services.ErrValidation, "assetcache", "delete",
			fmt.Sprintf("unknown asset type %q", assetType), nil)
	}
	if err := c.removeKeyFiles(assetKey{entityID: entityID, assetType: assetType}); err != nil {
		return err
	}
	// An explicit delete resets the key's retry history.
	c.clearBroken(Locator(entityID, assetType))
	return nil
}

// Clear removes every cached asset file.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("read asset cache dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return fmt.Errorf("remove cached asset: %w", err)
		}
	}
	c.mu.Lock()
	c.broken = make(map[string]int)
	c.mu.Unlock()
	return nil
}

// Stats reports the number of cached files and their total size.
func (c *Cache) Stats() (int, int64, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read asset cache dir: %w", err)
	}
	var (
		count int
		total int64
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		count++
		total += info.Size()
	}
	return count, total, nil
}

func (c *Cache) fetch(ctx context.Context, remoteURL string) (string, []byte, error) {
	fctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return "", nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return "", nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("asset fetch returned %d (latency=%v)", resp.StatusCode, latency)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return "", nil, fmt.Errorf("read asset body: %w", err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("empty asset body")
	}

	ext := extensionFor(resp.Header.Get("Content-Type"), remoteURL)
	return ext, data, nil
}

// extensionFor picks the stored extension from the content type, falling
// back to the URL path.
func extensionFor(contentType, remoteURL string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return "jpg"
	case strings.Contains(contentType, "webp"):
		return "webp"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "mp4"):
		return "mp4"
	case strings.Contains(contentType, "webm"):
		return "webm"
	}
	if idx := strings.LastIndex(remoteURL, "."); idx >= 0 {
		ext := strings.ToLower(strings.TrimLeft(remoteURL[idx+1:], "."))
		if cut := strings.IndexAny(ext, "?#"); cut >= 0 {
			ext = ext[:cut]
		}
		for _, known := range probeExtensions {
			if ext == known {
				return ext
			}
		}
	}
	return "png"
}

// findFile returns the path of the cached file for a key, probing known
// extensions, or empty when none exists.
func (c *Cache) findFile(key assetKey) string {
	stem := key.stem()
	for _, ext := range probeExtensions {
		candidate := filepath.Join(c.dir, stem+"."+ext)
		if fileutil.Exists(candidate) {
			return candidate
		}
	}
	return ""
}

func (c *Cache) removeKeyFiles(key assetKey) error {
	stem := key.stem()
	for _, ext := range probeExtensions {
		candidate := filepath.Join(c.dir, stem+"."+ext)
		if err := os.Remove(candidate); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove cached asset: %w", err)
		}
	}
	return nil
}
