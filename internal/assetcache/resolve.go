package assetcache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"onyx/internal/logging"
	"onyx/internal/services"
)

// probeExtensions lists candidate file extensions in priority order: static
// image formats before animated and video formats.
var probeExtensions = []string{"png", "jpg", "jpeg", "webp", "gif", "mp4", "webm"}

var contentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
	"gif":  "image/gif",
	"mp4":  "video/mp4",
	"webm": "video/webm",
}

// Resolve parses a locator and returns the cached asset bytes with a content
// type derived from the stored extension. An unresolvable locator returns a
// not-found error; a locator that keeps failing past the retry budget is
// short-circuited until a matching file appears again.
func (c *Cache) Resolve(locator string) ([]byte, string, error) {
	key, ok := parseLocator(locator)
	if !ok {
		c.markBroken(locator)
		return nil, "", services.Wrap(services.ErrNotFound, "assetcache", "resolve",
			fmt.Sprintf("unparseable locator %q", locator), nil)
	}

	path := c.findFile(key)
	if path == "" {
		// A known-broken locator runs the directory scan once per budget
		// window instead of every call. The deterministic probe above still
		// runs every time, so a file reappearing under either name clears
		// the mark.
		if !c.fallbackAllowed(locator) {
			return nil, "", services.Wrap(services.ErrNotFound, "assetcache", "resolve", "locator marked broken", nil)
		}
		path = c.fallbackSearch(key)
	}
	if path == "" {
		c.markBroken(locator)
		return nil, "", services.Wrap(services.ErrNotFound, "assetcache", "resolve",
			fmt.Sprintf("no cached file for %s/%s", key.entityID, key.assetType), nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		c.markBroken(locator)
		return nil, "", services.Wrap(services.ErrNotFound, "assetcache", "resolve", "read cached file", err)
	}

	c.clearBroken(locator)
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	contentType, ok := contentTypes[ext]
	if !ok {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

// fallbackSearch scans the cache directory for any file whose name begins
// with the key's stem. This recovers assets cached before an entity id
// change altered the expected filename.
func (c *Cache) fallbackSearch(key assetKey) string {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return ""
	}
	stem := key.stem()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), stem) {
			c.logger.Debug("asset recovered via fallback search",
				logging.String("entity", key.entityID),
				logging.String("asset_type", key.assetType),
				logging.String("file", entry.Name()))
			return filepath.Join(c.dir, entry.Name())
		}
	}
	return ""
}

func (c *Cache) isBroken(locator string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.broken[locator] >= c.retryBudget
}

// fallbackAllowed reports whether this attempt may run the fallback scan.
// Under-budget locators always may; past the budget, one attempt per budget
// window is let through so a file recreated under a non-probe name is still
// recovered without a directory scan on every call.
func (c *Cache) fallbackAllowed(locator string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := c.broken[locator]
	if count < c.retryBudget || count%c.retryBudget == 0 {
		return true
	}
	c.broken[locator] = count + 1
	return false
}

func (c *Cache) markBroken(locator string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broken[locator]++
}

func (c *Cache) clearBroken(locator string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.broken, locator)
}
