package assetcache

import (
	"fmt"
	"net/url"
	"strings"

	"onyx/internal/fileutil"
)

// Scheme is the private resource locator scheme for cached assets.
const Scheme = "onyx-asset"

// Asset types form a fixed vocabulary; locator parsing is anchored against
// these suffixes so entity ids containing the separator are not mis-split.
const (
	TypeBoxArt = "boxart"
	TypeBanner = "banner"
	TypeLogo   = "logo"
	TypeHero   = "hero"
	TypeIcon   = "icon"
)

// AssetTypes lists the known asset types in parse priority order.
var AssetTypes = []string{TypeBoxArt, TypeBanner, TypeLogo, TypeHero, TypeIcon}

// ValidType reports whether the given asset type belongs to the vocabulary.
func ValidType(assetType string) bool {
	for _, known := range AssetTypes {
		if known == assetType {
			return true
		}
	}
	return false
}

// assetKey identifies one cached asset.
type assetKey struct {
	entityID  string
	assetType string
}

func (k assetKey) stem() string {
	return fileutil.SanitizeName(k.entityID) + "-" + k.assetType
}

// Locator builds the canonical locator for an entity and asset type.
func Locator(entityID, assetType string) string {
	return fmt.Sprintf("%s://%s-%s", Scheme, entityID, assetType)
}

// parseLocator runs the ordered chain of parsing strategies and returns the
// first successful key. Each strategy is pure and short-circuits on success.
func parseLocator(locator string) (assetKey, bool) {
	strategies := []func(string) (assetKey, bool){
		parseSchemeLocator,
		parseBareLocator,
		parseLegacyLocator,
	}
	for _, strategy := range strategies {
		if key, ok := strategy(locator); ok {
			return key, true
		}
	}
	return assetKey{}, false
}

// parseSchemeLocator handles the canonical scheme://{entityId}-{assetType}
// form.
func parseSchemeLocator(locator string) (assetKey, bool) {
	prefix := Scheme + "://"
	if !strings.HasPrefix(locator, prefix) {
		return assetKey{}, false
	}
	return splitBody(strings.TrimPrefix(locator, prefix))
}

// parseBareLocator handles a locator body with no scheme.
func parseBareLocator(locator string) (assetKey, bool) {
	if strings.Contains(locator, "://") {
		return assetKey{}, false
	}
	return splitBody(locator)
}

// parseLegacyLocator handles URL-escaped bodies and bodies that still carry
// a file extension, both produced by older locator formats.
func parseLegacyLocator(locator string) (assetKey, bool) {
	body := locator
	if idx := strings.Index(body, "://"); idx >= 0 {
		body = body[idx+3:]
	}
	if unescaped, err := url.PathUnescape(body); err == nil {
		body = unescaped
	}
	if idx := strings.LastIndex(body, "."); idx > 0 {
		ext := body[idx+1:]
		if len(ext) <= 4 && !strings.Contains(ext, "-") {
			body = body[:idx]
		}
	}
	return splitBody(body)
}

// splitBody recovers (entityId, assetType) from a locator body using a
// right-anchored match against the asset type vocabulary.
func splitBody(body string) (assetKey, bool) {
	for _, assetType := range AssetTypes {
		suffix := "-" + assetType
		if !strings.HasSuffix(body, suffix) {
			continue
		}
		entityID := strings.TrimSuffix(body, suffix)
		if entityID == "" {
			continue
		}
		return assetKey{entityID: entityID, assetType: assetType}, true
	}
	return assetKey{}, false
}
