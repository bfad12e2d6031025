// Package fileutil provides small filesystem helpers shared by the asset
// cache and library store.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Exists reports whether path refers to an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether path refers to an existing directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// WriteAtomic writes data to path via a temp file rename so readers never
// observe a partial file.
func WriteAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, mode); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// SanitizeName strips characters that are unsafe in filenames, collapsing
// them to hyphens. Repeated separators are squeezed so ids remain readable.
func SanitizeName(name string) string {
	var builder strings.Builder
	lastHyphen := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			builder.WriteRune(r)
			lastHyphen = r == '-'
		default:
			if !lastHyphen {
				builder.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(builder.String(), "-")
}

// NormalizePath lower-cases a path, converts backslashes to forward slashes,
// and trims surrounding whitespace and trailing separators. Used wherever
// paths from different sources must compare equal.
func NormalizePath(path string) string {
	normalized := strings.ToLower(strings.TrimSpace(path))
	normalized = strings.ReplaceAll(normalized, "\\", "/")
	for strings.HasSuffix(normalized, "/") && len(normalized) > 1 {
		normalized = strings.TrimSuffix(normalized, "/")
	}
	return normalized
}

// IsSubPath reports whether child is a strict subdirectory of parent after
// normalization. Equal paths return false.
func IsSubPath(parent, child string) bool {
	p := NormalizePath(parent)
	c := NormalizePath(child)
	if p == "" || c == "" || p == c {
		return false
	}
	return strings.HasPrefix(c, p+"/")
}
