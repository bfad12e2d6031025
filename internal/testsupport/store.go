package testsupport

import (
	"context"
	"testing"

	"onyx/internal/config"
	"onyx/internal/library"
	"onyx/internal/scan"
)

// MustOpenStore opens a library.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedEntry merges a scan result into the store and returns the entry.
func SeedEntry(t testing.TB, store *library.Store, result scan.Result) *library.Entry {
	t.Helper()

	entry, _, err := store.MergeFromScan(context.Background(), result)
	if err != nil {
		t.Fatalf("store.MergeFromScan: %v", err)
	}
	return entry
}
