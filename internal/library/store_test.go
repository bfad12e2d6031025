package library_test

import (
	"context"
	"testing"

	"onyx/internal/library"
	"onyx/internal/scan"
	"onyx/internal/testsupport"
)

func TestUpsertRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	entry := &library.Entry{
		ID:           "steam-620",
		Title:        "Portal 2",
		Source:       "steam",
		SourceAppID:  "620",
		InstallPath:  "/games/steam/steamapps/common/Portal 2",
		ExePath:      "/games/steam/steamapps/common/Portal 2/portal2.exe",
		Genres:       []string{"Puzzle", "Platformer"},
		Developers:   []string{"Valve"},
		LockedFields: []string{library.FieldTitle},
		CriticScore:  95,
	}
	if err := store.Upsert(ctx, entry); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := store.Get(ctx, "steam-620")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected entry, got nil")
	}
	if got.Title != "Portal 2" {
		t.Fatalf("unexpected title %q", got.Title)
	}
	if len(got.Genres) != 2 || got.Genres[0] != "Puzzle" {
		t.Fatalf("unexpected genres %v", got.Genres)
	}
	if !got.IsLocked(library.FieldTitle) {
		t.Fatal("expected title lock to persist")
	}
	if got.CriticScore != 95 {
		t.Fatalf("unexpected critic score %v", got.CriticScore)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
}

func TestUpsertRemovesSupersededRow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	old := &library.Entry{
		ID:          "manual-abc123",
		Title:       "Half-Life",
		Source:      "manual",
		InstallPath: "/games/Half-Life",
		ExePath:     "/games/Half-Life/hl.exe",
	}
	if err := store.Upsert(ctx, old); err != nil {
		t.Fatalf("Upsert old: %v", err)
	}

	// Same executable shows up later with a real source app id.
	replacement := &library.Entry{
		ID:          "steam-70",
		Title:       "Half-Life",
		Source:      "steam",
		SourceAppID: "70",
		InstallPath: "/games/Half-Life",
		ExePath:     "/games/Half-Life/hl.exe",
	}
	if err := store.Upsert(ctx, replacement); err != nil {
		t.Fatalf("Upsert replacement: %v", err)
	}

	if got, err := store.Get(ctx, "manual-abc123"); err != nil {
		t.Fatalf("Get old: %v", err)
	} else if got != nil {
		t.Fatal("expected superseded row to be deleted")
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 entry, got %d", count)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	entry := library.FromScan(scan.Result{
		Source:      scan.SourceGOG,
		SourceAppID: "1207658924",
		Title:       "SOMA",
	})
	if err := store.Upsert(ctx, entry); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	removed, err := store.Delete(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !removed {
		t.Fatal("expected first delete to remove the row")
	}

	removed, err = store.Delete(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Delete again: %v", err)
	}
	if removed {
		t.Fatal("expected second delete to be a no-op")
	}
}

func TestSetFieldLocksRejectsUnknownField(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	entry := library.FromScan(scan.Result{Source: scan.SourceSteam, SourceAppID: "400", Title: "Portal"})
	if err := store.Upsert(ctx, entry); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := store.SetFieldLocks(ctx, entry.ID, []string{"installPath"}); err == nil {
		t.Fatal("expected error for unlockable field")
	}

	if err := store.SetFieldLocks(ctx, entry.ID, []string{library.FieldTitle, library.FieldBoxArtURL}); err != nil {
		t.Fatalf("SetFieldLocks: %v", err)
	}
	got, err := store.Get(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.IsLocked(library.FieldTitle) || !got.IsLocked(library.FieldBoxArtURL) {
		t.Fatalf("expected locks to persist, got %v", got.LockedFields)
	}
}

func TestFindBySourceApp(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	entry := library.FromScan(scan.Result{Source: scan.SourceEpic, SourceAppID: "Sugar", Title: "Alan Wake"})
	if err := store.Upsert(ctx, entry); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := store.FindBySourceApp(ctx, "epic", "Sugar")
	if err != nil {
		t.Fatalf("FindBySourceApp: %v", err)
	}
	if got == nil || got.ID != entry.ID {
		t.Fatalf("expected %q, got %+v", entry.ID, got)
	}

	missing, err := store.FindBySourceApp(ctx, "epic", "nope")
	if err != nil {
		t.Fatalf("FindBySourceApp missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown app id, got %+v", missing)
	}
}

func TestSecondOpenFailsWhileLocked(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.MustOpenStore(t, cfg)

	if _, err := library.Open(cfg); err == nil {
		t.Fatal("expected second open to fail while lock is held")
	}
}

func TestCheckHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	entry := library.FromScan(scan.Result{Source: scan.SourceSteam, SourceAppID: "620", Title: "Portal 2"})
	if err := store.Upsert(ctx, entry); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	health, err := store.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if !health.DatabaseExists {
		t.Fatal("expected database to exist")
	}
	if health.TotalEntries != 1 {
		t.Fatalf("expected 1 entry, got %d", health.TotalEntries)
	}
	if !health.IntegrityOK {
		t.Fatal("expected integrity check to pass")
	}
}

func TestSetCategoriesRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	entry := library.FromScan(scan.Result{Source: scan.SourceSteam, SourceAppID: "440", Title: "Team Fortress 2"})
	if err := store.Upsert(ctx, entry); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := store.SetCategories(ctx, entry.ID, []string{"shooter", "multiplayer"}); err != nil {
		t.Fatalf("SetCategories: %v", err)
	}
	got, err := store.Get(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Categories) != 2 || got.Categories[0] != "shooter" || got.Categories[1] != "multiplayer" {
		t.Fatalf("unexpected categories: %v", got.Categories)
	}

	if err := store.SetCategories(ctx, entry.ID, nil); err != nil {
		t.Fatalf("clear categories: %v", err)
	}
	got, err = store.Get(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Get after clear: %v", err)
	}
	if len(got.Categories) != 0 {
		t.Fatalf("expected cleared categories, got %v", got.Categories)
	}

	if err := store.SetCategories(ctx, "steam-does-not-exist", []string{"x"}); err == nil {
		t.Fatal("expected error for unknown entry")
	}
}
