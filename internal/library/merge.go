package library

import (
	"context"
	"fmt"
	"strings"

	"onyx/internal/scan"
)

// Metadata carries resolved metadata for one game. Empty string and zero
// values mean "no value resolved" and leave the corresponding entry field
// untouched.
type Metadata struct {
	Title          string
	BoxArtURL      string
	BannerURL      string
	LogoURL        string
	HeroURL        string
	Description    string
	ReleaseDate    string
	Genres         []string
	Developers     []string
	Publishers     []string
	AgeRating      string
	CriticScore    float64
	CommunityScore float64
}

// MergeFromScan merges a scan result into the store. When no entry exists for
// the result a fresh entry is created with scan-derived fields. When an entry
// exists the install and executable paths are refreshed; titles, metadata,
// and user state are preserved. If the result carries a derivable id that
// differs from the existing row's (a manual entry later matched to a store
// app id), the row migrates to the derived id and the old row is removed
// atomically. Merging the same result twice is a no-op the second time.
func (s *Store) MergeFromScan(ctx context.Context, result scan.Result) (*Entry, bool, error) {
	existing, err := s.findForScan(ctx, result)
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		entry := FromScan(result)
		if err := s.Upsert(ctx, entry); err != nil {
			return nil, false, fmt.Errorf("insert scanned entry: %w", err)
		}
		return entry, true, nil
	}

	changed := false
	if derived := EntryID(result.Source, result.SourceAppID); derived != "" && derived != existing.ID {
		// The install gained a derivable id, e.g. a manual entry later
		// matched to a store app id. Rebuild the row under the derived id;
		// Upsert removes the superseded row in the same transaction.
		if existing.PlatformTag == existing.Source {
			existing.PlatformTag = string(result.Source)
		}
		existing.ID = derived
		existing.Source = string(result.Source)
		existing.SourceAppID = result.SourceAppID
		changed = true
	}
	if result.InstallPath != "" && existing.InstallPath != result.InstallPath {
		existing.InstallPath = result.InstallPath
		changed = true
	}
	if result.ExePath != "" && existing.ExePath != result.ExePath {
		existing.ExePath = result.ExePath
		changed = true
	}
	if result.SourceAppID != "" && existing.SourceAppID == "" {
		existing.SourceAppID = result.SourceAppID
		changed = true
	}
	if !changed {
		return existing, false, nil
	}
	if err := s.Upsert(ctx, existing); err != nil {
		return nil, false, fmt.Errorf("refresh scanned entry: %w", err)
	}
	return existing, false, nil
}

// findForScan locates the entry a scan result belongs to: deterministic id
// first, then the normalized executable path for sources with no app id.
func (s *Store) findForScan(ctx context.Context, result scan.Result) (*Entry, error) {
	if id := EntryID(result.Source, result.SourceAppID); id != "" {
		entry, err := s.Get(ctx, id)
		if err != nil || entry != nil {
			return entry, err
		}
	}
	if result.ExePath != "" {
		return s.FindByExePath(ctx, result.ExePath)
	}
	return nil, nil
}

// ApplyMetadata writes resolved metadata onto an entry. Locked fields are
// skipped unless force is set. Returns the field names that were updated.
func (s *Store) ApplyMetadata(ctx context.Context, id string, meta Metadata, force bool) ([]string, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("entry %q not found", id)
	}

	var applied []string
	writable := func(field string) bool {
		return force || !entry.IsLocked(field)
	}

	if title := strings.TrimSpace(meta.Title); title != "" && writable(FieldTitle) && entry.Title != title {
		entry.Title = title
		applied = append(applied, FieldTitle)
	}
	if meta.BoxArtURL != "" && writable(FieldBoxArtURL) && entry.BoxArtURL != meta.BoxArtURL {
		entry.BoxArtURL = meta.BoxArtURL
		applied = append(applied, FieldBoxArtURL)
	}
	if meta.BannerURL != "" && writable(FieldBannerURL) && entry.BannerURL != meta.BannerURL {
		entry.BannerURL = meta.BannerURL
		applied = append(applied, FieldBannerURL)
	}
	if meta.LogoURL != "" && writable(FieldLogoURL) && entry.LogoURL != meta.LogoURL {
		entry.LogoURL = meta.LogoURL
		applied = append(applied, FieldLogoURL)
	}
	if meta.HeroURL != "" && writable(FieldHeroURL) && entry.HeroURL != meta.HeroURL {
		entry.HeroURL = meta.HeroURL
		applied = append(applied, FieldHeroURL)
	}
	if meta.Description != "" && writable(FieldDescription) && entry.Description != meta.Description {
		entry.Description = meta.Description
		applied = append(applied, FieldDescription)
	}
	if meta.ReleaseDate != "" && writable(FieldReleaseDate) && entry.ReleaseDate != meta.ReleaseDate {
		entry.ReleaseDate = meta.ReleaseDate
		applied = append(applied, FieldReleaseDate)
	}
	if len(meta.Genres) > 0 && writable(FieldGenres) && !equalList(entry.Genres, meta.Genres) {
		entry.Genres = meta.Genres
		applied = append(applied, FieldGenres)
	}
	if len(meta.Developers) > 0 && writable(FieldDevelopers) && !equalList(entry.Developers, meta.Developers) {
		entry.Developers = meta.Developers
		applied = append(applied, FieldDevelopers)
	}
	if len(meta.Publishers) > 0 && writable(FieldPublishers) && !equalList(entry.Publishers, meta.Publishers) {
		entry.Publishers = meta.Publishers
		applied = append(applied, FieldPublishers)
	}
	if meta.AgeRating != "" && writable(FieldAgeRating) && entry.AgeRating != meta.AgeRating {
		entry.AgeRating = meta.AgeRating
		applied = append(applied, FieldAgeRating)
	}
	if meta.CriticScore > 0 && writable(FieldCriticScore) && entry.CriticScore != meta.CriticScore {
		entry.CriticScore = meta.CriticScore
		applied = append(applied, FieldCriticScore)
	}
	if meta.CommunityScore > 0 && writable(FieldCommunityScore) && entry.CommunityScore != meta.CommunityScore {
		entry.CommunityScore = meta.CommunityScore
		applied = append(applied, FieldCommunityScore)
	}

	if len(applied) == 0 {
		return nil, nil
	}
	if err := s.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("apply metadata: %w", err)
	}
	return applied, nil
}

func equalList(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
