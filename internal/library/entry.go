package library

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"onyx/internal/scan"
)

// Entry is a durable library record for one installed game.
type Entry struct {
	ID          string
	Title       string
	PlatformTag string
	Source      string
	SourceAppID string
	InstallPath string
	ExePath     string

	BoxArtURL string
	BannerURL string
	LogoURL   string
	HeroURL   string

	Description    string
	ReleaseDate    string
	Genres         []string
	Developers     []string
	Publishers     []string
	AgeRating      string
	CriticScore    float64
	CommunityScore float64

	PlaytimeSeconds int64
	LastPlayed      *time.Time
	Favorite        bool
	Hidden          bool
	Categories      []string

	// LockedFields holds field names excluded from bulk overwrite. Field
	// names follow the Field* constants below.
	LockedFields []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Lockable field names. These are the only values valid in LockedFields.
const (
	FieldTitle          = "title"
	FieldBoxArtURL      = "boxArtUrl"
	FieldBannerURL      = "bannerUrl"
	FieldLogoURL        = "logoUrl"
	FieldHeroURL        = "heroUrl"
	FieldDescription    = "description"
	FieldReleaseDate    = "releaseDate"
	FieldGenres         = "genres"
	FieldDevelopers     = "developers"
	FieldPublishers     = "publishers"
	FieldAgeRating      = "ageRating"
	FieldCriticScore    = "criticScore"
	FieldCommunityScore = "communityScore"
)

// LockableFields lists every field name accepted by SetFieldLocks.
var LockableFields = []string{
	FieldTitle,
	FieldBoxArtURL,
	FieldBannerURL,
	FieldLogoURL,
	FieldHeroURL,
	FieldDescription,
	FieldReleaseDate,
	FieldGenres,
	FieldDevelopers,
	FieldPublishers,
	FieldAgeRating,
	FieldCriticScore,
	FieldCommunityScore,
}

// IsLocked reports whether the named field is excluded from bulk overwrite.
func (e *Entry) IsLocked(field string) bool {
	for _, locked := range e.LockedFields {
		if locked == field {
			return true
		}
	}
	return false
}

// EntryID derives the stable entry id for a source and app id. When the
// source has no app id the caller should use NewOpaqueID instead.
func EntryID(source scan.Source, sourceAppID string) string {
	sourceAppID = strings.TrimSpace(sourceAppID)
	if sourceAppID == "" {
		return ""
	}
	return fmt.Sprintf("%s-%s", source, sourceAppID)
}

// NewOpaqueID generates an id for entries with no source app id. The prefix
// keeps manual entries recognizable in the cache directory and locators.
func NewOpaqueID(source scan.Source) string {
	return fmt.Sprintf("%s-%s", source, uuid.NewString())
}

// IDForScan returns the entry id a scan result reconciles to, generating an
// opaque id when the source provides no stable app id.
func IDForScan(result scan.Result) string {
	if id := EntryID(result.Source, result.SourceAppID); id != "" {
		return id
	}
	return NewOpaqueID(result.Source)
}

// FromScan builds a fresh entry from a scan result.
func FromScan(result scan.Result) *Entry {
	title := strings.TrimSpace(result.Title)
	if title == "" {
		title = result.OriginalName
	}
	return &Entry{
		ID:          IDForScan(result),
		Title:       title,
		PlatformTag: string(result.Source),
		Source:      string(result.Source),
		SourceAppID: result.SourceAppID,
		InstallPath: result.InstallPath,
		ExePath:     result.ExePath,
	}
}
