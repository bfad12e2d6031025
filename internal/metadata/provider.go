package metadata

import "context"

// Kind identifies the priority band a provider belongs to.
type Kind string

const (
	KindFirstPartyStore Kind = "firstPartyStore"
	KindCuratedArt      Kind = "curatedArt"
	KindGeneralDatabase Kind = "generalDatabase"
	KindOpenDatabase    Kind = "openDatabase"
)

// bandBase returns the score floor for a provider kind. Candidates never
// cross bands: the exact-title bonus and position penalties are both smaller
// than the narrowest gap between adjacent bands.
func (k Kind) bandBase() int {
	switch k {
	case KindFirstPartyStore:
		return 3000
	case KindCuratedArt:
		return 2000
	case KindGeneralDatabase:
		return 1000
	case KindOpenDatabase:
		return 500
	default:
		return 0
	}
}

// Query carries the search input for one resolution run.
type Query struct {
	Title       string
	Year        int
	Platform    string
	Source      string
	SourceAppID string
}

// Candidate is a possible metadata match returned by one provider.
type Candidate struct {
	ID         string
	Title      string
	Kind       Kind
	Provider   string
	ExternalID string
	Score      int
	Year       int

	PlatformHint string
	Description  string
	ReleaseDate  string
	Genres       []string
	Developers   []string
	Publishers   []string
	AgeRating    string
	CriticScore  float64
	CommScore    float64
}

// AssetURLs holds the remote art references a provider resolved for one
// candidate. Empty fields mean the provider has no asset of that type.
type AssetURLs struct {
	BoxArt string
	Banner string
	Logo   string
	Hero   string
	Icon   string
}

// Provider is one external metadata source.
type Provider interface {
	// Kind reports the priority band this provider contributes to.
	Kind() Kind
	// Name identifies the provider in logs and candidate provenance.
	Name() string
	// Search returns candidates in the provider's own relevance order.
	Search(ctx context.Context, query Query) ([]Candidate, error)
	// FetchAssets resolves remote asset URLs for a previously returned
	// candidate's external id.
	FetchAssets(ctx context.Context, externalID string) (AssetURLs, error)
}
