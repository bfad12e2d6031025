package metadata

import (
	"context"
	"strings"

	"onyx/internal/library"
	"onyx/internal/logging"
)

// Outcome classifies a best-match result.
type Outcome string

const (
	// OutcomeMatched means confidence cleared the floor and the best
	// candidate can be auto-accepted.
	OutcomeMatched Outcome = "matched"
	// OutcomeAmbiguous means candidates exist but confidence fell below the
	// floor; manual resolution is required.
	OutcomeAmbiguous Outcome = "ambiguous"
	// OutcomeUnmatched means no provider produced a candidate.
	OutcomeUnmatched Outcome = "unmatched"
)

const (
	yearCorroboration     = 0.15
	platformCorroboration = 0.05
	maxAlternatives       = 8
)

// Match is the result of a confidence-gated best-match selection.
type Match struct {
	Best         *Candidate
	Confidence   float64
	Alternatives []Candidate
	Outcome      Outcome
}

// MatchBest searches providers and selects the top candidate, deriving a
// confidence value from title similarity plus year and platform
// corroboration. Below the configured floor the match is reported ambiguous
// rather than auto-accepted.
func (r *Resolver) MatchBest(ctx context.Context, query Query) (Match, error) {
	candidates, err := r.Search(ctx, query)
	if err != nil {
		return Match{}, err
	}
	if len(candidates) == 0 {
		return Match{Outcome: OutcomeUnmatched}, nil
	}

	best := candidates[0]
	confidence := titleSimilarity(query.Title, best.Title)
	if query.Year > 0 && best.Year == query.Year {
		confidence += yearCorroboration
	}
	if query.Platform != "" && best.PlatformHint != "" && strings.EqualFold(query.Platform, best.PlatformHint) {
		confidence += platformCorroboration
	}
	if confidence > 1 {
		confidence = 1
	}

	alternatives := candidates[1:]
	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}

	outcome := OutcomeMatched
	if confidence < r.confidenceFloor {
		outcome = OutcomeAmbiguous
	}

	r.logger.Info("best match selected",
		logging.String("title", query.Title),
		logging.String("candidate", best.Title),
		logging.String("provider", best.Provider),
		logging.Float64("confidence", confidence),
		logging.String("outcome", string(outcome)))

	return Match{
		Best:         &best,
		Confidence:   confidence,
		Alternatives: alternatives,
		Outcome:      outcome,
	}, nil
}

// ToLibraryMetadata converts a chosen candidate's descriptive fields into a
// library metadata patch. Asset URLs are attached separately after caching.
func ToLibraryMetadata(candidate Candidate) library.Metadata {
	return library.Metadata{
		Title:          candidate.Title,
		Description:    candidate.Description,
		ReleaseDate:    candidate.ReleaseDate,
		Genres:         candidate.Genres,
		Developers:     candidate.Developers,
		Publishers:     candidate.Publishers,
		AgeRating:      candidate.AgeRating,
		CriticScore:    candidate.CriticScore,
		CommunityScore: candidate.CommScore,
	}
}
