package metadata

import (
	"sort"
	"strings"
)

const exactTitleBonus = 250

// scoreBand assigns final scores to one provider's candidates. The band base
// dominates, an exact case-insensitive title match earns a bonus that can
// reorder within the band but never across bands, and a position penalty
// preserves the provider's own relevance order among near-matches.
func scoreBand(query string, kind Kind, candidates []Candidate) {
	queryFolded := foldTitle(query)
	base := kind.bandBase()
	for i := range candidates {
		score := base - i
		if foldTitle(candidates[i].Title) == queryFolded {
			score += exactTitleBonus
		}
		candidates[i].Score = score
	}
}

// sortCandidates orders the merged candidate union by final score,
// descending. The sort is stable so equal scores keep provider registration
// order, which already encodes band priority.
func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
}

func foldTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
