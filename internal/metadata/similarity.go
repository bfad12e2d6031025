package metadata

import (
	"strings"
	"unicode"
)

// titleSimilarity returns a 0..1 similarity between two titles based on edit
// distance over normalized forms. Identical normalized titles score 1.
func titleSimilarity(a, b string) float64 {
	na := normalizeForComparison(a)
	nb := normalizeForComparison(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	distance := levenshtein(na, nb)
	maxLen := len(na)
	if len(nb) > maxLen {
		maxLen = len(nb)
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// normalizeForComparison lowercases a title, strips edition noise, and drops
// everything but letters and digits.
func normalizeForComparison(s string) string {
	s = strings.ToLower(s)

	noise := []string{
		"(demo)", "(beta)", "(early access)",
		"game of the year edition", "goty edition", "goty",
		"definitive edition", "enhanced edition", "remastered",
		"deluxe edition", "complete edition", "ultimate edition",
	}
	for _, token := range noise {
		s = strings.ReplaceAll(s, token, "")
	}

	var builder strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// levenshtein computes the edit distance between two normalized strings
// using two rolling rows.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	lenA, lenB := len(a), len(b)
	prev := make([]int, lenB+1)
	curr := make([]int, lenB+1)

	for j := 0; j <= lenB; j++ {
		prev[j] = j
	}

	for i := 1; i <= lenA; i++ {
		curr[0] = i
		for j := 1; j <= lenB; j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			deletion := prev[j] + 1
			insertion := curr[j-1] + 1
			substitution := prev[j-1] + cost

			best := deletion
			if insertion < best {
				best = insertion
			}
			if substitution < best {
				best = substitution
			}
			curr[j] = best
		}
		prev, curr = curr, prev
	}

	return prev[lenB]
}
