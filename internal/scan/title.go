package scan

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// titleFromDir infers a display title from an install directory name.
// Separator characters become spaces; words that are already upper-case
// (acronyms, roman numerals) are kept as-is.
func titleFromDir(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	replacer := strings.NewReplacer("_", " ", "-", " ", ".", " ")
	spaced := replacer.Replace(name)

	words := strings.Fields(spaced)
	for i, word := range words {
		if word == strings.ToUpper(word) && len(word) > 1 {
			continue
		}
		words[i] = titleCaser.String(strings.ToLower(word))
	}
	return strings.Join(words, " ")
}
