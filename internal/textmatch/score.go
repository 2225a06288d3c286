package textmatch

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize collapses every whitespace run to a single space, lower-cases
// the text and trims it. Punctuation is kept.
func Normalize(text string) string {
	return cases.Lower(language.Und).String(strings.Join(strings.Fields(text), " "))
}

// Containment scores how much of contained is present in container.
// Both arguments are raw texts and are normalized first.
func Containment(container, contained string) float64 {
	return score(newDocument("", container), newDocument("", contained))
}

// Qualifies reports whether score reaches threshold (inclusive).
func Qualifies(score, threshold float64) bool {
	return score >= threshold
}

// document is a normalized text together with its word set.
type document struct {
	path  string
	text  string
	words map[string]struct{}
}

func newDocument(path, raw string) *document {
	text := Normalize(raw)
	words := make(map[string]struct{})
	for _, w := range strings.Split(text, " ") {
		if w != "" {
			words[w] = struct{}{}
		}
	}
	return &document{path: path, text: text, words: words}
}

// score is the containment of contained in container.
func score(container, contained *document) float64 {
	if contained.text == "" || len(contained.words) == 0 {
		return 0
	}
	if strings.Contains(container.text, contained.text) {
		return 1
	}
	common := 0
	for w := range contained.words {
		if _, ok := container.words[w]; ok {
			common++
		}
	}
	return float64(common) / float64(len(contained.words))
}
