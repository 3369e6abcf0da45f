// Package artist canonicalizes and standardizes artist names against a
// station whitelist: lookup, fuzzy suggestion, and "feat."-style
// splitting of guest credits. Grounded on chirp/library/similarity.py
// and chirp/library/artists_old.py (the newer, mappings-table-only
// contract confirmed by artists_new_test.py — see DESIGN.md).
package artist

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Canonicalize folds an artist name down to the key used for
// whitelist/mapping lookups: lower-cased, leading/trailing "the"
// stripped, " and " mapped to "&", and everything but letters, digits
// and "&" dropped (diacritics stripped via NFD decomposition). If that
// leaves nothing (an all-punctuation input like "!!!!"), falls back to
// dropping only control and separator characters so distinct
// punctuation strings remain distinguishable.
func Canonicalize(name string) string {
	lower := strings.ToLower(name)
	lower = strings.TrimPrefix(lower, "the ")
	lower = strings.TrimSuffix(lower, " the")
	lower = strings.ReplaceAll(lower, " and ", "&")

	var b strings.Builder
	for _, r := range lower {
		if r == '&' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(stripDiacritic(r))
		}
	}
	if b.Len() == 0 && lower != "" {
		b.Reset()
		for _, r := range lower {
			if !unicode.IsControl(r) && !unicode.IsSpace(r) {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// stripDiacritic returns the base letter of r after NFD decomposition,
// discarding any combining marks.
func stripDiacritic(r rune) rune {
	decomposed := norm.NFD.String(string(r))
	for _, base := range decomposed {
		return base
	}
	return r
}

// SortKey returns a sort key for an artist name with a leading "the "
// ignored, so "The Fall" sorts next to "Fall".
func SortKey(name string) string {
	if strings.HasPrefix(strings.ToLower(name), "the ") {
		return name[4:]
	}
	return name
}
