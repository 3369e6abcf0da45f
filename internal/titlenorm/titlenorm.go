// Package titlenorm standardizes album and track title strings of the
// form "Title String [Maybe a Tag] [Maybe Another Tag] ...", and
// splits/appends around the bracketed tag suffix. Grounded on
// chirp/library/titles.py.
package titlenorm

import (
	"regexp"
	"strings"
)

var (
	whitespaceRE    = regexp.MustCompile(`\s+`)
	tagLeadingWSRE  = regexp.MustCompile(`\[\s+`)
	tagTrailingWSRE = regexp.MustCompile(`\s+\]`)
	beforeTagRE     = regexp.MustCompile(`(\S)\[`)
	textRE          = regexp.MustCompile(`^[^\[\]]+(\s\[[^\]]+\])*$`)
	tagRE           = regexp.MustCompile(`\[([^\]]+)\]`)
)

// Standardize puts a title into the station's standard form: single
// internal spaces, trimmed edges, curly quotes normalized to straight
// ones, exactly one space before each bracketed tag and between
// adjacent tags. Returns ("", false) if the result doesn't match the
// required "text [tag] [tag] ..." grammar.
func Standardize(text string) (string, bool) {
	text = whitespaceRE.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	text = strings.ReplaceAll(text, "”", `"`)
	text = strings.ReplaceAll(text, "’’", `"`)
	text = strings.ReplaceAll(text, "''", `"`)
	text = strings.ReplaceAll(text, "’", "'")

	text = tagLeadingWSRE.ReplaceAllString(text, "[")
	text = tagTrailingWSRE.ReplaceAllString(text, "]")
	text = strings.ReplaceAll(text, "][", "] [")
	text = beforeTagRE.ReplaceAllString(text, "$1 [")

	if !textRE.MatchString(text) {
		return "", false
	}
	return text, true
}

// Append inserts toAppend into a standardized title just before its
// first bracketed tag (or at the end, if it has none).
func Append(text, toAppend string) string {
	idx := strings.IndexByte(text, '[')
	if idx == -1 {
		return text + toAppend
	}
	return strings.TrimSpace(text[:idx]) + toAppend + " " + text[idx:]
}

// SplitTags splits a standardized title into its bare text and the
// ordered list of bracketed tag contents.
func SplitTags(text string) (string, []string) {
	matches := tagRE.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text, nil
	}
	tags := make([]string, len(matches))
	for i, m := range matches {
		tags[i] = m[1]
	}
	idx := strings.IndexByte(text, '[')
	return strings.TrimSpace(text[:idx]), tags
}
