package artist

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Whitelist holds the station's canonical artist list and a manual
// mapping table of alternate forms that don't resolve through
// canonicalization or word-reordering alone. It is passed explicitly
// to every function that needs it; there is no package-level global
// state or lock (see DESIGN.md's resolution of the artists-module
// Open Question).
type Whitelist struct {
	// canon maps a canonicalized name to its official whitelisted form.
	canon map[string]string
	// mappings maps a canonicalized alternate form to the canonicalized
	// form of its whitelist target.
	mappings map[string]string
}

// NewWhitelist builds a Whitelist from a sequence of canonical artist
// names. It returns an error if two names canonicalize to the same
// key (a whitelist collision must be resolved before the list is
// usable).
func NewWhitelist(names []string) (*Whitelist, error) {
	canon := make(map[string]string, len(names))
	for _, name := range names {
		key := Canonicalize(name)
		if existing, ok := canon[key]; ok {
			return nil, fmt.Errorf("artist whitelist collision: %q and %q", existing, name)
		}
		canon[key] = name
	}
	return &Whitelist{canon: canon, mappings: make(map[string]string)}, nil
}

// ReadWhitelistFile parses a whitelist file: one canonical name per
// line, UTF-8, blank lines and "#"-prefixed comments ignored.
func ReadWhitelistFile(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// AddMapping registers a manual mapping from an alternate artist-name
// form to a name that must already resolve in the whitelist.
// Grounded on artist-mappings' "before »»» after" entries, minus the
// legacy file format and on-disk persistence machinery.
func (w *Whitelist) AddMapping(before, after string) error {
	afterStd := w.standardizeSimple(after)
	if afterStd == "" {
		return fmt.Errorf("mapping target %q does not resolve in the whitelist", after)
	}
	w.mappings[Canonicalize(before)] = Canonicalize(after)
	return nil
}

// standardizeSimple looks up name's canonical form directly in the
// whitelist, then in the mapping table.
func (w *Whitelist) standardizeSimple(name string) string {
	key := Canonicalize(name)
	if std, ok := w.canon[key]; ok {
		return std
	}
	if target, ok := w.mappings[key]; ok {
		return w.canon[target]
	}
	return ""
}

// Standardize attempts to resolve artistName to its official
// whitelisted form: first directly, then via two word-reorderings
// ("John Lee Hooker" -> "Hooker, John Lee" and "Cave, Nick & the Bad
// Seeds" -> "Nick Cave & the Bad Seeds"), then via the manual mapping
// table. Returns ("", false) if nothing resolves.
func (w *Whitelist) Standardize(artistName string) (string, bool) {
	name := strings.TrimSpace(artistName)
	if std := w.standardizeSimple(name); std != "" {
		return std, true
	}

	words := strings.Fields(name)
	if len(words) > 1 {
		reordered := append([]string{words[len(words)-1]}, words[:len(words)-1]...)
		if std := w.standardizeSimple(strings.Join(reordered, " ")); std != "" {
			return std, true
		}
	}
	if len(words) > 2 {
		reordered := append([]string{words[1], words[0]}, words[2:]...)
		if std := w.standardizeSimple(strings.Join(reordered, " ")); std != "" {
			return std, true
		}
	}
	return "", false
}

// IsStandardized reports whether artistName is already exactly equal
// to its standardized form.
func (w *Whitelist) IsStandardized(artistName string) bool {
	std, ok := w.Standardize(artistName)
	return ok && std == artistName
}

// splitPatterns match a "feat."/"ft."/"featuring"/"with"/"w/"/
// "and"/"&" separator followed by the guest credit, optionally
// wrapped in parens or brackets.
var splitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\(\s*((feat\.?)|(ft\.)|(featuring)|(with)|(w/)|(and)|(&))\s+(?P<feat>[^)]*)\)`),
	regexp.MustCompile(`(?i)\[\s*((feat\.?)|(ft\.)|(featuring)|(with)|(w/)|(and)|(&))\s+(?P<feat>[^\]]*)\]`),
	regexp.MustCompile(`(?i)\s*((feat\.?)|(ft\.)|(featuring)|(with)|(w/)|(and)|(&))\s+(?P<feat>.*)`),
}

// Split guesses how to peel a guest-artist credit off artistName,
// without consulting the whitelist: the returned primary part is not
// guaranteed to be standardized. Returns ("", "", false) if there is
// no plausible secondary part. Use SplitAndStandardize for a
// whitelist-checked result.
func Split(artistName string) (head, tail string, ok bool) {
	for _, pattern := range splitPatterns {
		loc := pattern.FindStringSubmatchIndex(artistName)
		if loc == nil {
			continue
		}
		start := loc[0]
		featIdx := pattern.SubexpIndex("feat")
		featStart, featEnd := loc[2*featIdx], loc[2*featIdx+1]
		return strings.TrimSpace(artistName[:start]), strings.TrimSpace(artistName[featStart:featEnd]), true
	}
	return "", "", false
}

// SplitAndStandardize splits artistName into a standardized primary
// part and an unstandardized secondary part, preferring the longest
// head that standardizes successfully. If artistName itself
// standardizes as a whole, there is no secondary part.
func (w *Whitelist) SplitAndStandardize(artistName string) (head, tail string, ok bool) {
	if std, found := w.Standardize(artistName); found {
		return std, "", true
	}

	var bestHead, bestTail string
	found := false

	for _, pattern := range splitPatterns {
		featIdx := pattern.SubexpIndex("feat")
		pos := 0
		for pos <= len(artistName) {
			loc := pattern.FindStringSubmatchIndex(artistName[pos:])
			if loc == nil {
				break
			}
			start := pos + loc[0]
			featStart, featEnd := pos+loc[2*featIdx], pos+loc[2*featIdx+1]

			candidateHead := artistName[:start]
			if std, stdOK := w.Standardize(candidateHead); stdOK {
				if !found || len(std) > len(bestHead) {
					bestHead = std
					bestTail = strings.TrimSpace(artistName[featStart:featEnd])
					found = true
				}
			}
			pos = start + 1
		}
	}
	if !found {
		return "", "", false
	}
	return bestHead, bestTail, true
}

// CheckCollisions returns every whitelist entry whose canonical form
// equals Canonicalize(name). More than one result means the whitelist
// itself has a collision that must be resolved by an operator.
func (w *Whitelist) CheckCollisions(name string) []string {
	key := Canonicalize(name)
	var out []string
	if std, ok := w.canon[key]; ok {
		out = append(out, std)
	}
	return out
}

// All returns every whitelisted artist name.
func (w *Whitelist) All() []string {
	out := make([]string, 0, len(w.canon))
	for _, v := range w.canon {
		out = append(out, v)
	}
	return out
}
