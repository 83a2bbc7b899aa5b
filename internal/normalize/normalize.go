// Package normalize derives the canonical comparison key used to decide
// whether two free-form song or artist strings name the same thing.
package normalize

import (
	"regexp"
	"strings"
)

var (
	featMarker = regexp.MustCompile(`(?i)feat\.?|ft\.?|featuring`)
	nonAllowed = regexp.MustCompile(`[^a-z0-9\s]`)
	spaceRuns  = regexp.MustCompile(`\s+`)
)

// Normalize lower-cases s, strips feature-credit markers ("feat", "feat.",
// "ft", "ft.", "featuring"), drops everything that is not a lowercase ASCII
// letter, digit or whitespace, collapses whitespace runs and trims.
// Equality of normalized forms is the dedup criterion; it is intentionally
// strict, no fuzzy matching.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = featMarker.ReplaceAllString(s, "")
	s = nonAllowed.ReplaceAllString(s, "")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Key returns the normalized pair for a song/artist submission.
func Key(song, artist string) (string, string) {
	return Normalize(song), Normalize(artist)
}
