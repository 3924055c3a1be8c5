package catalog

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DurationUnknown is the sentinel returned by NormalizeDuration when the
// upstream catalog did not report a usable duration.
const DurationUnknown = 0

var (
	// bracketPattern matches one bracketed annotation: "(Live)",
	// "[Remastered 2011]", "{Official Video}". Applied repeatedly so
	// nested brackets are stripped inside-out.
	bracketPattern = regexp.MustCompile(`\([^()]*\)|\[[^\[\]]*\]|\{[^{}]*\}`)

	// featPattern matches a featuring credit and everything after it.
	// Runs against lowercased input.
	featPattern = regexp.MustCompile(`\b(?:feat|ft|featuring)\b\.?\s*.*$`)

	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// NormalizeText canonicalizes a free-text title or artist name for
// comparison: lowercases, strips bracketed annotations and featuring
// credits, folds diacritics to base Latin letters, drops punctuation except
// apostrophes inside words, and collapses whitespace. It is idempotent and
// returns an empty string for input that is nothing but annotation.
func NormalizeText(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("’", "'", "‘", "'", "`", "'").Replace(s)

	for {
		stripped := bracketPattern.ReplaceAllString(s, " ")
		if stripped == s {
			break
		}
		s = stripped
	}

	s = featPattern.ReplaceAllString(s, "")
	s = foldDiacritics(s)
	s = stripPunctuation(s)

	return strings.TrimSpace(multiSpacePattern.ReplaceAllString(s, " "))
}

// NormalizeDuration passes through positive durations and maps everything
// else to DurationUnknown. The community catalog reports zero for videos
// whose duration could not be determined, so zero is never treated as a
// real length.
func NormalizeDuration(seconds int) int {
	if seconds <= 0 {
		return DurationUnknown
	}
	return seconds
}

// foldDiacritics decomposes the string and removes combining marks, so
// "déjà" becomes "deja". Characters that do not decompose to a base Latin
// letter pass through unchanged.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// stripPunctuation removes everything except letters, digits and spaces,
// keeping apostrophes that sit inside a word ("don't"). Removed runes
// become spaces so adjacent words do not fuse.
func stripPunctuation(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range rs {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'' && i > 0 && i < len(rs)-1 && unicode.IsLetter(rs[i-1]) && unicode.IsLetter(rs[i+1]):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(' ')
		}
	}
	return b.String()
}
