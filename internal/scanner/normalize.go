package scanner

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxSnippet caps stored snippet and context text. Longer text is cut and
// marked with a trailing ellipsis, so stored length never exceeds
// maxSnippet+3.
const maxSnippet = 200

var spaceRun = regexp.MustCompile(`\s+`)

// NormalizeText prepares raw source text for storage in a finding:
// whitespace runs collapse to single spaces, embedded double quotes become
// single quotes, and the result is truncated to maxSnippet characters.
func NormalizeText(s string) string {
	s = spaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	s = strings.ReplaceAll(s, `"`, "'")
	if len(s) <= maxSnippet {
		return s
	}
	cut := maxSnippet
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
