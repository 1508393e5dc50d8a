package scanner

import (
	"strings"
)

// contextRadius is the raw-character window kept on each side of a
// call-verb match.
const contextRadius = 40

// scanCalls finds database-client verb invocations in raw file text,
// independent of the token stream. Line numbers come from counting
// newlines before the match; the context window is clamped to file bounds.
func (s *FileScanner) scanCalls(src []byte) []Finding {
	text := string(src)
	matches := s.callRe.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return nil
	}
	out := make([]Finding, 0, len(matches))
	for _, m := range matches {
		start, end := m[2], m[3] // verb capture group
		lo := start - contextRadius
		if lo < 0 {
			lo = 0
		}
		hi := end + contextRadius
		if hi > len(text) {
			hi = len(text)
		}
		out = append(out, Finding{
			Kind:    KindCall,
			Line:    1 + strings.Count(text[:start], "\n"),
			Verb:    strings.ToLower(text[start:end]),
			Context: NormalizeText(text[lo:hi]),
		})
	}
	return out
}
