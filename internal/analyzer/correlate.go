package analyzer

import (
	"regexp"
	"strings"

	"github.com/ppiankov/sqlspectre/internal/scanner"
)

var (
	quotedRe   = regexp.MustCompile(`'([^']*)'`)
	wsCollapse = regexp.MustCompile(`\s+`)
)

// dedupeLiterals drops unattributed string/heredoc findings whose text is
// already visible inside a call-site context window in the same file. The
// same SQL often appears both as a bare literal and embedded in a call
// context; only the unattributed duplicate is noise. Findings with a
// resolved variable are never dropped: the variable binding carries value
// the call finding lacks.
func dedupeLiterals(literals, calls []scanner.Finding) []scanner.Finding {
	if len(literals) == 0 {
		return nil
	}

	quotedInCalls := make(map[string]struct{})
	contexts := make([]string, 0, len(calls))
	for _, c := range calls {
		contexts = append(contexts, strings.ToLower(c.Context))
		for _, m := range quotedRe.FindAllStringSubmatch(c.Context, -1) {
			quotedInCalls[looseNormalize(m[1])] = struct{}{}
		}
	}

	kept := make([]scanner.Finding, 0, len(literals))
	for _, f := range literals {
		if f.Variable != "" {
			kept = append(kept, f)
			continue
		}
		if _, ok := quotedInCalls[looseNormalize(f.Snippet)]; ok {
			continue
		}
		if containedInAny(contexts, strings.ToLower(f.Snippet)) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func containedInAny(haystacks []string, needle string) bool {
	if needle == "" {
		return false
	}
	for _, h := range haystacks {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}

// looseNormalize reduces text for equality comparison: trim, collapse
// whitespace, lowercase, strip a single layer of wrapping quote or
// bracket punctuation.
func looseNormalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(wsCollapse.ReplaceAllString(s, " ")))
	if len(s) >= 2 {
		if closer, ok := wrapPairs[s[0]]; ok && s[len(s)-1] == closer {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

var wrapPairs = map[byte]byte{
	'\'': '\'',
	'"':  '"',
	'`':  '`',
	'(':  ')',
	'[':  ']',
	'{':  '}',
}
