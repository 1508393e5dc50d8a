package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/sqlspectre/internal/scanner"
)

// varShapeRe matches variable-shaped substrings in a normalized context
// window. The sigil requirement keeps double-colon type casts (id::text)
// from ever matching.
var varShapeRe = regexp.MustCompile(`[$@%]\{?([A-Za-z_][A-Za-z0-9_]*)\}?`)

// detectMissing flags variables referenced in call contexts that no
// surviving literal finding declares. Precision over recall: a variable
// declared through an idiom the resolver does not recognize will be
// reported anyway, so this is a signal, not a proof of absence.
func (m *matcher) detectMissing(findings []scanner.Finding) []scanner.Finding {
	declared := make(map[string]struct{})
	for _, f := range findings {
		if (f.Kind == scanner.KindString || f.Kind == scanner.KindHeredoc) && f.Variable != "" {
			declared[scanner.VarName(f.Variable)] = struct{}{}
		}
	}

	emitted := make(map[string]struct{})
	var out []scanner.Finding
	for _, c := range findings {
		if c.Kind != scanner.KindCall {
			continue
		}
		for _, idx := range varShapeRe.FindAllStringSubmatchIndex(c.Context, -1) {
			name := c.Context[idx[2]:idx[3]]
			// package-qualified variables resolve elsewhere; skip them
			if end := idx[1]; end+1 < len(c.Context) && c.Context[end:end+2] == "::" {
				continue
			}
			if _, ok := m.ignore[strings.ToLower(name)]; ok {
				continue
			}
			if _, ok := declared[name]; ok {
				continue
			}
			if _, ok := emitted[name]; ok {
				continue
			}
			emitted[name] = struct{}{}
			out = append(out, scanner.Finding{
				Kind:     scanner.KindMissingVariable,
				Variable: name,
				Line:     c.Line,
				Context:  c.Context,
				Note:     fmt.Sprintf("variable $%s is used in a database call but no SQL literal is assigned to it in this file", name),
			})
		}
	}
	return out
}
