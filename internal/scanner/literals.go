package scanner

import (
	"github.com/ppiankov/sqlspectre/internal/lexis"
)

// scanLiterals enumerates string and heredoc tokens, keeps the SQL-bearing
// ones and resolves the variable each is assigned to, if any.
func (s *FileScanner) scanLiterals(tree *lexis.Tree) []Finding {
	var out []Finding
	for i := 0; i < tree.Len(); i++ {
		tok := tree.At(i)
		var kind FindingKind
		switch tok.Kind {
		case lexis.Literal:
			kind = KindString
		case lexis.Heredoc:
			kind = KindHeredoc
		default:
			continue
		}
		text := tok.Value
		if text == "" {
			text = tok.Text
		}
		if !s.keywordRe.MatchString(text) {
			continue
		}
		f := Finding{Kind: kind, Line: tok.Line, Snippet: NormalizeText(text)}
		if target, ok := resolveAssignment(tree, i); ok {
			f.Variable = target
		}
		out = append(out, f)
	}
	return out
}
