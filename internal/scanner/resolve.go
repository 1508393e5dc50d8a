package scanner

import (
	"strings"

	"github.com/ppiankov/sqlspectre/internal/lexis"
)

// resolveAssignment walks the token stream backward from the literal at
// idx to find the variable the literal is assigned to. This is a
// single-statement heuristic, not data-flow analysis: only direct
// "target = literal" forms resolve.
//
// The walk stops unresolved on a statement terminator or block boundary.
// Otherwise it stops at the first assignment operator and continues
// backward from there: a variable token resolves directly; a declaration
// keyword resolves to the first variable following it before a terminator;
// a list separator gives up, so a literal inside a multi-target assignment
// is never misattributed.
func resolveAssignment(tree *lexis.Tree, idx int) (string, bool) {
	op := -1
	for j := idx - 1; j >= 0; j-- {
		tok := tree.At(j)
		if isBoundary(tok) {
			return "", false
		}
		if tok.Kind == lexis.Operator && tok.Assign {
			op = j
			break
		}
	}
	if op < 0 {
		return "", false
	}
	for j := op - 1; j >= 0; j-- {
		tok := tree.At(j)
		switch {
		case tok.Kind == lexis.Variable:
			return VarName(tok.Text), true
		case tok.Kind == lexis.Word && tok.Decl != lexis.DeclNone:
			return declarationTarget(tree, j)
		case isListSeparator(tok), isBoundary(tok):
			return "", false
		}
	}
	return "", false
}

// declarationTarget scans forward from a declaration keyword for the
// variable being declared.
func declarationTarget(tree *lexis.Tree, declIdx int) (string, bool) {
	for j := declIdx + 1; j < tree.Len(); j++ {
		tok := tree.At(j)
		if tok.Kind == lexis.Variable {
			return VarName(tok.Text), true
		}
		if tok.Kind == lexis.Delimiter && tok.Text == ";" {
			break
		}
	}
	return "", false
}

func isBoundary(t lexis.Token) bool {
	if t.Kind != lexis.Delimiter {
		return false
	}
	return t.Text == ";" || t.Text == "{" || t.Text == "}"
}

func isListSeparator(t lexis.Token) bool {
	return t.Kind == lexis.Delimiter && t.Text == ","
}

// VarName reduces a variable token to its correlation key: leading sigil
// characters and one pair of enclosing braces are stripped.
func VarName(raw string) string {
	s := strings.TrimLeft(raw, "$@%")
	if len(s) >= 2 && strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		s = s[1 : len(s)-1]
	}
	return s
}
