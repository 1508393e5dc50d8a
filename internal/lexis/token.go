// Package lexis turns raw source bytes into a flat, navigable stream of
// typed tokens. It understands just enough of the sigil-and-heredoc source
// dialect to support SQL auditing: string and heredoc literals, variable
// symbols, bare words, operators and structural delimiters. Comments and
// POD blocks are consumed and never surface as tokens.
package lexis

// Kind classifies a token.
type Kind uint8

const (
	Word Kind = iota
	Literal
	Heredoc
	Variable
	Operator
	Delimiter
)

// String returns a short label for the kind.
func (k Kind) String() string {
	switch k {
	case Word:
		return "word"
	case Literal:
		return "literal"
	case Heredoc:
		return "heredoc"
	case Variable:
		return "variable"
	case Operator:
		return "operator"
	case Delimiter:
		return "delimiter"
	default:
		return "unknown"
	}
}

// DeclKind identifies a recognized declaration keyword. The set is closed:
// the lexer classifies declaration forms once, so downstream code never
// compares keyword strings.
type DeclKind uint8

const (
	DeclNone DeclKind = iota
	DeclMy
	DeclOur
	DeclLocal
	DeclState
)

var declKeywords = map[string]DeclKind{
	"my":    DeclMy,
	"our":   DeclOur,
	"local": DeclLocal,
	"state": DeclState,
}

// Token is one node in the token stream.
type Token struct {
	Kind  Kind
	Text  string // raw source text (sigils, quotes and markers included)
	Value string // decoded content for Literal/Heredoc, same as Text otherwise
	Line  int    // 1-based, derived from newline count
	Decl  DeclKind
	// Assign marks operators that bind a value to a target (=, .=, ||= ...).
	Assign bool
}

// Tree is an immutable arena of tokens addressed by index. Navigation is
// positional: index i-1 precedes i, i+1 follows it. Indices are only
// meaningful within the tree they came from.
type Tree struct {
	tokens []Token
}

// Len returns the number of tokens.
func (t *Tree) Len() int { return len(t.tokens) }

// At returns a copy of the token at index i.
func (t *Tree) At(i int) Token { return t.tokens[i] }

// FindAll returns the indices of all tokens of the given kind, in source
// order.
func (t *Tree) FindAll(k Kind) []int {
	var out []int
	for i := range t.tokens {
		if t.tokens[i].Kind == k {
			out = append(out, i)
		}
	}
	return out
}
