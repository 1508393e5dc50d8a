package lexis

import (
	"bytes"
	"errors"
	"strings"
)

// ErrBinaryContent is returned for input that is clearly not source text.
var ErrBinaryContent = errors.New("binary content")

// Parse tokenizes src into a Tree. Line numbers are 1-based and counted
// from the input's own newlines. The only parse failure is binary input;
// malformed source (unterminated strings, heredocs reaching EOF without
// their marker) is tokenized best-effort.
func Parse(src []byte) (*Tree, error) {
	if bytes.IndexByte(src, 0) >= 0 {
		return nil, ErrBinaryContent
	}
	l := &lexer{src: src, line: 1}
	l.run()
	return &Tree{tokens: l.tokens}, nil
}

type pendingHeredoc struct {
	marker string
	strip  bool // <<~ form
	index  int  // heredoc token awaiting its body
}

type lexer struct {
	src     []byte
	pos     int
	line    int
	tokens  []Token
	pending []pendingHeredoc
}

func (l *lexer) run() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.pos++
			l.line++
			l.drainHeredocs()
			continue
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
			continue
		case c == '#':
			l.skipToEOL()
			continue
		case c == '=' && l.atLineStart() && l.pos+1 < len(l.src) && isAlpha(l.src[l.pos+1]):
			l.skipPOD()
			continue
		}
		switch {
		case c == '\'' || c == '"' || c == '`':
			l.lexQuoted(c)
		case c == '<' && l.tryHeredoc():
			// heredoc token emitted, body drained at next newline
		case c == '$' || c == '@' || c == '%':
			l.lexSigil()
		case isAlpha(c) || c == '_':
			l.lexWord()
		case c >= '0' && c <= '9':
			l.lexNumber()
		default:
			l.lexOperator()
		}
	}
	l.drainHeredocs()
}

func (l *lexer) atLineStart() bool {
	return l.pos == 0 || l.src[l.pos-1] == '\n'
}

func (l *lexer) emit(k Kind, text string) {
	l.tokens = append(l.tokens, Token{Kind: k, Text: text, Value: text, Line: l.line})
}

func (l *lexer) skipToEOL() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
}

// skipPOD consumes a documentation block from a line-leading =directive
// through the line after =cut.
func (l *lexer) skipPOD() {
	for l.pos < len(l.src) {
		start := l.pos
		l.skipToEOL()
		line := strings.TrimRight(string(l.src[start:l.pos]), " \t\r")
		if l.pos < len(l.src) {
			l.pos++
			l.line++
		}
		if line == "=cut" || strings.HasPrefix(line, "=cut ") {
			return
		}
	}
}

func (l *lexer) lexQuoted(q byte) {
	start := l.pos
	startLine := l.line
	var val []byte
	i := l.pos + 1
	for i < len(l.src) {
		c := l.src[i]
		if c == '\\' && i+1 < len(l.src) {
			next := l.src[i+1]
			if q == '\'' {
				if next == '\'' || next == '\\' {
					val = append(val, next)
					i += 2
					continue
				}
				val = append(val, c)
				i++
				continue
			}
			val = append(val, unescape(next))
			i += 2
			continue
		}
		if c == q {
			i++
			break
		}
		if c == '\n' {
			l.line++
		}
		val = append(val, c)
		i++
	}
	l.tokens = append(l.tokens, Token{
		Kind:  Literal,
		Text:  string(l.src[start:min(i, len(l.src))]),
		Value: string(val),
		Line:  startLine,
	})
	l.pos = i
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}

// lexSigil handles variable symbols: one or more sigil characters followed
// by an identifier or a braced identifier. A sigil with nothing attachable
// falls back to a bare operator (modulus, dereference punctuation).
func (l *lexer) lexSigil() {
	start := l.pos
	i := l.pos
	for i < len(l.src) && (l.src[i] == '$' || l.src[i] == '@' || l.src[i] == '%') {
		i++
	}
	if i < len(l.src) && l.src[i] == '{' {
		j := i + 1
		for j < len(l.src) && isWordChar(l.src[j]) {
			j++
		}
		if j > i+1 && j < len(l.src) && l.src[j] == '}' {
			l.pos = j + 1
			l.emit(Variable, string(l.src[start:l.pos]))
			return
		}
		l.pos = i
		l.emit(Operator, string(l.src[start:i]))
		return
	}
	j := i
	for j < len(l.src) {
		if isWordChar(l.src[j]) {
			j++
			continue
		}
		if l.src[j] == ':' && j+1 < len(l.src) && l.src[j+1] == ':' && j+2 < len(l.src) && isWordChar(l.src[j+2]) {
			j += 2
			continue
		}
		break
	}
	if j == i {
		l.pos = i
		l.emit(Operator, string(l.src[start:i]))
		return
	}
	l.pos = j
	l.emit(Variable, string(l.src[start:j]))
}

func (l *lexer) lexWord() {
	start := l.pos
	j := start
	for j < len(l.src) {
		if isWordChar(l.src[j]) {
			j++
			continue
		}
		if l.src[j] == ':' && j+1 < len(l.src) && l.src[j+1] == ':' && j+2 < len(l.src) && isWordChar(l.src[j+2]) {
			j += 2
			continue
		}
		break
	}
	word := string(l.src[start:j])
	l.pos = j

	// Quote-like operators introduce literals or regexes with arbitrary
	// delimiters. Regex bodies are consumed but produce no token.
	switch word {
	case "q", "qw":
		if l.lexDelimitedLiteral(false) {
			return
		}
	case "qq":
		if l.lexDelimitedLiteral(true) {
			return
		}
	case "m", "qr":
		if l.skipDelimited(1) {
			return
		}
	case "s", "tr", "y":
		if l.skipDelimited(2) {
			return
		}
	}

	l.tokens = append(l.tokens, Token{
		Kind:  Word,
		Text:  word,
		Value: word,
		Line:  l.line,
		Decl:  declKeywords[word],
	})
}

func closerFor(open byte) (byte, bool) {
	switch open {
	case '(':
		return ')', true
	case '{':
		return '}', true
	case '[':
		return ']', true
	case '<':
		return '>', true
	default:
		return open, false
	}
}

func usableDelim(c byte) bool {
	if isWordChar(c) {
		return false
	}
	switch c {
	case ' ', '\t', '\r', '\n', ';', ',', '#':
		return false
	}
	return true
}

// lexDelimitedLiteral consumes one q()/qq()-style literal starting at the
// current position and emits it. Returns false when no delimiter follows,
// in which case the introducing word is emitted as a plain word.
func (l *lexer) lexDelimitedLiteral(interp bool) bool {
	if l.pos >= len(l.src) || !usableDelim(l.src[l.pos]) {
		return false
	}
	startLine := l.line
	open := l.src[l.pos]
	closeCh, nested := closerFor(open)
	start := l.pos
	i := l.pos + 1
	depth := 1
	var val []byte
	for i < len(l.src) {
		c := l.src[i]
		if c == '\\' && i+1 < len(l.src) {
			if interp {
				val = append(val, unescape(l.src[i+1]))
			} else {
				val = append(val, l.src[i], l.src[i+1])
			}
			i += 2
			continue
		}
		if nested && c == open {
			depth++
		} else if c == closeCh {
			depth--
			if depth == 0 {
				i++
				break
			}
		}
		if c == '\n' {
			l.line++
		}
		val = append(val, c)
		i++
	}
	l.tokens = append(l.tokens, Token{
		Kind:  Literal,
		Text:  string(l.src[start:min(i, len(l.src))]),
		Value: string(val),
		Line:  startLine,
	})
	l.pos = i
	return true
}

// skipDelimited consumes the body of a regex-like operator (m// s/// tr///)
// without emitting a token.
func (l *lexer) skipDelimited(parts int) bool {
	if l.pos >= len(l.src) || !usableDelim(l.src[l.pos]) {
		return false
	}
	open := l.src[l.pos]
	closeCh, nested := closerFor(open)
	for p := 0; p < parts; p++ {
		if nested && p > 0 {
			// bracketed forms restate the opening delimiter per part
			for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
				l.pos++
			}
			if l.pos >= len(l.src) || l.src[l.pos] != open {
				return true
			}
		}
		i := l.pos + 1
		depth := 1
		for i < len(l.src) {
			c := l.src[i]
			if c == '\\' && i+1 < len(l.src) {
				i += 2
				continue
			}
			if nested && c == open {
				depth++
			} else if c == closeCh {
				depth--
				if depth == 0 {
					break
				}
			}
			if c == '\n' {
				l.line++
			}
			i++
		}
		if !nested && parts == 2 && p == 0 {
			// s/a/b/ shares the middle delimiter between parts
			l.pos = i
		} else {
			l.pos = min(i+1, len(l.src))
		}
	}
	// trailing modifiers (gimsx...)
	for l.pos < len(l.src) && isAlpha(l.src[l.pos]) {
		l.pos++
	}
	return true
}

func (l *lexer) lexNumber() {
	start := l.pos
	for l.pos < len(l.src) && (isWordChar(l.src[l.pos]) || l.src[l.pos] == '.') {
		l.pos++
	}
	l.emit(Word, string(l.src[start:l.pos]))
}

func (l *lexer) tryHeredoc() bool {
	i := l.pos
	if i+1 >= len(l.src) || l.src[i+1] != '<' {
		return false
	}
	j := i + 2
	strip := false
	if j < len(l.src) && l.src[j] == '~' {
		strip = true
		j++
	}
	var marker string
	if j < len(l.src) && (l.src[j] == '"' || l.src[j] == '\'') {
		q := l.src[j]
		k := j + 1
		for k < len(l.src) && l.src[k] != q && l.src[k] != '\n' {
			k++
		}
		if k >= len(l.src) || l.src[k] != q {
			return false
		}
		marker = string(l.src[j+1 : k])
		j = k + 1
	} else {
		if j >= len(l.src) || !(isAlpha(l.src[j]) || l.src[j] == '_') {
			return false
		}
		k := j
		for k < len(l.src) && isWordChar(l.src[k]) {
			k++
		}
		marker = string(l.src[j:k])
		j = k
	}
	if marker == "" {
		return false
	}
	l.tokens = append(l.tokens, Token{Kind: Heredoc, Text: string(l.src[l.pos:j]), Line: l.line})
	l.pending = append(l.pending, pendingHeredoc{marker: marker, strip: strip, index: len(l.tokens) - 1})
	l.pos = j
	return true
}

// drainHeredocs consumes bodies for markers introduced on the line that
// just ended, in introduction order. A body reaching EOF without its
// terminator is taken as-is.
func (l *lexer) drainHeredocs() {
	for len(l.pending) > 0 {
		p := l.pending[0]
		l.pending = l.pending[1:]
		var body []string
		for l.pos <= len(l.src) {
			lineStart := l.pos
			k := lineStart
			for k < len(l.src) && l.src[k] != '\n' {
				k++
			}
			line := string(l.src[lineStart:k])
			atEOF := k >= len(l.src)
			if atEOF {
				l.pos = k
			} else {
				l.pos = k + 1
				l.line++
			}
			term := strings.TrimRight(line, "\r")
			if p.strip {
				term = strings.TrimSpace(term)
			}
			if term == p.marker {
				break
			}
			body = append(body, line)
			if atEOF {
				break
			}
		}
		value := strings.Join(body, "\n")
		if p.strip {
			value = stripIndent(body)
		}
		l.tokens[p.index].Value = value
	}
}

func stripIndent(lines []string) string {
	indent := -1
	for _, ln := range lines {
		trimmed := strings.TrimLeft(ln, " \t")
		if trimmed == "" {
			continue
		}
		n := len(ln) - len(trimmed)
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return strings.Join(lines, "\n")
	}
	out := make([]string, len(lines))
	for i, ln := range lines {
		if len(ln) >= indent {
			out[i] = ln[indent:]
		} else {
			out[i] = strings.TrimLeft(ln, " \t")
		}
	}
	return strings.Join(out, "\n")
}

// multi-character operators, longest first within each length class
var threeCharOps = map[string]bool{"<=>": true, "**=": true, "||=": true, "//=": true, "&&=": true, "...": true, "<<=": true, ">>=": true}

var twoCharOps = map[string]bool{
	"=~": true, "!~": true, "==": true, "!=": true, "<=": true, ">=": true,
	"=>": true, "->": true, "++": true, "--": true, "**": true, "&&": true,
	"||": true, "//": true, "..": true, ".=": true, "+=": true, "-=": true,
	"*=": true, "/=": true, "%=": true, "<<": true, ">>": true,
}

var assignOps = map[string]bool{
	"=": true, ".=": true, "+=": true, "-=": true, "*=": true, "/=": true,
	"%=": true, "||=": true, "//=": true, "&&=": true, "**=": true,
}

func (l *lexer) lexOperator() {
	rest := l.src[l.pos:]
	var text string
	if len(rest) >= 3 && threeCharOps[string(rest[:3])] {
		text = string(rest[:3])
	} else if len(rest) >= 2 && twoCharOps[string(rest[:2])] {
		text = string(rest[:2])
	} else {
		text = string(rest[:1])
	}
	l.pos += len(text)

	if strings.ContainsAny(text, ";,(){}[]") && len(text) == 1 {
		l.emit(Delimiter, text)
		return
	}
	l.tokens = append(l.tokens, Token{
		Kind: Operator, Text: text, Value: text, Line: l.line,
		Assign: assignOps[text],
	})

	// a pattern bound with =~ or !~ may use bare slashes; consume it so
	// its body cannot be mistaken for quoting
	if text == "=~" || text == "!~" {
		for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
			l.pos++
		}
		if l.pos < len(l.src) && l.src[l.pos] == '/' {
			l.skipDelimited(1)
		}
	}
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordChar(c byte) bool {
	return isAlpha(c) || (c >= '0' && c <= '9') || c == '_'
}
