package sqlcatalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Placeholder selects the parameter syntax Bind emits.
type Placeholder int

const (
	// Question emits ? placeholders (SQLite, MySQL).
	Question Placeholder = iota
	// Dollar emits $1, $2, ... placeholders (PostgreSQL).
	Dollar
)

// Bind rewrites :name placeholders in query to driver placeholders and
// returns the argument list in placeholder order. Placeholders inside
// single-quoted text are left alone, as are double-colon casts (id::text).
// A placeholder with no entry in params is an error; a parameter repeated
// in the query is bound once per occurrence.
func Bind(query string, params map[string]any, style Placeholder) (string, []any, error) {
	var out strings.Builder
	var args []any
	inQuote := false

	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '\'' {
			inQuote = !inQuote
			out.WriteByte(c)
			continue
		}
		if inQuote || c != ':' {
			out.WriteByte(c)
			continue
		}
		// skip :: casts and anything not starting an identifier
		if i+1 < len(query) && query[i+1] == ':' {
			out.WriteString("::")
			i++
			continue
		}
		if i > 0 && query[i-1] == ':' {
			out.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(query) && isIdentChar(query[j]) {
			j++
		}
		if j == i+1 || !isIdentStart(query[i+1]) {
			out.WriteByte(c)
			continue
		}
		name := query[i+1 : j]
		value, ok := params[name]
		if !ok {
			return "", nil, fmt.Errorf("no value for parameter :%s", name)
		}
		args = append(args, value)
		switch style {
		case Dollar:
			out.WriteString("$" + strconv.Itoa(len(args)))
		default:
			out.WriteByte('?')
		}
		i = j - 1
	}

	return out.String(), args, nil
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
