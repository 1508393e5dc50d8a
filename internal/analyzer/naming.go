package analyzer

import (
	"fmt"
	"strings"

	"github.com/ppiankov/sqlspectre/internal/scanner"
)

// synthesizeName builds the stable "<var>_<line>_<VERB>" identifier for a
// finding with a resolved variable. The verb is the first naming verb
// appearing in the finding's text in text order, not by statement
// priority; UNKNOWN when none matches.
func (m *matcher) synthesizeName(f scanner.Finding) string {
	variable := scanner.VarName(f.Variable)

	line := "?"
	if f.Line > 0 {
		line = fmt.Sprintf("%d", f.Line)
	}

	text := f.Snippet
	if text == "" {
		text = f.Context
	}
	verb := "UNKNOWN"
	if match := m.verbRe.FindString(text); match != "" {
		verb = strings.ToUpper(match)
	}

	return fmt.Sprintf("%s_%s_%s", variable, line, verb)
}
