// Package analyzer reconciles the raw finding sets the scanner produces
// for each file: it drops unattributed literals already visible at a call
// site, synthesizes stable names for attributed statements and flags
// variables used in calls but never proven to hold SQL in-file.
package analyzer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/sqlspectre/internal/scanner"
)

// Analyze runs per-file correlation over the raw scan output and builds
// the run summary. Files yielding zero findings are omitted from the
// result.
func Analyze(files map[string]scanner.FileFindings, vocab scanner.Vocabulary) *Result {
	m := newMatcher(vocab)
	result := &Result{
		Files:   make(map[string][]scanner.Finding),
		Summary: Summary{FilesScanned: len(files)},
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		findings := m.analyzeFile(files[path])
		if len(findings) == 0 {
			continue
		}
		result.Files[path] = findings
		result.Summary.FilesWithFindings++
		for _, f := range findings {
			switch f.Kind {
			case scanner.KindString:
				result.Summary.SQLStrings++
			case scanner.KindHeredoc:
				result.Summary.SQLHeredocs++
			case scanner.KindCall:
				result.Summary.Calls++
			case scanner.KindMissingVariable:
				result.Summary.MissingVariables = append(result.Summary.MissingVariables,
					fmt.Sprintf("%s:%s", path, f.Variable))
			}
			if f.Name != "" {
				result.Summary.NamedStatements++
			}
		}
	}
	return result
}

// AnalyzeFile correlates one file's raw finding sets into its final
// finding list: deduplicate, name, then detect missing declarations.
func AnalyzeFile(ff scanner.FileFindings, vocab scanner.Vocabulary) []scanner.Finding {
	return newMatcher(vocab).analyzeFile(ff)
}

// matcher holds the compiled vocabulary shared across files of one run.
type matcher struct {
	verbRe *regexp.Regexp
	ignore map[string]struct{}
}

func newMatcher(vocab scanner.Vocabulary) *matcher {
	return &matcher{
		verbRe: regexp.MustCompile(`(?i)\b(?:` + alternation(vocab.NamingVerbs) + `)\b`),
		ignore: vocab.IgnoreVars,
	}
}

func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

func (m *matcher) analyzeFile(ff scanner.FileFindings) []scanner.Finding {
	findings := dedupeLiterals(ff.Literals, ff.Calls)
	findings = append(findings, ff.Calls...)
	for i := range findings {
		if findings[i].Variable != "" {
			findings[i].Name = m.synthesizeName(findings[i])
		}
	}
	findings = append(findings, m.detectMissing(findings)...)
	return findings
}
