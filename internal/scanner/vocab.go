package scanner

import (
	"regexp"
	"sort"
	"strings"
)

// Vocabulary carries the fixed word lists the scanner matches against.
// It is plain immutable data built once at startup and passed into each
// component rather than read from package globals.
type Vocabulary struct {
	// SQLKeywords classify a literal as SQL-bearing (whole-word,
	// case-insensitive).
	SQLKeywords []string
	// NamingVerbs are the statement keywords eligible for synthesized
	// names, tried in text order within the finding.
	NamingVerbs []string
	// CallVerbs are database-client methods matched as method-style calls
	// in raw text.
	CallVerbs []string
	// IgnoreVars are ambient handles never reported as missing
	// declarations.
	IgnoreVars map[string]struct{}
}

// DefaultVocabulary returns the stock vocabulary for DBI-style codebases.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		SQLKeywords: []string{
			"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "ALTER",
			"DROP", "FROM", "WHERE", "JOIN", "INTO",
		},
		NamingVerbs: []string{
			"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "ALTER", "DROP",
		},
		CallVerbs: []string{
			"prepare", "prepare_cached", "execute", "do",
			"selectall_arrayref", "selectall_hashref", "selectrow_array",
			"selectrow_arrayref", "selectrow_hashref", "selectcol_arrayref",
			"fetchall_arrayref",
		},
		IgnoreVars: ignoreSet("dbh", "sth", "self", "db", "class", "c", "_"),
	}
}

// WithIgnoredVars returns a copy of the vocabulary with extra ignored
// variable names added.
func (v Vocabulary) WithIgnoredVars(extra []string) Vocabulary {
	if len(extra) == 0 {
		return v
	}
	merged := make(map[string]struct{}, len(v.IgnoreVars)+len(extra))
	for name := range v.IgnoreVars {
		merged[name] = struct{}{}
	}
	for _, name := range extra {
		merged[strings.ToLower(name)] = struct{}{}
	}
	out := v
	out.IgnoreVars = merged
	return out
}

func ignoreSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func compileKeywordPattern(words []string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + joinAlternation(words) + `)\b`)
}

func compileCallPattern(verbs []string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)->\s*(` + joinAlternation(verbs) + `)\s*\(`)
}

// joinAlternation builds a regex alternation, longest entries first so a
// prefix verb (prepare) cannot shadow a longer one (prepare_cached).
func joinAlternation(words []string) string {
	sorted := make([]string, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}
