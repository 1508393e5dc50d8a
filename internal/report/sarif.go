package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/ppiankov/sqlspectre/internal/scanner"
)

const (
	ruleSQLString       = "sqlspectre/SQL_STRING"
	ruleSQLHeredoc      = "sqlspectre/SQL_HEREDOC"
	ruleDBCall          = "sqlspectre/DB_CALL"
	ruleMissingVariable = "sqlspectre/MISSING_VARIABLE"

	informationURI = "https://github.com/ppiankov/sqlspectre"
)

type ruleMeta struct {
	description string
	level       string
}

var sarifRules = map[string]ruleMeta{
	ruleSQLString:       {"SQL statement embedded in a string literal", "note"},
	ruleSQLHeredoc:      {"SQL statement embedded in a heredoc", "note"},
	ruleDBCall:          {"Database client call site", "note"},
	ruleMissingVariable: {"Variable used in a database call with no traceable SQL assignment", "warning"},
}

// SARIFReporter generates SARIF 2.1.0 reports.
type SARIFReporter struct {
	writer io.Writer
}

// NewSARIFReporter creates a new SARIF reporter.
func NewSARIFReporter(w io.Writer) *SARIFReporter {
	return &SARIFReporter{writer: w}
}

// Generate writes the findings as one SARIF run, files sorted by path.
func (r *SARIFReporter) Generate(data Data) error {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("creating SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(data.Tool, informationURI)
	added := make(map[string]bool)

	paths := make([]string, 0, len(data.Files))
	for p := range data.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		for _, f := range data.Files[path] {
			ruleID := ruleFor(f.Kind)
			meta := sarifRules[ruleID]
			if !added[ruleID] {
				run.AddRule(ruleID).
					WithDescription(meta.description).
					WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: meta.level})
				added[ruleID] = true
			}

			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(path)).
					WithRegion(sarif.NewRegion().WithStartLine(f.Line)),
			)
			result := sarif.NewRuleResult(ruleID).
				WithMessage(sarif.NewTextMessage(resultMessage(f))).
				WithLevel(meta.level).
				WithLocations([]*sarif.Location{location})
			run.AddResult(result)
		}
	}

	doc.AddRun(run)
	return doc.PrettyWrite(r.writer)
}

func ruleFor(kind scanner.FindingKind) string {
	switch kind {
	case scanner.KindString:
		return ruleSQLString
	case scanner.KindHeredoc:
		return ruleSQLHeredoc
	case scanner.KindCall:
		return ruleDBCall
	case scanner.KindMissingVariable:
		return ruleMissingVariable
	default:
		return ruleSQLString
	}
}

func resultMessage(f scanner.Finding) string {
	switch f.Kind {
	case scanner.KindString, scanner.KindHeredoc:
		if f.Name != "" {
			return fmt.Sprintf("%s: %s", f.Name, f.Snippet)
		}
		return f.Snippet
	case scanner.KindCall:
		return fmt.Sprintf("%s: %s", f.Verb, f.Context)
	case scanner.KindMissingVariable:
		return f.Note
	default:
		return f.Snippet
	}
}
