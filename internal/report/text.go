package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/ppiankov/sqlspectre/internal/analyzer"
	"github.com/ppiankov/sqlspectre/internal/scanner"
)

// TextReporter generates human-readable text reports.
type TextReporter struct {
	writer io.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{writer: w}
}

// Generate writes the report in a readable layout: header, summary, then
// per-file findings sorted by path.
func (r *TextReporter) Generate(data Data) error {
	fmt.Fprintf(r.writer, "SQLSpectre Report\n")
	fmt.Fprintf(r.writer, "=================\n\n")
	fmt.Fprintf(r.writer, "Scan Time: %s\n", data.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(r.writer, "Repository: %s\n", data.Config.RepoPath)
	fmt.Fprintf(r.writer, "\n")

	r.printSummary(data.Summary)

	paths := make([]string, 0, len(data.Files))
	for p := range data.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		fmt.Fprintf(r.writer, "%s\n", color.CyanString(path))
		fmt.Fprintf(r.writer, "%s\n", strings.Repeat("-", len(path)))
		for _, f := range data.Files[path] {
			r.printFinding(f)
		}
		fmt.Fprintf(r.writer, "\n")
	}

	return nil
}

func (r *TextReporter) printSummary(summary analyzer.Summary) {
	fmt.Fprintf(r.writer, "Summary\n")
	fmt.Fprintf(r.writer, "-------\n")
	fmt.Fprintf(r.writer, "Files Scanned: %d\n", summary.FilesScanned)
	fmt.Fprintf(r.writer, "Files With Findings: %d\n", summary.FilesWithFindings)
	fmt.Fprintf(r.writer, "SQL Strings: %d\n", summary.SQLStrings)
	fmt.Fprintf(r.writer, "SQL Heredocs: %d\n", summary.SQLHeredocs)
	fmt.Fprintf(r.writer, "Database Calls: %d\n", summary.Calls)
	fmt.Fprintf(r.writer, "Named Statements: %d\n", summary.NamedStatements)

	if len(summary.MissingVariables) > 0 {
		fmt.Fprintf(r.writer, "%s: %d\n",
			color.RedString("Missing Variables"),
			len(summary.MissingVariables))
	}

	fmt.Fprintf(r.writer, "\n")
}

func (r *TextReporter) printFinding(f scanner.Finding) {
	switch f.Kind {
	case scanner.KindString, scanner.KindHeredoc:
		label := "[SQL_STRING]"
		if f.Kind == scanner.KindHeredoc {
			label = "[SQL_HEREDOC]"
		}
		fmt.Fprintf(r.writer, "  %s line %d", color.GreenString(label), f.Line)
		if f.Name != "" {
			fmt.Fprintf(r.writer, "  %s", color.YellowString(f.Name))
		} else if f.Variable != "" {
			fmt.Fprintf(r.writer, "  $%s", f.Variable)
		}
		fmt.Fprintf(r.writer, "\n    %s\n", f.Snippet)
	case scanner.KindCall:
		fmt.Fprintf(r.writer, "  %s line %d  %s\n    %s\n",
			color.BlueString("[DB_CALL]"), f.Line, f.Verb, f.Context)
	case scanner.KindMissingVariable:
		fmt.Fprintf(r.writer, "  %s line %d  $%s\n    %s\n",
			color.RedString("[MISSING_VARIABLE]"), f.Line, f.Variable, f.Note)
	default:
		fmt.Fprintf(r.writer, "  [%s] line %d\n", f.Kind, f.Line)
	}
}
