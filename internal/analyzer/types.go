package analyzer

import (
	"github.com/ppiankov/sqlspectre/internal/scanner"
)

// Summary contains high-level counts over the whole run.
type Summary struct {
	FilesScanned      int      `json:"files_scanned" yaml:"files_scanned"`
	FilesWithFindings int      `json:"files_with_findings" yaml:"files_with_findings"`
	SQLStrings        int      `json:"sql_strings" yaml:"sql_strings"`
	SQLHeredocs       int      `json:"sql_heredocs" yaml:"sql_heredocs"`
	Calls             int      `json:"calls" yaml:"calls"`
	NamedStatements   int      `json:"named_statements" yaml:"named_statements"`
	MissingVariables  []string `json:"missing_variables,omitempty" yaml:"missing_variables,omitempty"`
}

// Result is the complete analysis outcome: the per-file finding lists
// (files with zero findings omitted) and the run summary.
type Result struct {
	Summary Summary                      `json:"summary" yaml:"summary"`
	Files   map[string][]scanner.Finding `json:"files" yaml:"files"`
}
