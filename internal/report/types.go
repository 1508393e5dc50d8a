package report

import (
	"time"

	"github.com/ppiankov/sqlspectre/internal/analyzer"
	"github.com/ppiankov/sqlspectre/internal/scanner"
)

// Reporter renders a completed scan in one output format.
type Reporter interface {
	Generate(data Data) error
}

// Data contains everything a reporter needs: run metadata, the summary
// and the per-file finding lists (files with zero findings are already
// omitted).
type Data struct {
	Tool      string                       `json:"tool" yaml:"tool"`
	Version   string                       `json:"version" yaml:"version"`
	Timestamp time.Time                    `json:"timestamp" yaml:"timestamp"`
	Config    Config                       `json:"config" yaml:"config"`
	Summary   analyzer.Summary             `json:"summary" yaml:"summary"`
	Files     map[string][]scanner.Finding `json:"files" yaml:"files"`
}

// Config records the scan configuration for reproducibility.
type Config struct {
	RepoPath    string   `json:"repo_path" yaml:"repo_path"`
	Extensions  []string `json:"extensions" yaml:"extensions"`
	Concurrency int      `json:"concurrency" yaml:"concurrency"`
}
