// Package baseline compares a scan against a previously saved JSON report
// so CI can gate on new findings only.
package baseline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/sqlspectre/internal/report"
	"github.com/ppiankov/sqlspectre/internal/scanner"
)

// Finding is a flattened, identity-comparable finding from a scan.
type Finding struct {
	Type     string `json:"type"`
	File     string `json:"file"`
	Line     int    `json:"line,omitempty"`
	Variable string `json:"variable,omitempty"`
	Name     string `json:"name,omitempty"`
}

func (f Finding) key() string {
	return fmt.Sprintf("%s|%s|%d|%s|%s", f.Type, f.File, f.Line, f.Variable, f.Name)
}

// DiffResult holds the outcome of comparing current findings against a
// baseline.
type DiffResult struct {
	New       []Finding
	Resolved  []Finding
	Unchanged []Finding
}

// Flatten converts a scan report into a flat finding list.
func Flatten(data report.Data) []Finding {
	var findings []Finding
	for path, fs := range data.Files {
		for _, f := range fs {
			findings = append(findings, Finding{
				Type:     string(f.Kind),
				File:     path,
				Line:     f.Line,
				Variable: f.Variable,
				Name:     f.Name,
			})
		}
	}
	return findings
}

// Load reads a previous JSON report and flattens it.
func Load(path string) ([]Finding, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading baseline: %w", err)
	}
	var data report.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing baseline: %w", err)
	}
	return Flatten(data), nil
}

// Diff compares current findings against the baseline.
func Diff(current, baseline []Finding) DiffResult {
	baseKeys := make(map[string]struct{}, len(baseline))
	for _, f := range baseline {
		baseKeys[f.key()] = struct{}{}
	}
	curKeys := make(map[string]struct{}, len(current))
	for _, f := range current {
		curKeys[f.key()] = struct{}{}
	}

	var result DiffResult
	for _, f := range current {
		if _, ok := baseKeys[f.key()]; ok {
			result.Unchanged = append(result.Unchanged, f)
		} else {
			result.New = append(result.New, f)
		}
	}
	for _, f := range baseline {
		if _, ok := curKeys[f.key()]; !ok {
			result.Resolved = append(result.Resolved, f)
		}
	}
	return result
}

// filterKind returns the findings of one kind, preserving order.
func filterKind(findings []Finding, kind scanner.FindingKind) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Type == string(kind) {
			out = append(out, f)
		}
	}
	return out
}

// NewMissingVariables returns the new findings that are missing-variable
// flags, the usual CI gate.
func (d DiffResult) NewMissingVariables() []Finding {
	return filterKind(d.New, scanner.KindMissingVariable)
}
