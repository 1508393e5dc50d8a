package baseline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/sqlspectre/internal/analyzer"
	"github.com/ppiankov/sqlspectre/internal/report"
	"github.com/ppiankov/sqlspectre/internal/scanner"
)

func reportWith(files map[string][]scanner.Finding) report.Data {
	return report.Data{
		Tool:      "sqlspectre",
		Version:   "test",
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Summary:   analyzer.Summary{},
		Files:     files,
	}
}

func TestFlatten(t *testing.T) {
	data := reportWith(map[string][]scanner.Finding{
		"a.pl": {
			{Kind: scanner.KindString, Line: 3, Variable: "q", Name: "q_3_SELECT"},
			{Kind: scanner.KindCall, Line: 4, Verb: "prepare"},
		},
	})

	flat := Flatten(data)
	if len(flat) != 2 {
		t.Fatalf("Expected 2 flattened findings, got %d", len(flat))
	}
	if flat[0].File != "a.pl" {
		t.Errorf("Expected file a.pl, got %q", flat[0].File)
	}
	if flat[0].Type != "string" || flat[0].Name != "q_3_SELECT" {
		t.Errorf("Unexpected first finding: %+v", flat[0])
	}
}

func TestDiff(t *testing.T) {
	base := []Finding{
		{Type: "string", File: "a.pl", Line: 3, Variable: "q", Name: "q_3_SELECT"},
		{Type: "missing_variable", File: "b.pl", Line: 9, Variable: "gone"},
	}
	current := []Finding{
		{Type: "string", File: "a.pl", Line: 3, Variable: "q", Name: "q_3_SELECT"},
		{Type: "missing_variable", File: "c.pl", Line: 12, Variable: "ghost"},
	}

	diff := Diff(current, base)

	if len(diff.Unchanged) != 1 || diff.Unchanged[0].File != "a.pl" {
		t.Errorf("Unexpected unchanged set: %+v", diff.Unchanged)
	}
	if len(diff.New) != 1 || diff.New[0].Variable != "ghost" {
		t.Errorf("Unexpected new set: %+v", diff.New)
	}
	if len(diff.Resolved) != 1 || diff.Resolved[0].Variable != "gone" {
		t.Errorf("Unexpected resolved set: %+v", diff.Resolved)
	}

	newMissing := diff.NewMissingVariables()
	if len(newMissing) != 1 || newMissing[0].Variable != "ghost" {
		t.Errorf("Unexpected new missing variables: %+v", newMissing)
	}
}

func TestDiffLineMoveIsNewAndResolved(t *testing.T) {
	// identity includes the line, so a moved finding shows on both sides
	base := []Finding{{Type: "string", File: "a.pl", Line: 3, Name: "q_3_SELECT"}}
	current := []Finding{{Type: "string", File: "a.pl", Line: 5, Name: "q_5_SELECT"}}

	diff := Diff(current, base)
	if len(diff.New) != 1 || len(diff.Resolved) != 1 || len(diff.Unchanged) != 0 {
		t.Errorf("Expected a moved finding on both sides, got %+v", diff)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	data := reportWith(map[string][]scanner.Finding{
		"lib/DB.pm": {
			{Kind: scanner.KindHeredoc, Line: 7, Variable: "big", Name: "big_7_SELECT"},
		},
	})

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "baseline.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("Failed to write baseline: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Type != "heredoc" || loaded[0].File != "lib/DB.pm" {
		t.Errorf("Unexpected loaded baseline: %+v", loaded)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Expected an error for a missing baseline file")
	}
}
