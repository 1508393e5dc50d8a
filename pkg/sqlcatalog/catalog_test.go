package sqlcatalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/sqlspectre/internal/report"
	"github.com/ppiankov/sqlspectre/internal/scanner"
)

func testReport() report.Data {
	return report.Data{
		Tool:      "sqlspectre",
		Version:   "0.1.0",
		Timestamp: time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC),
		Files: map[string][]scanner.Finding{
			"app.pl": {
				{Kind: scanner.KindString, Line: 10, Variable: "q", Snippet: "SELECT id FROM users WHERE id = :id", Name: "q_10_SELECT"},
				{Kind: scanner.KindCall, Line: 11, Verb: "prepare", Context: "$dbh->prepare($q);"},
			},
			"lib/Orders.pm": {
				{Kind: scanner.KindHeredoc, Line: 20, Variable: "orders", Snippet: "SELECT * FROM orders WHERE day = :day AND region = :region", Name: "orders_20_SELECT"},
				{Kind: scanner.KindMissingVariable, Line: 30, Variable: "ghost", Note: "note"},
			},
		},
	}
}

func TestFromReport(t *testing.T) {
	cat := FromReport(testReport())

	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, []string{"orders_20_SELECT", "q_10_SELECT"}, cat.Names())

	stmt, ok := cat.Get("q_10_SELECT")
	require.True(t, ok)
	assert.Equal(t, "app.pl", stmt.File)
	assert.Equal(t, 10, stmt.Line)
	assert.Equal(t, "SELECT id FROM users WHERE id = :id", stmt.SQL)

	_, ok = cat.Get("nope")
	assert.False(t, ok)
}

func TestLoadJSON(t *testing.T) {
	raw, err := json.Marshal(testReport())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
}

func TestLoadYAML(t *testing.T) {
	raw, err := yaml.Marshal(testReport())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())

	stmt, ok := cat.Get("orders_20_SELECT")
	require.True(t, ok)
	assert.Equal(t, "lib/Orders.pm", stmt.File)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestBindQuestion(t *testing.T) {
	query, args, err := Bind(
		"SELECT * FROM orders WHERE day = :day AND region = :region AND day = :day",
		map[string]any{"day": "2026-01-01", "region": 7},
		Question,
	)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM orders WHERE day = ? AND region = ? AND day = ?", query)
	assert.Equal(t, []any{"2026-01-01", 7, "2026-01-01"}, args)
}

func TestBindDollar(t *testing.T) {
	query, args, err := Bind(
		"UPDATE t SET a = :a WHERE b = :b",
		map[string]any{"a": 1, "b": 2},
		Dollar,
	)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE t SET a = $1 WHERE b = $2", query)
	assert.Equal(t, []any{1, 2}, args)
}

func TestBindSkipsCastsAndQuotes(t *testing.T) {
	query, args, err := Bind(
		"SELECT id::text FROM t WHERE note = ':keep' AND k = :k",
		map[string]any{"k": 5},
		Question,
	)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id::text FROM t WHERE note = ':keep' AND k = ?", query)
	assert.Equal(t, []any{5}, args)
}

func TestBindMissingParam(t *testing.T) {
	_, _, err := Bind("SELECT 1 WHERE a = :a", map[string]any{}, Question)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":a")
}

func TestBindNoPlaceholders(t *testing.T) {
	query, args, err := Bind("SELECT 1", nil, Question)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", query)
	assert.Empty(t, args)
}
