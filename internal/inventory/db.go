// Package inventory persists a completed scan to a SQLite database so the
// statement inventory can be queried offline.
package inventory

import (
	"fmt"
	"os"
	"sort"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/ppiankov/sqlspectre/internal/report"
)

const schema = `
CREATE TABLE runs (
    tool TEXT NOT NULL,
    version TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    repo_path TEXT NOT NULL
);

CREATE TABLE files (
    path TEXT PRIMARY KEY,
    finding_count INTEGER NOT NULL
);

CREATE TABLE findings (
    file TEXT NOT NULL REFERENCES files(path),
    type TEXT NOT NULL,
    line INTEGER,
    variable TEXT,
    name TEXT,
    verb TEXT,
    snippet TEXT,
    context TEXT,
    note TEXT
);

CREATE INDEX findings_by_name ON findings(name) WHERE name IS NOT NULL;
`

// WriteDB writes the scan result to a SQLite database at path, replacing
// any existing file. The export runs after the scan completes; the core
// scan itself never touches a database.
func WriteDB(path string, data report.Data) error {
	_ = os.Remove(path) // ignore if doesn't exist

	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate, sqlite.OpenReadWrite)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := sqlitex.ExecuteTransient(conn, "PRAGMA synchronous = NORMAL", nil); err != nil {
		return err
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	err = insertAll(conn, data)
	endFn(&err)
	if err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}
	return nil
}

func insertAll(conn *sqlite.Conn, data report.Data) error {
	if err := sqlitex.Execute(conn,
		`INSERT INTO runs (tool, version, timestamp, repo_path) VALUES (?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			data.Tool, data.Version, data.Timestamp.UTC().Format("2006-01-02T15:04:05Z"), data.Config.RepoPath,
		}}); err != nil {
		return err
	}

	fileStmt, err := conn.Prepare(`INSERT INTO files (path, finding_count) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare file insert: %w", err)
	}
	defer func() { _ = fileStmt.Finalize() }()

	findingStmt, err := conn.Prepare(`INSERT INTO findings (file, type, line, variable, name, verb, snippet, context, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare finding insert: %w", err)
	}
	defer func() { _ = findingStmt.Finalize() }()

	paths := make([]string, 0, len(data.Files))
	for p := range data.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		findings := data.Files[path]

		fileStmt.BindText(1, path)
		fileStmt.BindInt64(2, int64(len(findings)))
		if _, err := fileStmt.Step(); err != nil {
			return fmt.Errorf("insert file %s: %w", path, err)
		}
		_ = fileStmt.Reset()

		for _, f := range findings {
			findingStmt.BindText(1, path)
			findingStmt.BindText(2, string(f.Kind))
			bindIntOrNull(findingStmt, 3, f.Line)
			bindTextOrNull(findingStmt, 4, f.Variable)
			bindTextOrNull(findingStmt, 5, f.Name)
			bindTextOrNull(findingStmt, 6, f.Verb)
			bindTextOrNull(findingStmt, 7, f.Snippet)
			bindTextOrNull(findingStmt, 8, f.Context)
			bindTextOrNull(findingStmt, 9, f.Note)
			if _, err := findingStmt.Step(); err != nil {
				return fmt.Errorf("insert finding in %s: %w", path, err)
			}
			_ = findingStmt.Reset()
		}
	}
	return nil
}

func bindTextOrNull(stmt *sqlite.Stmt, col int, s string) {
	if s == "" {
		stmt.BindNull(col)
		return
	}
	stmt.BindText(col, s)
}

func bindIntOrNull(stmt *sqlite.Stmt, col int, n int) {
	if n == 0 {
		stmt.BindNull(col)
		return
	}
	stmt.BindInt64(col, int64(n))
}
