package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func scanSource(t *testing.T, src string) FileFindings {
	t.Helper()
	s := NewFileScanner(DefaultVocabulary())
	ff, err := s.ScanFile("test.pl", []byte(src))
	if err != nil {
		t.Fatalf("ScanFile failed: %v", err)
	}
	return ff
}

func TestScanFileLiteral(t *testing.T) {
	ff := scanSource(t, `my $query = "SELECT id FROM users WHERE active = 1";`)

	if len(ff.Literals) != 1 {
		t.Fatalf("Expected 1 literal finding, got %d", len(ff.Literals))
	}
	f := ff.Literals[0]
	if f.Kind != KindString {
		t.Errorf("Expected string kind, got %s", f.Kind)
	}
	if f.Line != 1 {
		t.Errorf("Expected line 1, got %d", f.Line)
	}
	if f.Variable != "query" {
		t.Errorf("Expected variable query, got %q", f.Variable)
	}
	if f.Snippet != "SELECT id FROM users WHERE active = 1" {
		t.Errorf("Unexpected snippet: %q", f.Snippet)
	}
}

func TestScanFileNonSQLIgnored(t *testing.T) {
	ff := scanSource(t, `my $greeting = "hello world"; my $path = '/tmp/x';`)
	if len(ff.Literals) != 0 {
		t.Errorf("Expected no findings for non-SQL strings, got %d", len(ff.Literals))
	}
}

func TestScanFileKeywordIsWholeWord(t *testing.T) {
	// selection contains "select" only as a fragment of a larger word
	ff := scanSource(t, `my $s = "preselection of items updated";`)
	if len(ff.Literals) != 0 {
		t.Errorf("Partial keyword matches must not classify, got %d findings", len(ff.Literals))
	}
}

func TestScanFileHeredoc(t *testing.T) {
	src := `my $report_sql = <<SQL;
SELECT name, total
FROM reports
WHERE day = ?
SQL
`
	ff := scanSource(t, src)
	if len(ff.Literals) != 1 {
		t.Fatalf("Expected 1 heredoc finding, got %d", len(ff.Literals))
	}
	f := ff.Literals[0]
	if f.Kind != KindHeredoc {
		t.Errorf("Expected heredoc kind, got %s", f.Kind)
	}
	if f.Variable != "report_sql" {
		t.Errorf("Expected variable report_sql, got %q", f.Variable)
	}
	if f.Line != 1 {
		t.Errorf("Heredoc finding reports the introduction line, got %d", f.Line)
	}
	if f.Snippet != "SELECT name, total FROM reports WHERE day = ?" {
		t.Errorf("Expected collapsed snippet, got %q", f.Snippet)
	}
}

func TestScanFileCalls(t *testing.T) {
	src := `my $sth = $dbh->prepare($query);
$sth->execute($id);
my $rows = $dbh->selectall_arrayref("SELECT * FROM t");
`
	ff := scanSource(t, src)
	if len(ff.Calls) != 3 {
		t.Fatalf("Expected 3 call findings, got %d", len(ff.Calls))
	}
	wantVerbs := []string{"prepare", "execute", "selectall_arrayref"}
	for i, f := range ff.Calls {
		if f.Kind != KindCall {
			t.Errorf("Call %d: expected call kind, got %s", i, f.Kind)
		}
		if f.Verb != wantVerbs[i] {
			t.Errorf("Call %d: expected verb %s, got %s", i, wantVerbs[i], f.Verb)
		}
		if f.Line != i+1 {
			t.Errorf("Call %d: expected line %d, got %d", i, i+1, f.Line)
		}
		if f.Context == "" {
			t.Errorf("Call %d: expected a context window", i)
		}
	}
}

func TestScanFileCallSpacingAndCase(t *testing.T) {
	src := "$dbh -> Prepare ( $q );\n"
	ff := scanSource(t, src)
	if len(ff.Calls) != 1 {
		t.Fatalf("Expected 1 call despite spacing and case, got %d", len(ff.Calls))
	}
	if ff.Calls[0].Verb != "prepare" {
		t.Errorf("Verb must be stored lowercase, got %q", ff.Calls[0].Verb)
	}
}

func TestScanFileCallWithoutArrowIgnored(t *testing.T) {
	// a plain function named execute is not a client method call
	ff := scanSource(t, "execute($q);\nprepare_statement($q);\n")
	if len(ff.Calls) != 0 {
		t.Errorf("Expected no calls without the arrow form, got %d", len(ff.Calls))
	}
}

func TestScanFileCallContextClamped(t *testing.T) {
	src := `$dbh->do("DELETE FROM sessions");`
	ff := scanSource(t, src)
	if len(ff.Calls) != 1 {
		t.Fatalf("Expected 1 call, got %d", len(ff.Calls))
	}
	ctx := ff.Calls[0].Context
	if !strings.Contains(ctx, "DELETE FROM sessions") {
		t.Errorf("Context window should include nearby text, got %q", ctx)
	}
	if strings.Contains(ctx, `"`) {
		t.Errorf("Context must have double quotes normalized away, got %q", ctx)
	}
}

func TestScanFileBinaryRejected(t *testing.T) {
	s := NewFileScanner(DefaultVocabulary())
	_, err := s.ScanFile("bin.pl", []byte("a\x00b"))
	if err == nil {
		t.Fatal("Expected an error for binary content")
	}
	if !strings.Contains(err.Error(), "bin.pl") {
		t.Errorf("Error should name the file, got %v", err)
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapse whitespace", "SELECT  a,\n\tb  FROM t", "SELECT a, b FROM t"},
		{"double to single quotes", `WHERE name = "x"`, "WHERE name = 'x'"},
		{"trim", "  SELECT 1  ", "SELECT 1"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNormalizeTextTruncation(t *testing.T) {
	long := strings.Repeat("SELECT a FROM t; ", 30)
	got := NormalizeText(long)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Expected ellipsis marker on truncated text")
	}
	if len(got) > 203 {
		t.Errorf("Normalized text must never exceed 203 bytes, got %d", len(got))
	}
}

func TestVarName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"$query", "query"},
		{"@rows", "rows"},
		{"%opts", "opts"},
		{"${braced}", "braced"},
		{"$$ref", "ref"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := VarName(tt.in); got != tt.want {
			t.Errorf("VarName(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestRepoScanner(t *testing.T) {
	tmpDir := t.TempDir()

	testFiles := map[string]string{
		"app.pl":          `my $q = "SELECT * FROM users";`,
		"lib/DB.pm":       `my $sth = $dbh->prepare("UPDATE t SET x = ?");`,
		"notes.txt":       `SELECT looks like SQL but wrong extension`,
		".hidden.pl":      `my $q = "SELECT 1";`,
		"t/basic.t":       `$dbh->do("DELETE FROM fixtures");`,
		"blib/skipped.pl": `my $q = "SELECT 1";`,
	}
	for name, content := range testFiles {
		path := filepath.Join(tmpDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to create test file %s: %v", name, err)
		}
	}

	repo := NewRepoScanner(tmpDir, DefaultVocabulary(), []string{".pl", ".pm", ".t"}, 4)
	results, scanned, err := repo.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if scanned != 3 {
		t.Errorf("Expected 3 candidate files, got %d", scanned)
	}
	for _, want := range []string{"app.pl", "lib/DB.pm", "t/basic.t"} {
		if _, ok := results[want]; !ok {
			t.Errorf("Expected results for %s, got keys %v", want, keysOf(results))
		}
	}
	for _, skipped := range []string{"notes.txt", ".hidden.pl", "blib/skipped.pl"} {
		if _, ok := results[skipped]; ok {
			t.Errorf("File %s should have been skipped", skipped)
		}
	}
}

func TestRepoScannerGitignore(t *testing.T) {
	tmpDir := t.TempDir()

	files := map[string]string{
		".gitignore":      "generated/\nscratch.pl\n",
		"keep.pl":         `my $q = "SELECT 1";`,
		"scratch.pl":      `my $q = "SELECT 2";`,
		"generated/g.pl":  `my $q = "SELECT 3";`,
	}
	for name, content := range files {
		path := filepath.Join(tmpDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}

	repo := NewRepoScanner(tmpDir, DefaultVocabulary(), []string{".pl"}, 2)
	results, scanned, err := repo.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if scanned != 1 {
		t.Errorf("Expected only keep.pl to be scanned, got %d files", scanned)
	}
	if _, ok := results["keep.pl"]; !ok {
		t.Errorf("Expected keep.pl in results, got %v", keysOf(results))
	}
}

func TestRepoScannerProgress(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"a.pl", "b.pl"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(`my $q = "SELECT 1";`), 0o644); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}

	repo := NewRepoScanner(tmpDir, DefaultVocabulary(), []string{".pl"}, 1)
	var calls int
	repo.SetProgressCallback(func(done, total int, path string) {
		calls++
		if total != 2 {
			t.Errorf("Expected total 2, got %d", total)
		}
	})
	if _, _, err := repo.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 progress calls, got %d", calls)
	}
}

func keysOf(m map[string]FileFindings) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
