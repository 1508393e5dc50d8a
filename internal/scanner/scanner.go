// Package scanner performs the single-pass audit of source files for
// embedded SQL: it tokenizes each file, classifies SQL-bearing literals,
// resolves their assignment targets and independently detects
// database-call sites in the raw text.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/ppiankov/sqlspectre/internal/lexis"
)

// maxFileSize skips files unlikely to be source text.
const maxFileSize = 10 * 1024 * 1024

// FileScanner scans one file at a time. It holds only compiled vocabulary;
// per-file state (tree, raw text) lives on the stack of ScanFile, so a
// single FileScanner is safe for concurrent use.
type FileScanner struct {
	vocab     Vocabulary
	keywordRe *regexp.Regexp
	callRe    *regexp.Regexp
}

// NewFileScanner compiles the vocabulary into a reusable file scanner.
func NewFileScanner(vocab Vocabulary) *FileScanner {
	return &FileScanner{
		vocab:     vocab,
		keywordRe: compileKeywordPattern(vocab.SQLKeywords),
		callRe:    compileCallPattern(vocab.CallVerbs),
	}
}

// ScanFile parses src and returns the file's raw literal and call-site
// finding sets. A parse failure is returned as an error; the caller
// decides whether to skip the file.
func (s *FileScanner) ScanFile(path string, src []byte) (FileFindings, error) {
	tree, err := lexis.Parse(src)
	if err != nil {
		return FileFindings{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return FileFindings{
		Path:     path,
		Literals: s.scanLiterals(tree),
		Calls:    s.scanCalls(src),
	}, nil
}

// ProgressFunc receives scan progress updates.
type ProgressFunc func(done, total int, path string)

// RepoScanner walks a directory tree and scans every candidate source
// file. Files are independent units of work and are scanned concurrently;
// results merge into a map keyed by path.
type RepoScanner struct {
	root        string
	extensions  map[string]bool
	excludeDirs map[string]bool
	concurrency int
	file        *FileScanner
	progress    ProgressFunc
}

// NewRepoScanner creates a scanner rooted at repoPath. Extensions are
// matched case-insensitively and include the leading dot.
func NewRepoScanner(repoPath string, vocab Vocabulary, extensions []string, concurrency int) *RepoScanner {
	if concurrency < 1 {
		concurrency = 1
	}
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[strings.ToLower(e)] = true
	}
	return &RepoScanner{
		root:        repoPath,
		extensions:  exts,
		excludeDirs: map[string]bool{".git": true, "node_modules": true, "blib": true, "_build": true},
		concurrency: concurrency,
		file:        NewFileScanner(vocab),
	}
}

// SetExcludedDirs adds directory names skipped during traversal.
func (s *RepoScanner) SetExcludedDirs(names []string) {
	for _, n := range names {
		s.excludeDirs[n] = true
	}
}

// SetProgressCallback installs a callback invoked after each file scan.
func (s *RepoScanner) SetProgressCallback(fn ProgressFunc) {
	s.progress = fn
}

// Scan walks the repository and scans candidate files. The returned map is
// keyed by slash-separated path relative to the root. Unreadable and
// unparsable files are skipped with a diagnostic, never fatally. The
// second return value is the number of candidate files visited.
func (s *RepoScanner) Scan(ctx context.Context) (map[string]FileFindings, int, error) {
	paths, err := s.collectFiles()
	if err != nil {
		return nil, 0, fmt.Errorf("walking %s: %w", s.root, err)
	}

	results := make(map[string]FileFindings, len(paths))
	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0
	semaphore := make(chan struct{}, s.concurrency)

	for _, rel := range paths {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(rel string) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			full := filepath.Join(s.root, filepath.FromSlash(rel))
			src, err := os.ReadFile(full)
			if err != nil {
				slog.Warn("Skipping unreadable file", "file", rel, "error", err)
				return
			}
			ff, err := s.file.ScanFile(rel, src)
			if err != nil {
				slog.Warn("Skipping unparsable file", "file", rel, "error", err)
				return
			}

			mu.Lock()
			results[rel] = ff
			done++
			if s.progress != nil {
				s.progress(done, len(paths), rel)
			}
			mu.Unlock()
		}(rel)
	}
	wg.Wait()

	return results, len(paths), ctx.Err()
}

// collectFiles enumerates candidate files under the root, honoring the
// extension filter, the repository's .gitignore and the excluded
// directory set.
func (s *RepoScanner) collectFiles() ([]string, error) {
	gitignore := loadGitignore(s.root)

	var paths []string
	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if rel == "." {
				return nil
			}
			if s.excludeDirs[info.Name()] || strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			if gitignore != nil && gitignore.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(info.Name(), ".") || info.Size() > maxFileSize {
			return nil
		}
		if !s.extensions[strings.ToLower(filepath.Ext(info.Name()))] {
			return nil
		}
		if gitignore != nil && gitignore.MatchesPath(rel) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
