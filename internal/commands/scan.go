package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ppiankov/sqlspectre/internal/analyzer"
	"github.com/ppiankov/sqlspectre/internal/baseline"
	"github.com/ppiankov/sqlspectre/internal/inventory"
	"github.com/ppiankov/sqlspectre/internal/report"
	"github.com/ppiankov/sqlspectre/internal/scanner"
)

type scanFlags struct {
	repoPath          string
	format            string
	outputFile        string
	dbPath            string
	baselinePath      string
	extensions        []string
	excludeDirs       []string
	ignoreVars        []string
	concurrency       int
	timeout           time.Duration
	noProgress        bool
	failOnMissingVars bool
	failOnUnnamed     bool
}

var scanOpts scanFlags

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a repository for embedded SQL",
	Long: `Scan walks a source tree, finds SQL carried in string literals and
heredocs, resolves the variables they are assigned to, locates database
call sites and reports statements that are used in calls but never
assigned SQL in the same file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyConfigToScanFlags(cmd)
		return runScan()
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanOpts.repoPath, "repo", ".", "repository path to scan")
	scanCmd.Flags().StringVar(&scanOpts.format, "format", "text", "output format: text, json, yaml, sarif")
	scanCmd.Flags().StringVar(&scanOpts.outputFile, "output", "", "write report to file instead of stdout")
	scanCmd.Flags().StringVar(&scanOpts.dbPath, "db", "", "write findings to a SQLite inventory database")
	scanCmd.Flags().StringVar(&scanOpts.baselinePath, "baseline", "", "compare against a baseline JSON report")
	scanCmd.Flags().StringSliceVar(&scanOpts.extensions, "extensions", []string{".pl", ".pm", ".cgi", ".t"}, "file extensions to scan")
	scanCmd.Flags().StringSliceVar(&scanOpts.excludeDirs, "exclude", nil, "directory names to skip")
	scanCmd.Flags().StringSliceVar(&scanOpts.ignoreVars, "ignore-vars", nil, "extra variable names to ignore in missing-variable detection")
	scanCmd.Flags().IntVar(&scanOpts.concurrency, "concurrency", runtime.NumCPU(), "number of files scanned in parallel")
	scanCmd.Flags().DurationVar(&scanOpts.timeout, "timeout", 10*time.Minute, "abort the scan after this duration")
	scanCmd.Flags().BoolVar(&scanOpts.noProgress, "no-progress", false, "disable progress output")
	scanCmd.Flags().BoolVar(&scanOpts.failOnMissingVars, "fail-on-missing-vars", false, "exit non-zero when missing variables are found")
	scanCmd.Flags().BoolVar(&scanOpts.failOnUnnamed, "fail-on-unnamed", false, "exit non-zero when a SQL literal cannot be attributed to a variable")
}

// applyConfigToScanFlags folds config file values into flags the user
// did not set explicitly on the command line.
func applyConfigToScanFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	if len(cfg.Extensions) > 0 && !flags.Lookup("extensions").Changed {
		scanOpts.extensions = cfg.Extensions
	}
	if len(cfg.Exclude) > 0 && !flags.Lookup("exclude").Changed {
		scanOpts.excludeDirs = cfg.Exclude
	}
	if len(cfg.IgnoreVars) > 0 && !flags.Lookup("ignore-vars").Changed {
		scanOpts.ignoreVars = cfg.IgnoreVars
	}
	if cfg.Format != "" && !flags.Lookup("format").Changed {
		scanOpts.format = cfg.Format
	}
	if cfg.Concurrency > 0 && !flags.Lookup("concurrency").Changed {
		scanOpts.concurrency = cfg.Concurrency
	}
	if d := cfg.TimeoutDuration(); d > 0 && !flags.Lookup("timeout").Changed {
		scanOpts.timeout = d
	}
}

func runScan() error {
	info, err := os.Stat(scanOpts.repoPath)
	if err != nil {
		return enhanceError("scan", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("scan failed: %s is not a directory", scanOpts.repoPath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), scanOpts.timeout)
	defer cancel()

	vocab := scanner.DefaultVocabulary().WithIgnoredVars(scanOpts.ignoreVars)

	repo := scanner.NewRepoScanner(scanOpts.repoPath, vocab, scanOpts.extensions, scanOpts.concurrency)
	if len(scanOpts.excludeDirs) > 0 {
		repo.SetExcludedDirs(scanOpts.excludeDirs)
	}
	if showProgress() {
		repo.SetProgressCallback(func(done, total int, path string) {
			fmt.Fprintf(os.Stderr, "\r\033[KScanning [%d/%d] %s", done, total, path)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		})
	}

	printStatus("scanning %s", scanOpts.repoPath)
	files, scanned, err := repo.Scan(ctx)
	if err != nil {
		return enhanceError("scan", err)
	}

	result := analyzer.Analyze(files, vocab)
	result.Summary.FilesScanned = scanned

	data := report.Data{
		Tool:      "sqlspectre",
		Version:   GetVersion(),
		Timestamp: time.Now().UTC(),
		Config: report.Config{
			RepoPath:    scanOpts.repoPath,
			Extensions:  scanOpts.extensions,
			Concurrency: scanOpts.concurrency,
		},
		Summary: result.Summary,
		Files:   result.Files,
	}

	writer, closer, err := openOutput(scanOpts.outputFile)
	if err != nil {
		return err
	}
	reporter, err := selectReporter(scanOpts.format, writer)
	if err != nil {
		closer()
		return err
	}
	if err := reporter.Generate(data); err != nil {
		closer()
		return fmt.Errorf("generating report: %w", err)
	}
	closer()

	if scanOpts.dbPath != "" {
		if err := inventory.WriteDB(scanOpts.dbPath, data); err != nil {
			return fmt.Errorf("writing inventory database: %w", err)
		}
		printStatus("inventory written to %s", scanOpts.dbPath)
	}

	if scanOpts.baselinePath != "" {
		if err := reportBaselineDiff(data); err != nil {
			return err
		}
	}

	if scanOpts.failOnMissingVars && len(result.Summary.MissingVariables) > 0 {
		return fmt.Errorf("found %d variables used in database calls with no SQL assignment", len(result.Summary.MissingVariables))
	}
	if scanOpts.failOnUnnamed && result.Summary.SQLStrings+result.Summary.SQLHeredocs > result.Summary.NamedStatements {
		unnamed := result.Summary.SQLStrings + result.Summary.SQLHeredocs - result.Summary.NamedStatements
		return fmt.Errorf("found %d SQL literals not attributable to a variable", unnamed)
	}
	return nil
}

func reportBaselineDiff(data report.Data) error {
	base, err := baseline.Load(scanOpts.baselinePath)
	if err != nil {
		return fmt.Errorf("loading baseline: %w", err)
	}
	diff := baseline.Diff(baseline.Flatten(data), base)
	fmt.Fprintf(os.Stderr, "baseline: %d new, %d resolved, %d unchanged\n",
		len(diff.New), len(diff.Resolved), len(diff.Unchanged))
	if newMissing := diff.NewMissingVariables(); len(newMissing) > 0 {
		for _, f := range newMissing {
			fmt.Fprintf(os.Stderr, "  new missing variable: %s:%d $%s\n", f.File, f.Line, f.Variable)
		}
		return fmt.Errorf("baseline check failed: %d new missing variables", len(newMissing))
	}
	return nil
}

func showProgress() bool {
	if scanOpts.noProgress || quiet {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
