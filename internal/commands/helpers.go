package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ppiankov/sqlspectre/internal/report"
)

func printStatus(format string, args ...interface{}) {
	slog.Info(fmt.Sprintf(format, args...))
}

// enhanceError enhances an error with additional context and helpful
// suggestions for common failure shapes.
func enhanceError(operation string, err error) error {
	if err == nil {
		return nil
	}

	errMsg := err.Error()

	if strings.Contains(errMsg, "no such file or directory") {
		return fmt.Errorf("%s failed: Repository path not found.\n"+
			"Solutions:\n"+
			"  - Check the --repo path is correct\n"+
			"  - Ensure the directory exists and is readable\n"+
			"Original error: %w", operation, err)
	}

	if strings.Contains(errMsg, "permission denied") {
		return fmt.Errorf("%s failed: Permission denied.\n"+
			"Solutions:\n"+
			"  - Check read permissions on the repository\n"+
			"  - Re-run as a user that can read the scanned tree\n"+
			"Original error: %w", operation, err)
	}

	if strings.Contains(errMsg, "too many open files") {
		return fmt.Errorf("%s failed: File descriptor limit reached.\n"+
			"Solutions:\n"+
			"  - Reduce concurrency with --concurrency\n"+
			"  - Raise the open file limit (ulimit -n)\n"+
			"Original error: %w", operation, err)
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}

func selectReporter(format string, writer io.Writer) (report.Reporter, error) {
	switch format {
	case "json":
		return report.NewJSONReporter(writer), nil
	case "yaml":
		return report.NewYAMLReporter(writer), nil
	case "sarif":
		return report.NewSARIFReporter(writer), nil
	case "text":
		return report.NewTextReporter(writer), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: text, json, yaml, sarif)", format)
	}
}
