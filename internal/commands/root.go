package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ppiankov/sqlspectre/internal/config"
	"github.com/ppiankov/sqlspectre/internal/logging"
)

var (
	verbose bool
	quiet   bool
	version string
	commit  string
	date    string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sqlspectre",
	Short: "SQLSpectre - embedded SQL inventory auditor",
	Long: `SQLSpectre scans a codebase for embedded SQL text, correlates it with the
variables and database-client call sites that use it, and produces a
structured statement inventory. SQL used in calls with no traceable
textual origin in the same file is flagged.

Part of the Spectre family of infrastructure cleanup tools.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose, quiet)
		loaded, err := config.Load(".")
		if err != nil {
			slog.Warn("Failed to load config file", "error", err)
		} else {
			cfg = loaded
		}
	},
}

// Execute runs the root command with injected build info.
func Execute(v, c, d string) error {
	version = v
	commit = c
	date = d
	return rootCmd.Execute()
}

// GetVersion returns the current version.
func GetVersion() string {
	return version
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Only log errors")
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
}
