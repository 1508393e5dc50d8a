package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/sqlspectre/pkg/sqlcatalog"
)

type catalogFlags struct {
	reportFile  string
	name        string
	placeholder string
	params      []string
}

var catalogOpts catalogFlags

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Query statements from a scan report",
	Long: `Catalog loads a previously generated scan report and looks up named
SQL statements in it. With --name it prints a single statement; named
parameters can be substituted with --param and rendered with ? or $N
placeholders. Without --name it lists all statement names.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCatalog()
	},
}

func init() {
	catalogCmd.Flags().StringVar(&catalogOpts.reportFile, "report", "", "scan report to load (JSON or YAML)")
	catalogCmd.Flags().StringVar(&catalogOpts.name, "name", "", "statement name to print")
	catalogCmd.Flags().StringVar(&catalogOpts.placeholder, "placeholder", "question", "placeholder style: question or dollar")
	catalogCmd.Flags().StringArrayVar(&catalogOpts.params, "param", nil, "named parameter value as key=value (repeatable)")
	catalogCmd.MarkFlagRequired("report")
}

func runCatalog() error {
	cat, err := sqlcatalog.Load(catalogOpts.reportFile)
	if err != nil {
		return enhanceError("catalog", err)
	}

	if catalogOpts.name == "" {
		for _, name := range cat.Names() {
			fmt.Println(name)
		}
		return nil
	}

	stmt, ok := cat.Get(catalogOpts.name)
	if !ok {
		return fmt.Errorf("statement %q not found in %s (%d statements)", catalogOpts.name, catalogOpts.reportFile, cat.Len())
	}

	if len(catalogOpts.params) == 0 {
		fmt.Println(stmt.SQL)
		return nil
	}

	params, err := parseParams(catalogOpts.params)
	if err != nil {
		return err
	}
	style, err := parsePlaceholder(catalogOpts.placeholder)
	if err != nil {
		return err
	}
	query, args, err := sqlcatalog.Bind(stmt.SQL, params, style)
	if err != nil {
		return fmt.Errorf("binding %s: %w", catalogOpts.name, err)
	}
	fmt.Println(query)
	for i, arg := range args {
		fmt.Fprintf(os.Stderr, "  arg %d: %v\n", i+1, arg)
	}
	return nil
}

func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}

func parsePlaceholder(s string) (sqlcatalog.Placeholder, error) {
	switch s {
	case "question":
		return sqlcatalog.Question, nil
	case "dollar":
		return sqlcatalog.Dollar, nil
	default:
		return 0, fmt.Errorf("unsupported placeholder style: %s (supported: question, dollar)", s)
	}
}
