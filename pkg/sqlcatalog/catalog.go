// Package sqlcatalog loads the statement inventory a scan produced and
// resolves statements by their synthesized name at query time, binding
// :name placeholders to driver arguments.
package sqlcatalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/sqlspectre/internal/report"
	"github.com/ppiankov/sqlspectre/internal/scanner"
)

// Statement is one named SQL statement extracted from a scan.
type Statement struct {
	Name string
	SQL  string
	File string
	Line int
}

// Catalog indexes the named statements of one scan report.
type Catalog struct {
	statements map[string]Statement
}

// Load reads a scan report, JSON or YAML by file extension, and indexes
// every finding that carries a synthesized name.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var data report.Data
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &data)
	default:
		err = json.Unmarshal(raw, &data)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return FromReport(data), nil
}

// FromReport builds a catalog directly from report data.
func FromReport(data report.Data) *Catalog {
	c := &Catalog{statements: make(map[string]Statement)}
	for path, findings := range data.Files {
		for _, f := range findings {
			if f.Name == "" || f.Snippet == "" {
				continue
			}
			if f.Kind != scanner.KindString && f.Kind != scanner.KindHeredoc {
				continue
			}
			c.statements[f.Name] = Statement{
				Name: f.Name,
				SQL:  f.Snippet,
				File: path,
				Line: f.Line,
			}
		}
	}
	return c
}

// Get returns the statement with the given name.
func (c *Catalog) Get(name string) (Statement, bool) {
	s, ok := c.statements[name]
	return s, ok
}

// Names returns all statement names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.statements))
	for n := range c.statements {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of indexed statements.
func (c *Catalog) Len() int { return len(c.statements) }
