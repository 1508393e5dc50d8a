package report

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLReporter generates YAML reports.
type YAMLReporter struct {
	writer io.Writer
}

// NewYAMLReporter creates a new YAML reporter.
func NewYAMLReporter(w io.Writer) *YAMLReporter {
	return &YAMLReporter{writer: w}
}

// Generate writes the report as YAML.
func (r *YAMLReporter) Generate(data Data) error {
	data.Timestamp = data.Timestamp.UTC()
	encoder := yaml.NewEncoder(r.writer)
	encoder.SetIndent(2)
	defer func() { _ = encoder.Close() }()
	return encoder.Encode(data)
}
