package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/popstack/internal/model"
)

// YAMLFormatter formats snapshots and traces as YAML, matching the scenario
// script format.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// FormatSnapshot writes a snapshot as a YAML document.
func (f *YAMLFormatter) FormatSnapshot(w io.Writer, snap model.Snapshot) error {
	return f.encode(w, snap)
}

// FormatTrace writes a trace as a YAML document.
func (f *YAMLFormatter) FormatTrace(w io.Writer, trace *model.Trace) error {
	return f.encode(w, trace)
}

func (f *YAMLFormatter) encode(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
