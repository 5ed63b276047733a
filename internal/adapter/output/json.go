package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/popstack/internal/model"
)

// JSONFormatter formats snapshots and traces as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// FormatSnapshot writes a snapshot as a JSON object.
func (f *JSONFormatter) FormatSnapshot(w io.Writer, snap model.Snapshot) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(snap)
}

// FormatTrace writes a trace as a JSON object.
func (f *JSONFormatter) FormatTrace(w io.Writer, trace *model.Trace) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(trace)
}
