// Package output provides output formatters for popup manager snapshots and
// scenario traces.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/jmylchreest/popstack/internal/model"
)

// Formatter formats manager state for output.
type Formatter interface {
	// FormatSnapshot writes a single snapshot.
	FormatSnapshot(w io.Writer, snap model.Snapshot) error
	// FormatTrace writes a scenario trace.
	FormatTrace(w io.Writer, trace *model.Trace) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatLine  FormatType = "line"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatIDs   FormatType = "ids"
)

// ValidFormats returns all supported format names.
func ValidFormats() []FormatType {
	return []FormatType{FormatPlain, FormatLine, FormatJSON, FormatYAML, FormatIDs}
}

// ParseFormat parses a format name. An empty string means plain.
func ParseFormat(s string) (FormatType, error) {
	if s == "" {
		return FormatPlain, nil
	}
	for _, f := range ValidFormats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format %q, must be one of: %v", s, ValidFormats())
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatIDs:
		return NewIDsFormatter()
	case FormatLine:
		return NewLineFormatter(opts)
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template  string           // Custom per-popup template for plain/line format
	ShowIndex bool             // Show sibling index
	ShowAge   bool             // Show how long each popup has been tracked
	Separator string           // Field separator for line format
	Now       func() time.Time // Reference time for ages (default: snapshot time)
}

// DefaultFormatterOptions returns sensible defaults.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex: true,
		ShowAge:   true,
		Separator: " | ",
	}
}

// reference returns the time ages are measured against.
func (o FormatterOptions) reference(snap model.Snapshot) time.Time {
	if o.Now != nil {
		return o.Now()
	}
	if !snap.TakenAt.IsZero() {
		return snap.TakenAt
	}
	return time.Now()
}
