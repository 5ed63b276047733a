package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/jmylchreest/popstack/internal/model"
)

// LineFormatter writes one line per popup, stack top first then the queue,
// for piping into menus and scripts.
type LineFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewLineFormatter creates a new line formatter.
func NewLineFormatter(opts FormatterOptions) *LineFormatter {
	f := &LineFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("line").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// FormatSnapshot writes every tracked popup on its own line.
func (f *LineFormatter) FormatSnapshot(w io.Writer, snap model.Snapshot) error {
	now := f.opts.reference(snap)

	for i := len(snap.Stack) - 1; i >= 0; i-- {
		v := snap.Stack[i]
		if _, err := fmt.Fprintln(w, f.formatLine(v, snap.Current == v.ID, now)); err != nil {
			return err
		}
	}
	for _, v := range snap.Queue {
		if _, err := fmt.Fprintln(w, f.formatLine(v, false, now)); err != nil {
			return err
		}
	}
	return nil
}

// FormatTrace writes the final state of the trace.
func (f *LineFormatter) FormatTrace(w io.Writer, trace *model.Trace) error {
	return f.FormatSnapshot(w, trace.Final)
}

// formatLine formats a single popup line.
func (f *LineFormatter) formatLine(v model.PopupView, current bool, now time.Time) string {
	if f.template != nil {
		var buf strings.Builder
		data := templateData{Popup: v, Current: current, Age: v.Age(now)}
		if err := f.template.Execute(&buf, data); err == nil {
			return buf.String()
		}
	}

	// Default format: [sibling] [age] kind | name | state
	var parts []string
	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	if f.opts.ShowIndex {
		parts = append(parts, strconv.Itoa(v.SiblingIndex))
	}

	if f.opts.ShowAge {
		parts = append(parts, v.Age(now))
	}

	parts = append(parts, v.Kind, v.Name(), v.State)

	return strings.Join(parts, sep)
}
