package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/popstack/internal/model"
)

// PlainFormatter formats snapshots and traces as human-readable text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// FormatSnapshot writes the stack (top first), the queue, and the overlay.
func (f *PlainFormatter) FormatSnapshot(w io.Writer, snap model.Snapshot) error {
	var sb strings.Builder
	now := f.opts.reference(snap)

	fmt.Fprintf(&sb, "stack (%d):\n", len(snap.Stack))
	for i := len(snap.Stack) - 1; i >= 0; i-- {
		f.writePopup(&sb, snap.Stack[i], snap.Current == snap.Stack[i].ID, now)
	}

	fmt.Fprintf(&sb, "queue (%d):\n", len(snap.Queue))
	for _, v := range snap.Queue {
		f.writePopup(&sb, v, false, now)
	}

	overlay := "hidden"
	if snap.Overlay.Visible {
		overlay = "visible"
	}
	fmt.Fprintf(&sb, "overlay: %s sibling=%d mode=%s", overlay, snap.Overlay.SiblingIndex, snap.Overlay.Mode)
	if snap.Overlay.Forced {
		sb.WriteString(" (forced)")
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "has_popup=%t sorting_order=%d top_popup_index=%d\n",
		snap.HasPopup, snap.SortingOrder, snap.TopPopupIndex)

	_, err := io.WriteString(w, sb.String())
	return err
}

// writePopup writes one popup line, using the custom template if set.
func (f *PlainFormatter) writePopup(sb *strings.Builder, v model.PopupView, current bool, now time.Time) {
	if f.template != nil {
		data := templateData{Popup: v, Current: current, Age: v.Age(now)}
		var buf strings.Builder
		if err := f.template.Execute(&buf, data); err == nil {
			sb.WriteString("  " + buf.String() + "\n")
			return
		}
	}

	marker := " "
	if current {
		marker = "*"
	}
	fmt.Fprintf(sb, "  %s ", marker)

	if f.opts.ShowIndex && v.SiblingIndex >= 0 {
		fmt.Fprintf(sb, "[%d] ", v.SiblingIndex)
	}

	fmt.Fprintf(sb, "%s <%s> %s", v.Name(), v.Kind, v.State)

	if f.opts.ShowAge && !v.Since.IsZero() {
		fmt.Fprintf(sb, " (%s)", v.Age(now))
	}
	sb.WriteString("\n")
}

// FormatTrace writes one line per step followed by the final snapshot.
func (f *PlainFormatter) FormatTrace(w io.Writer, trace *model.Trace) error {
	var sb strings.Builder

	if trace.Name != "" {
		fmt.Fprintf(&sb, "scenario: %s\n", trace.Name)
	}

	for _, e := range trace.Entries {
		fmt.Fprintf(&sb, "%3d. %s", e.Step, e.Action)
		if e.Target != "" {
			sb.WriteString(" " + e.Target)
		}
		if e.Result != "" {
			sb.WriteString(" -> " + e.Result)
		}
		sb.WriteString("\n")

		overlay := "off"
		if e.Overlay {
			overlay = "on"
		}
		fmt.Fprintf(&sb, "     stack=[%s] queue=[%s] overlay=%s has_popup=%t",
			strings.Join(e.Stack, " "), strings.Join(e.Queue, " "), overlay, e.HasPopup)
		if len(e.Events) > 0 {
			fmt.Fprintf(&sb, " events=[%s]", strings.Join(e.Events, " "))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("final:\n")
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}
	return f.FormatSnapshot(w, trace.Final)
}

// templateData provides data for custom templates.
type templateData struct {
	Popup   model.PopupView
	Current bool
	Age     string
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			if len(s) <= maxLen {
				return s
			}
			if maxLen <= 3 {
				return s[:maxLen]
			}
			return s[:maxLen-3] + "..."
		},
		"since": func(t time.Time) string {
			if t.IsZero() {
				return "unknown"
			}
			return humanize.Time(t)
		},
		"upper": strings.ToUpper,
	}
}
