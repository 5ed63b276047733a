package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/popstack/internal/model"
)

// IDsFormatter outputs just the popup IDs, one per line, stack top first
// then the queue.
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// FormatSnapshot writes popup IDs to the writer, one per line.
func (f *IDsFormatter) FormatSnapshot(w io.Writer, snap model.Snapshot) error {
	for i := len(snap.Stack) - 1; i >= 0; i-- {
		if _, err := fmt.Fprintln(w, snap.Stack[i].ID); err != nil {
			return err
		}
	}
	for _, v := range snap.Queue {
		if _, err := fmt.Fprintln(w, v.ID); err != nil {
			return err
		}
	}
	return nil
}

// FormatTrace writes the IDs left in the trace's final snapshot.
func (f *IDsFormatter) FormatTrace(w io.Writer, trace *model.Trace) error {
	return f.FormatSnapshot(w, trace.Final)
}
