package popup

import (
	"time"
)

// Template describes how to build a dialog of a given kind.
type Template struct {
	Kind  Kind
	Title string
	Body  string
	Open  time.Duration // Open transition length (0 = instant on frame clocks)
	Close time.Duration // Close transition length
}

// Dialog is a titled popup whose open and close animations are driven by a
// Transition. It is the popup hosts build from registry templates.
type Dialog struct {
	id         string
	template   Template
	host       Host
	transition Transition

	// State
	visible    bool
	closing    bool
	released   bool
	sibling    int
	topCount   int // Times OnBecameTop was invoked
	activateAt time.Time
}

// NewDialog creates a dialog. It starts hidden; the manager activates it.
func NewDialog(id string, tmpl Template, host Host, transition Transition) *Dialog {
	if transition == nil {
		transition = Instant{}
	}
	return &Dialog{
		id:         id,
		template:   tmpl,
		host:       host,
		transition: transition,
		sibling:    -1,
	}
}

// ID implements Popup.
func (d *Dialog) ID() string { return d.id }

// Kind implements Popup.
func (d *Dialog) Kind() Kind { return d.template.Kind }

// Title returns the dialog title.
func (d *Dialog) Title() string { return d.template.Title }

// Body returns the dialog body text.
func (d *Dialog) Body() string { return d.template.Body }

// Transition returns the transition driving this dialog.
func (d *Dialog) Transition() Transition { return d.transition }

// Activate shows the dialog and plays its open transition.
func (d *Dialog) Activate() {
	d.visible = true
	d.closing = false
	d.activateAt = time.Now()
	d.transition.In(Once(func() {
		if d.host != nil {
			d.host.OnOpened(d)
		}
	}))
}

// Hide plays the close transition and reports back when it finishes.
// Hiding a dialog that is already hidden or closing does nothing.
func (d *Dialog) Hide() {
	if !d.visible || d.closing {
		return
	}
	d.closing = true
	d.transition.Out(Once(func() {
		d.visible = false
		d.closing = false
		if d.host != nil {
			d.host.OnClosed(d)
		}
	}))
}

// ForceHide hides the dialog immediately without notifying the host.
func (d *Dialog) ForceHide() {
	d.visible = false
	d.closing = false
}

// OnBecameTop implements Popup.
func (d *Dialog) OnBecameTop() { d.topCount++ }

// SetVisible implements Visibility.
func (d *Dialog) SetVisible(visible bool) { d.visible = visible }

// SetSiblingIndex implements Orderable.
func (d *Dialog) SetSiblingIndex(index int) { d.sibling = index }

// Release implements Releaser.
func (d *Dialog) Release() {
	d.visible = false
	d.closing = false
	d.released = true
}

// Visible reports whether the dialog is shown.
func (d *Dialog) Visible() bool { return d.visible }

// Closing reports whether the close transition is running.
func (d *Dialog) Closing() bool { return d.closing }

// Released reports whether the dialog was released by a hard reset.
func (d *Dialog) Released() bool { return d.released }

// SiblingIndex returns the last sibling index assigned by the stack (-1 if never pushed).
func (d *Dialog) SiblingIndex() int { return d.sibling }

// TopCount returns how many times the dialog became the top popup.
func (d *Dialog) TopCount() int { return d.topCount }

// ActivatedAt returns when Activate was last called.
func (d *Dialog) ActivatedAt() time.Time { return d.activateAt }
