// Package overlay controls the single translucent backdrop shared by all
// popups. The overlay sits directly below the top popup in sibling order.
package overlay

import (
	"fmt"
	"log/slog"
)

// Mode selects how the overlay behaves while popups are showing.
type Mode int

const (
	// ModeDefault shows the overlay behind the top popup.
	ModeDefault Mode = iota
	// ModeCustom keeps the overlay hidden; the host fades its own backdrop.
	ModeCustom
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ParseMode parses "default" or "custom". An empty string means default.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "default":
		return ModeDefault, nil
	case "custom":
		return ModeCustom, nil
	default:
		return ModeDefault, fmt.Errorf("invalid overlay mode %q: must be 'default' or 'custom'", s)
	}
}

// Controller owns the overlay's visibility and sibling index.
// Controller is not safe for concurrent use.
type Controller struct {
	logger *slog.Logger

	mode    Mode
	visible bool
	sibling int
	forced  bool // Visibility was set explicitly, ignoring stack state
}

// NewController creates a hidden, unanchored overlay.
func NewController(mode Mode, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		logger:  logger,
		mode:    mode,
		sibling: -1,
	}
}

// SetActive updates the overlay after a stack change.
//
// With active set, a popup has just opened at topSibling: the overlay moves
// to topSibling-1 and is shown in default mode or hidden in custom mode.
// Without active, a popup has just closed: if another popup remains
// (topSibling >= 0) the overlay is re-anchored below it, otherwise it is
// hidden.
func (c *Controller) SetActive(topSibling int, active bool) {
	c.forced = false

	if active {
		c.anchor(topSibling)
		if c.mode == ModeDefault {
			c.ShowFade()
		} else {
			c.HideFade()
		}
		return
	}

	// Popups remain: re-anchor and restore the mode's visibility, which a
	// forced hide may have overridden
	if topSibling >= 0 {
		c.anchor(topSibling)
		if c.mode == ModeDefault {
			c.ShowFade()
		} else {
			c.HideFade()
		}
		return
	}

	c.HideFade()
	c.sibling = -1
}

func (c *Controller) anchor(topSibling int) {
	idx := topSibling - 1
	if idx < 0 {
		idx = 0
	}
	if idx != c.sibling {
		c.logger.Debug("overlay anchored", "sibling_index", idx, "top_sibling_index", topSibling)
	}
	c.sibling = idx
}

// ShowFade makes the overlay visible. Idempotent.
func (c *Controller) ShowFade() {
	if c.visible {
		return
	}
	c.visible = true
	c.logger.Debug("overlay shown", "sibling_index", c.sibling)
}

// HideFade hides the overlay. Idempotent.
func (c *Controller) HideFade() {
	if !c.visible {
		return
	}
	c.visible = false
	c.logger.Debug("overlay hidden")
}

// EnableFadeBackground forces the overlay visible regardless of stack
// state. The next SetActive call takes control back.
func (c *Controller) EnableFadeBackground() {
	c.forced = true
	c.visible = true
}

// DisableFadeBackground forces the overlay hidden regardless of stack
// state. The next SetActive call takes control back.
func (c *Controller) DisableFadeBackground() {
	c.forced = true
	c.visible = false
}

// Reset hides and unanchors the overlay.
func (c *Controller) Reset() {
	c.forced = false
	c.HideFade()
	c.sibling = -1
}

// SetMode switches between default and custom mode. Callers re-apply
// SetActive afterwards so an already-visible overlay follows the new mode.
func (c *Controller) SetMode(mode Mode) {
	if mode == c.mode {
		return
	}
	c.logger.Debug("overlay mode changed", "from", c.mode.String(), "to", mode.String())
	c.mode = mode
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode { return c.mode }

// Visible reports whether the overlay is shown.
func (c *Controller) Visible() bool { return c.visible }

// SiblingIndex returns the overlay's sibling index, or -1 when unanchored.
func (c *Controller) SiblingIndex() int { return c.sibling }

// Forced reports whether visibility was set explicitly by
// EnableFadeBackground or DisableFadeBackground.
func (c *Controller) Forced() bool { return c.forced }
