// Package model defines the read-only views hosts use to inspect the popup
// manager: snapshots of the stack, queue and overlay, and scenario traces.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Invariant violations reported by Snapshot.Validate.
var (
	ErrOverlayMisplaced  = errors.New("overlay is not directly below the top popup")
	ErrCurrentNotTop     = errors.New("current popup is not the top of the stack")
	ErrShowingMismatch   = errors.New("popup-showing flag disagrees with stack occupancy")
	ErrOverlayVisibility = errors.New("overlay visibility disagrees with stack occupancy")
)

// PopupView describes one tracked popup.
type PopupView struct {
	ID           string    `json:"id" yaml:"id"`
	Label        string    `json:"label,omitempty" yaml:"label,omitempty"`
	Kind         string    `json:"kind" yaml:"kind"`
	State        string    `json:"state" yaml:"state"`
	SiblingIndex int       `json:"sibling_index" yaml:"sibling_index"`
	Since        time.Time `json:"since" yaml:"since"` // When the popup entered the stack or queue
}

// OverlayView describes the shared overlay.
type OverlayView struct {
	Visible      bool   `json:"visible" yaml:"visible"`
	SiblingIndex int    `json:"sibling_index" yaml:"sibling_index"`
	Mode         string `json:"mode" yaml:"mode"`
	Forced       bool   `json:"forced,omitempty" yaml:"forced,omitempty"`
}

// Snapshot is a point-in-time view of the popup manager.
type Snapshot struct {
	Stack         []PopupView `json:"stack" yaml:"stack"` // Bottom first
	Queue         []PopupView `json:"queue" yaml:"queue"` // Next first
	Current       string      `json:"current,omitempty" yaml:"current,omitempty"`
	Overlay       OverlayView `json:"overlay" yaml:"overlay"`
	HasPopup      bool        `json:"has_popup" yaml:"has_popup"`
	SortingOrder  int         `json:"sorting_order" yaml:"sorting_order"`
	TopPopupIndex int         `json:"top_popup_index" yaml:"top_popup_index"`
	TakenAt       time.Time   `json:"taken_at" yaml:"taken_at"`
}

// Depth returns the number of popups on the stack.
func (s Snapshot) Depth() int {
	return len(s.Stack)
}

// Top returns the top popup, or nil when the stack is empty.
func (s Snapshot) Top() *PopupView {
	if len(s.Stack) == 0 {
		return nil
	}
	return &s.Stack[len(s.Stack)-1]
}

// Settled reports whether no popup is mid-transition.
func (s Snapshot) Settled() bool {
	for _, p := range s.Stack {
		if p.State == "activating" || p.State == "closing" {
			return false
		}
	}
	return true
}

// Validate checks the structural invariants. A visible overlay sits exactly
// one slot below the top popup. Once settled, the current popup (if any) is
// the top and the popup-showing flag matches stack occupancy. An overlay
// that is not forced is then visible exactly when popups remain, except in
// custom mode where it stays hidden.
func (s Snapshot) Validate() error {
	top := s.Top()

	if s.Overlay.Visible && !s.Overlay.Forced && top != nil && s.Overlay.SiblingIndex != top.SiblingIndex-1 {
		return fmt.Errorf("%w: overlay at %d, top at %d", ErrOverlayMisplaced, s.Overlay.SiblingIndex, top.SiblingIndex)
	}

	if !s.Settled() {
		return nil
	}

	if s.Current != "" && (top == nil || top.ID != s.Current) {
		return ErrCurrentNotTop
	}

	if s.HasPopup != (len(s.Stack) > 0) {
		return fmt.Errorf("%w: has_popup=%t depth=%d", ErrShowingMismatch, s.HasPopup, len(s.Stack))
	}

	if !s.Overlay.Forced {
		want := len(s.Stack) > 0 && s.Overlay.Mode != "custom"
		if s.Overlay.Visible != want {
			return fmt.Errorf("%w: visible=%t depth=%d mode=%s", ErrOverlayVisibility, s.Overlay.Visible, len(s.Stack), s.Overlay.Mode)
		}
	}

	return nil
}

// Name returns the label if set, otherwise the kind and short ID.
func (v PopupView) Name() string {
	if v.Label != "" {
		return v.Label
	}
	id := v.ID
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return v.Kind + "#" + id
}

// Age returns a human-readable duration since the popup was tracked,
// e.g. "3 seconds ago".
func (v PopupView) Age(now time.Time) string {
	if v.Since.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(v.Since, now, "ago", "from now")
}

// Names returns the display names of views in order.
func Names(views []PopupView) []string {
	names := make([]string, len(views))
	for i, v := range views {
		names[i] = v.Name()
	}
	return names
}

// Summary returns a one-line summary such as
// "stack=[A B] queue=[C] overlay=on has_popup=true".
func (s Snapshot) Summary() string {
	overlay := "off"
	if s.Overlay.Visible {
		overlay = "on"
	}
	return fmt.Sprintf("stack=[%s] queue=[%s] overlay=%s has_popup=%t",
		strings.Join(Names(s.Stack), " "),
		strings.Join(Names(s.Queue), " "),
		overlay,
		s.HasPopup,
	)
}
