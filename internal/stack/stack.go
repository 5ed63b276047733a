// Package stack implements the last-in-first-out popup stack that defines
// the visual z-order of open popups.
package stack

import (
	"github.com/jmylchreest/popstack/internal/popup"
)

// DefaultBase is the sibling index given to the first popup pushed onto an
// empty stack. The slot beneath it belongs to the overlay.
const DefaultBase = 1

// slotStride leaves one free slot under every popup for the overlay.
const slotStride = 2

type entry struct {
	popup   popup.Popup
	sibling int
}

// Stack is an ordered sequence of open popups, bottom first.
// Sibling indices grow with push order and are never renumbered; removing
// a middle entry leaves a gap the renderer compacts on its own.
// Stack is not safe for concurrent use.
type Stack struct {
	entries []entry
	base    int
	next    int
}

// New creates an empty stack whose first popup takes sibling index base.
// A base below 1 is raised to 1 so the overlay slot stays non-negative.
func New(base int) *Stack {
	if base < 1 {
		base = DefaultBase
	}
	return &Stack{
		base: base,
		next: base,
	}
}

// Push places p on top and returns its sibling index.
// Popups implementing popup.Orderable are told their new index.
func (s *Stack) Push(p popup.Popup) int {
	idx := s.next
	s.next += slotStride
	s.entries = append(s.entries, entry{popup: p, sibling: idx})

	if o, ok := p.(popup.Orderable); ok {
		o.SetSiblingIndex(idx)
	}
	return idx
}

// Pop removes and returns the top popup.
func (s *Stack) Pop() (popup.Popup, bool) {
	if len(s.entries) == 0 {
		return nil, false
	}
	top := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	s.resetIfEmpty()
	return top.popup, true
}

// Remove takes p out of the stack wherever it is.
// wasTop reports whether p was the top entry; ok is false when p was not
// on the stack, in which case nothing changes.
func (s *Stack) Remove(p popup.Popup) (wasTop bool, ok bool) {
	i := s.indexOf(p)
	if i < 0 {
		return false, false
	}
	wasTop = i == len(s.entries)-1
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.resetIfEmpty()
	return wasTop, true
}

// Top returns the top popup, or nil when the stack is empty.
func (s *Stack) Top() popup.Popup {
	if len(s.entries) == 0 {
		return nil
	}
	return s.entries[len(s.entries)-1].popup
}

// TopSibling returns the sibling index of the top popup, or -1 when empty.
func (s *Stack) TopSibling() int {
	if len(s.entries) == 0 {
		return -1
	}
	return s.entries[len(s.entries)-1].sibling
}

// IsTop reports whether p is the top popup.
func (s *Stack) IsTop(p popup.Popup) bool {
	top := s.Top()
	return top != nil && p != nil && top.ID() == p.ID()
}

// Contains reports whether p is on the stack.
func (s *Stack) Contains(p popup.Popup) bool {
	return s.indexOf(p) >= 0
}

// SiblingIndex returns the sibling index assigned to p.
func (s *Stack) SiblingIndex(p popup.Popup) (int, bool) {
	i := s.indexOf(p)
	if i < 0 {
		return 0, false
	}
	return s.entries[i].sibling, true
}

// Len returns the number of popups on the stack.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Each calls fn for every popup from bottom to top.
func (s *Stack) Each(fn func(p popup.Popup, sibling int)) {
	for _, e := range s.entries {
		fn(e.popup, e.sibling)
	}
}

// Popups returns the popups from bottom to top.
func (s *Stack) Popups() []popup.Popup {
	ps := make([]popup.Popup, len(s.entries))
	for i, e := range s.entries {
		ps[i] = e.popup
	}
	return ps
}

// Reset empties the stack and restarts sibling numbering.
func (s *Stack) Reset() {
	s.entries = nil
	s.next = s.base
}

// Base returns the sibling index of the first slot.
func (s *Stack) Base() int {
	return s.base
}

// SetBase changes the first slot. It takes effect the next time the stack
// is empty.
func (s *Stack) SetBase(base int) {
	if base < 1 {
		base = DefaultBase
	}
	s.base = base
	s.resetIfEmpty()
}

func (s *Stack) resetIfEmpty() {
	if len(s.entries) == 0 {
		s.next = s.base
	}
}

// indexOf finds p by identity. IDs are compared rather than interface
// values so non-comparable popup implementations are safe.
func (s *Stack) indexOf(p popup.Popup) int {
	if p == nil {
		return -1
	}
	id := p.ID()
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].popup.ID() == id {
			return i
		}
	}
	return -1
}
