package popup

// State represents where a popup is in its lifecycle.
type State int

const (
	// StateInactive means the popup is not tracked by the manager.
	StateInactive State = iota
	// StateQueued means the popup is waiting in the pending queue.
	StateQueued
	// StateActivating means Activate was called and the open transition is running.
	StateActivating
	// StateTop means the popup is open and interactive.
	StateTop
	// StateLayered means the popup is open but covered by a newer popup.
	StateLayered
	// StateClosing means Hide was called and the close transition is running.
	StateClosing
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateQueued:
		return "queued"
	case StateActivating:
		return "activating"
	case StateTop:
		return "top"
	case StateLayered:
		return "layered"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Open reports whether the popup is on screen (top or layered).
func (s State) Open() bool {
	return s == StateTop || s == StateLayered
}

// OnStack reports whether a popup in this state occupies a stack slot.
func (s State) OnStack() bool {
	return s == StateActivating || s == StateTop || s == StateLayered || s == StateClosing
}
