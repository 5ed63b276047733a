package scenario

import (
	"fmt"
	"slices"
)

// Expect lists assertions about manager state. Unset fields are not
// checked; an empty list checks for emptiness.
type Expect struct {
	Stack        *[]string         `yaml:"stack"`         // Popup names, bottom first
	Queue        *[]string         `yaml:"queue"`         // Popup names, next first
	Current      *string           `yaml:"current"`       // Empty string means none
	HasPopup     *bool             `yaml:"has_popup"`
	Overlay      *bool             `yaml:"overlay"`       // Overlay visible
	OverlayBelow *string           `yaml:"overlay_below"` // Popup the overlay sits directly under
	SortingOrder *int              `yaml:"sorting_order"`
	Result       *string           `yaml:"result"`        // Result of the previous step
	Events       *[]string         `yaml:"events"`        // Events since the previous expect
	TopCount     map[string]int    `yaml:"top_count"`     // OnBecameTop calls per popup
	States       map[string]string `yaml:"states"`        // Lifecycle state per popup
	Activations  *[]string         `yaml:"activations"`   // Popups activated since the previous expect, in order
	ForceHidden  *[]string         `yaml:"force_hidden"`  // Popups force-hidden since the previous expect, in order
}

// ExpectError reports a failed expectation.
type ExpectError struct {
	Step  int
	Line  int
	Field string
	Want  any
	Got   any
}

// Error implements error.
func (e *ExpectError) Error() string {
	return fmt.Sprintf("step %d (line %d): expected %s %v, got %v", e.Step, e.Line, e.Field, e.Want, e.Got)
}

// observed is the state an Expect is checked against.
type observed struct {
	stack        []string
	queue        []string
	current      string
	hasPopup     bool
	overlay      bool
	overlayIndex int
	siblings     map[string]int
	sortingOrder int
	result       string
	events       []string
	topCount     map[string]int
	states       map[string]string
	activations  []string
	forceHidden  []string
}

// check returns the first mismatch between e and o.
func (e *Expect) check(o observed) (field string, want, got any, ok bool) {
	if e.Stack != nil && !equalNames(*e.Stack, o.stack) {
		return "stack", *e.Stack, o.stack, false
	}
	if e.Queue != nil && !equalNames(*e.Queue, o.queue) {
		return "queue", *e.Queue, o.queue, false
	}
	if e.Current != nil && *e.Current != o.current {
		return "current", *e.Current, o.current, false
	}
	if e.HasPopup != nil && *e.HasPopup != o.hasPopup {
		return "has_popup", *e.HasPopup, o.hasPopup, false
	}
	if e.Overlay != nil && *e.Overlay != o.overlay {
		return "overlay", *e.Overlay, o.overlay, false
	}
	if e.OverlayBelow != nil {
		sibling, found := o.siblings[*e.OverlayBelow]
		if !found || o.overlayIndex != sibling-1 {
			return "overlay_below", *e.OverlayBelow, fmt.Sprintf("overlay at %d", o.overlayIndex), false
		}
	}
	if e.SortingOrder != nil && *e.SortingOrder != o.sortingOrder {
		return "sorting_order", *e.SortingOrder, o.sortingOrder, false
	}
	if e.Result != nil && *e.Result != o.result {
		return "result", *e.Result, o.result, false
	}
	if e.Events != nil && !equalNames(*e.Events, o.events) {
		return "events", *e.Events, o.events, false
	}
	if e.Activations != nil && !equalNames(*e.Activations, o.activations) {
		return "activations", *e.Activations, o.activations, false
	}
	if e.ForceHidden != nil && !equalNames(*e.ForceHidden, o.forceHidden) {
		return "force_hidden", *e.ForceHidden, o.forceHidden, false
	}
	for _, name := range sortedKeys(e.TopCount) {
		if want, got := e.TopCount[name], o.topCount[name]; want != got {
			return "top_count[" + name + "]", want, got, false
		}
	}
	for _, name := range sortedKeys(e.States) {
		if want, got := e.States[name], o.states[name]; want != got {
			return "states[" + name + "]", want, got, false
		}
	}
	return "", nil, nil, true
}

func equalNames(want, got []string) bool {
	if len(want) == 0 && len(got) == 0 {
		return true
	}
	return slices.Equal(want, got)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
