// Package popup defines the popup capability orchestrated by the manager,
// the per-popup lifecycle states, and the registry hosts use to build popups
// by kind.
package popup

// Kind identifies a family of popups built from the same template.
type Kind string

// Popup is a displayable unit managed by the popup manager.
// The manager only tracks references and order; the popup's owner decides
// what it displays and when its transitions finish.
type Popup interface {
	// ID returns a stable identity for this popup instance.
	ID() string
	// Kind returns the template kind the popup was built from.
	Kind() Kind
	// Activate starts the open transition. The popup must call
	// Host.OnOpened exactly once when it finishes.
	Activate()
	// Hide starts the close transition. The popup must call
	// Host.OnClosed exactly once when it finishes.
	Hide()
	// ForceHide hides the popup synchronously without a transition
	// and without calling back into the host.
	ForceHide()
	// OnBecameTop is invoked when the popup becomes the interactive top.
	OnBecameTop()
}

// Host receives transition completions from popups.
// The manager satisfies it; popups are handed the host at construction.
type Host interface {
	OnOpened(p Popup)
	OnClosed(p Popup)
}

// Visibility is implemented by popups that can be hidden while queued.
type Visibility interface {
	SetVisible(visible bool)
}

// Orderable is implemented by popups that want to know their sibling index
// in the shared render container.
type Orderable interface {
	SetSiblingIndex(index int)
}

// Releaser is implemented by popups holding resources that must be freed
// when the manager performs a hard reset.
type Releaser interface {
	Release()
}
