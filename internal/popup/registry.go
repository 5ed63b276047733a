package popup

import (
	"errors"
	"fmt"
)

// Registry errors.
var (
	ErrUnknownKind   = errors.New("unknown popup kind")
	ErrDuplicateKind = errors.New("popup kind already registered")
)

// RegistryError reports a registry failure for a specific kind.
type RegistryError struct {
	Kind Kind
	Err  error
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err.Error(), string(e.Kind))
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// Factory builds a new popup instance bound to host.
type Factory func(host Host) (Popup, error)

// Registry maps popup kinds to the factories that build them.
type Registry struct {
	factories map[Kind]Factory
	order     []Kind
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[Kind]Factory),
	}
}

// Register adds a factory for kind.
func (r *Registry) Register(kind Kind, factory Factory) error {
	if _, exists := r.factories[kind]; exists {
		return &RegistryError{Kind: kind, Err: ErrDuplicateKind}
	}
	r.factories[kind] = factory
	r.order = append(r.order, kind)
	return nil
}

// Create builds a new popup of the given kind.
func (r *Registry) Create(kind Kind, host Host) (Popup, error) {
	factory, ok := r.factories[kind]
	if !ok {
		return nil, &RegistryError{Kind: kind, Err: ErrUnknownKind}
	}
	p, err := factory(host)
	if err != nil {
		return nil, fmt.Errorf("failed to create %q popup: %w", string(kind), err)
	}
	return p, nil
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind Kind) bool {
	_, ok := r.factories[kind]
	return ok
}

// Kinds returns the registered kinds in registration order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, len(r.order))
	copy(kinds, r.order)
	return kinds
}

// DialogFactory returns a factory building dialogs from tmpl. newTransition
// is called once per dialog so every instance gets its own driver; nil means
// instant transitions.
func DialogFactory(tmpl Template, newTransition func(Template) Transition) Factory {
	return func(host Host) (Popup, error) {
		id, err := NewID()
		if err != nil {
			return nil, err
		}
		var tr Transition = Instant{}
		if newTransition != nil {
			tr = newTransition(tmpl)
		}
		return NewDialog(id, tmpl, host, tr), nil
	}
}

// RegisterTemplates registers a dialog factory for each template.
func (r *Registry) RegisterTemplates(templates []Template, newTransition func(Template) Transition) error {
	for _, tmpl := range templates {
		if err := r.Register(tmpl.Kind, DialogFactory(tmpl, newTransition)); err != nil {
			return err
		}
	}
	return nil
}
