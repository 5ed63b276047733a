// Package scenario runs scripted sequences of popup manager operations and
// records what happened at every step.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Action names a scenario step.
type Action string

const (
	ActionRequest      Action = "request"       // Manager.Request
	ActionOpen         Action = "open"          // Manager.Open
	ActionFinish       Action = "finish"        // Complete the popup's running transition
	ActionOpened       Action = "opened"        // Raw OnOpened callback
	ActionClosed       Action = "closed"        // Raw OnClosed callback
	ActionClose        Action = "close"         // Manager.Close
	ActionForceClose   Action = "force_close"   // Manager.ForceClose
	ActionCancel       Action = "cancel"        // Manager.CancelQueued
	ActionBack         Action = "back"          // Manager.SequenceHidePopup
	ActionCloseAll     Action = "close_all"     // Manager.CloseAll
	ActionClickOverlay Action = "click_overlay" // Manager.OnClickOverlay
	ActionSortingOrder Action = "sorting_order" // Manager.SetSortingOrder
	ActionResetOrder   Action = "reset_order"   // Manager.ResetOrder
	ActionFadeOn       Action = "fade_on"       // Manager.EnableFadeBackground
	ActionFadeOff      Action = "fade_off"      // Manager.DisableFadeBackground
	ActionSettle       Action = "settle"        // Finish transitions until none are running
	ActionExpect       Action = "expect"        // Check manager state
)

// needsPopup reports whether the action takes a popup name.
func (a Action) needsPopup() bool {
	switch a {
	case ActionRequest, ActionOpen, ActionFinish, ActionOpened, ActionClosed,
		ActionClose, ActionForceClose, ActionCancel:
		return true
	default:
		return false
	}
}

func (a Action) valid() bool {
	if a.needsPopup() {
		return true
	}
	switch a {
	case ActionBack, ActionCloseAll, ActionClickOverlay, ActionSortingOrder, ActionResetOrder,
		ActionFadeOn, ActionFadeOff, ActionSettle, ActionExpect:
		return true
	default:
		return false
	}
}

// Transition names accepted in popup declarations.
const (
	TransitionManual  = "manual"
	TransitionInstant = "instant"
)

// Script is a named sequence of steps against a fresh manager.
type Script struct {
	Name         string      `yaml:"name"`
	Description  string      `yaml:"description"`
	Overlay      string      `yaml:"overlay"`       // Overrides [overlay] mode
	SortingOrder *int        `yaml:"sorting_order"` // Overrides [canvas] sorting_order
	Popups       []PopupDecl `yaml:"popups"`
	Steps        []Step      `yaml:"steps"`
}

// PopupDecl declares a popup the steps refer to by name.
type PopupDecl struct {
	Name       string `yaml:"name"`
	Kind       string `yaml:"kind"`       // Defaults to the first configured kind
	Transition string `yaml:"transition"` // manual (default) or instant
}

// Step is one scripted action. In YAML a step is written as a single-key
// map such as "request: A" or "sorting_order: 500", or as a bare action
// name such as "back".
type Step struct {
	Action Action
	Popup  string
	Value  int
	Expect *Expect
	Line   int
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	s.Line = node.Line

	switch node.Kind {
	case yaml.ScalarNode:
		s.Action = Action(node.Value)

	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: a step must have exactly one action", node.Line)
		}
		s.Action = Action(node.Content[0].Value)
		arg := node.Content[1]

		switch {
		case s.Action == ActionExpect:
			var e Expect
			if err := arg.Decode(&e); err != nil {
				return fmt.Errorf("line %d: %w", node.Line, err)
			}
			s.Expect = &e
		case s.Action == ActionSortingOrder:
			if err := arg.Decode(&s.Value); err != nil {
				return fmt.Errorf("line %d: %w", node.Line, err)
			}
		case s.Action.needsPopup():
			if err := arg.Decode(&s.Popup); err != nil {
				return fmt.Errorf("line %d: %w", node.Line, err)
			}
		default:
			return fmt.Errorf("line %d: action %q takes no argument", node.Line, s.Action)
		}

	default:
		return fmt.Errorf("line %d: a step must be an action name or a single-key map", node.Line)
	}

	return s.validate()
}

func (s *Step) validate() error {
	if !s.Action.valid() {
		return fmt.Errorf("line %d: unknown action %q", s.Line, s.Action)
	}
	if s.Action.needsPopup() && s.Popup == "" {
		return fmt.Errorf("line %d: action %q needs a popup name", s.Line, s.Action)
	}
	if s.Action == ActionExpect && s.Expect == nil {
		return fmt.Errorf("line %d: expect needs at least one field", s.Line)
	}
	return nil
}

// String returns the step as written, e.g. "request A".
func (s Step) String() string {
	switch {
	case s.Popup != "":
		return string(s.Action) + " " + s.Popup
	case s.Action == ActionSortingOrder:
		return fmt.Sprintf("%s %d", s.Action, s.Value)
	default:
		return string(s.Action)
	}
}

// Parse decodes and validates a YAML script.
func Parse(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := script.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &script, nil
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	script, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if script.Name == "" {
		script.Name = path
	}
	return script, nil
}

// Validate checks that popups are declared once and that steps only refer
// to declared popups.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return errors.New("scenario has no steps")
	}

	declared := make(map[string]bool, len(s.Popups))
	for _, p := range s.Popups {
		if p.Name == "" {
			return errors.New("popup name must not be empty")
		}
		if declared[p.Name] {
			return fmt.Errorf("popup %q declared twice", p.Name)
		}
		switch p.Transition {
		case "", TransitionManual, TransitionInstant:
		default:
			return fmt.Errorf("popup %q: invalid transition %q, must be %q or %q",
				p.Name, p.Transition, TransitionManual, TransitionInstant)
		}
		declared[p.Name] = true
	}

	for _, step := range s.Steps {
		if step.Popup != "" && !declared[step.Popup] {
			return fmt.Errorf("line %d: popup %q is not declared", step.Line, step.Popup)
		}
		if step.Expect != nil {
			for name := range step.Expect.TopCount {
				if !declared[name] {
					return fmt.Errorf("line %d: popup %q is not declared", step.Line, name)
				}
			}
			for name := range step.Expect.States {
				if !declared[name] {
					return fmt.Errorf("line %d: popup %q is not declared", step.Line, name)
				}
			}
		}
	}
	return nil
}
