package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the TUI.
type KeyMap struct {
	// Popups
	Request  key.Binding
	Promote  key.Binding
	Back     key.Binding
	Force    key.Binding
	CloseAll key.Binding
	Click    key.Binding

	// Overlay
	ToggleMode key.Binding
	ToggleFade key.Binding
	RaiseOrder key.Binding
	ResetOrder key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Request, k.Back, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Request, k.Promote, k.Back, k.Force},
		{k.CloseAll, k.Click, k.ToggleMode, k.ToggleFade},
		{k.RaiseOrder, k.ResetOrder, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Request: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "request kind"),
		),
		Promote: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open next queued"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Force: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "force close top"),
		),
		CloseAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "close all"),
		),
		Click: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "click overlay"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "overlay mode"),
		),
		ToggleFade: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fade"),
		),
		RaiseOrder: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "raise canvas"),
		),
		ResetOrder: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "reset canvas"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
