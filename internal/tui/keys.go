package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the demo.
type KeyMap struct {
	// Emit
	Message   key.Binding
	Error     key.Binding
	Warning   key.Binding
	Analytics key.Binding
	Burst     key.Binding

	// Overlay
	Peek     key.Binding
	Back     key.Binding
	ScrollUp key.Binding
	ScrollDn key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Message, k.Error, k.Warning, k.Analytics, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Message, k.Error, k.Warning, k.Analytics, k.Burst},
		{k.Peek, k.Back, k.ScrollUp, k.ScrollDn},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Message: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "message"),
		),
		Error: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "error"),
		),
		Warning: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "warning"),
		),
		Analytics: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "analytics"),
		),
		Burst: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "burst of 10"),
		),
		Peek: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "expand/collapse"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close detail"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		ScrollDn: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
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
