package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the control surface.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	StartStop key.Binding
	Restart   key.Binding
	Logs      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Quit      key.Binding

	// Confirm dialog.
	Switch  key.Binding
	Accept  key.Binding
	Dismiss key.Binding
	Yes     key.Binding
	No      key.Binding
}

// DefaultKeyMap is the built-in binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "K", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "J", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "enable/disable"),
	),
	StartStop: key.NewBinding(
		key.WithKeys("s", "S"),
		key.WithHelp("s", "start/stop"),
	),
	Restart: key.NewBinding(
		key.WithKeys("r", "R"),
		key.WithHelp("r", "restart"),
	),
	Logs: key.NewBinding(
		key.WithKeys("l", "L"),
		key.WithHelp("l", "logs"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("PgUp", "scroll logs up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("PgDn", "scroll logs down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "Q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Switch: key.NewBinding(
		key.WithKeys("left", "right", "h", "l", "tab"),
	),
	Accept: key.NewBinding(
		key.WithKeys("enter"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("esc", "q"),
	),
	Yes: key.NewBinding(
		key.WithKeys("y", "Y"),
	),
	No: key.NewBinding(
		key.WithKeys("n", "N"),
	),
}
