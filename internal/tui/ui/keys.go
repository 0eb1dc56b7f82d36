package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap contains the key bindings for the run view.
type KeyMap struct {
	Confirm key.Binding
	Decline key.Binding
	Stop    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "apply"),
		),
		Decline: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "cancel"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s", "ctrl+c"),
			key.WithHelp("s", "stop run"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HelpLine renders bindings as "key action" pairs.
func (s Styles) HelpLine(bindings ...key.Binding) string {
	var line string
	for i, b := range bindings {
		if i > 0 {
			line += s.Help.Render("  •  ")
		}
		h := b.Help()
		line += s.HelpKey.Render(h.Key) + " " + s.Help.Render(h.Desc)
	}
	return line
}
