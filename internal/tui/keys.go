// SPDX-License-Identifier: MIT
package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap binds the preview commands.
type KeyMap struct {
	Next     key.Binding
	Previous key.Binding
	Mode     key.Binding
	Settings key.Binding
	Brighter key.Binding
	Dimmer   key.Binding
	Quit     key.Binding
}

// DefaultKeyMap matches the desktop preview window.
var DefaultKeyMap = KeyMap{
	Next:     key.NewBinding(key.WithKeys("right", "n"), key.WithHelp("→/n", "next")),
	Previous: key.NewBinding(key.WithKeys("left", "p"), key.WithHelp("←/p", "prev")),
	Mode:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mode")),
	Settings: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
	Brighter: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "brightness")),
	Dimmer:   key.NewBinding(key.WithKeys("-", "_")),
	Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// helpText renders the bindings that carry help.
func (k KeyMap) helpText() string {
	s := ""
	for _, b := range []key.Binding{k.Next, k.Previous, k.Mode, k.Settings, k.Brighter, k.Quit} {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		if s != "" {
			s += "  "
		}
		s += h.Key + " " + h.Desc
	}
	return s
}
