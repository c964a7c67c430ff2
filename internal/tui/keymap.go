package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Incomplete records
	CheckIn  key.Binding
	CheckOut key.Binding

	// Ambiguous records
	Confirm key.Binding
	Edit    key.Binding

	// Shared
	Skip  key.Binding
	Defer key.Binding

	// Time entry
	Submit    key.Binding
	NextField key.Binding
	Back      key.Binding

	// Application
	ToggleHelp key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		CheckIn: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "punch is check-in"),
		),
		CheckOut: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "punch is check-out"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("c", "y"),
			key.WithHelp("c/y", "confirm as captured"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "enter times"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s", " "),
			key.WithHelp("s/Space", "skip record"),
		),
		Defer: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "defer remaining"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "submit"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("Tab", "next field"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "back"),
		),
		ToggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit and discard"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("Ctrl+C", "force quit"),
		),
	}
}

// choiceKeys implements help.KeyMap for the choice screen.
type choiceKeys struct {
	keys      KeyMap
	ambiguous bool
}

func (c choiceKeys) ShortHelp() []key.Binding {
	if c.ambiguous {
		return []key.Binding{c.keys.Confirm, c.keys.Edit, c.keys.Skip, c.keys.Quit, c.keys.ToggleHelp}
	}
	return []key.Binding{c.keys.CheckIn, c.keys.CheckOut, c.keys.Skip, c.keys.Quit, c.keys.ToggleHelp}
}

func (c choiceKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		c.ShortHelp()[:2],
		{c.keys.Skip, c.keys.Defer},
		{c.keys.Quit, c.keys.ForceQuit, c.keys.ToggleHelp},
	}
}

// inputKeys implements help.KeyMap for the time entry screen.
type inputKeys struct {
	keys KeyMap
}

func (i inputKeys) ShortHelp() []key.Binding {
	return []key.Binding{i.keys.Submit, i.keys.NextField, i.keys.Back}
}

func (i inputKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{i.ShortHelp(), {i.keys.ForceQuit}}
}
