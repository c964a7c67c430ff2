// Package tuitest scripts reviewer keystrokes for driving bubbletea models in tests.
package tuitest

import (
	tea "github.com/charmbracelet/bubbletea"
)

var named = map[string]tea.KeyType{
	"enter":     tea.KeyEnter,
	"esc":       tea.KeyEsc,
	"tab":       tea.KeyTab,
	"backspace": tea.KeyBackspace,
	"ctrl+c":    tea.KeyCtrlC,
}

// Key returns the message for a single named key ("enter", "esc", "tab",
// "backspace", "ctrl+c") or a single printable rune.
func Key(token string) tea.KeyMsg {
	if t, ok := named[token]; ok {
		return tea.KeyMsg{Type: t}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(token)}
}

// Script is an ordered list of messages fed to a model.
type Script []tea.Msg

// Keys builds a script from tokens. Named keys become one message; any other
// token is typed one rune at a time, so Keys("i", "17:00", "enter") chooses
// check-in, types a time and submits it.
func Keys(tokens ...string) Script {
	return Script(nil).Then(tokens...)
}

// Then appends more tokens to a copy of the script.
func (s Script) Then(tokens ...string) Script {
	out := append(Script(nil), s...)
	for _, tok := range tokens {
		if _, ok := named[tok]; ok {
			out = append(out, Key(tok))
			continue
		}
		for _, r := range tok {
			out = append(out, Key(string(r)))
		}
	}
	return out
}

// Play feeds every message to m in order, discarding commands.
func (s Script) Play(m tea.Model) tea.Model {
	for _, msg := range s {
		m, _ = m.Update(msg)
	}
	return m
}

// Resize returns a terminal resize message.
func Resize(width, height int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: width, Height: height}
}
