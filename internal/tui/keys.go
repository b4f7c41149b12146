package tui

import "github.com/charmbracelet/bubbles/key"

// RunKeyMap defines the live run key bindings
type RunKeyMap struct {
	Start key.Binding
	Pause key.Binding
	End   key.Binding
	Retry key.Binding
}

// DefaultRunKeyMap returns the default live run bindings
func DefaultRunKeyMap() RunKeyMap {
	return RunKeyMap{
		Start: key.NewBinding(
			key.WithKeys("s", "enter"),
			key.WithHelp("s / enter", "start a run"),
		),
		Pause: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space / p", "pause or resume"),
		),
		End: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "end run and save"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry a failed save"),
		),
	}
}

// Bindings lists the bindings in display order
func (k RunKeyMap) Bindings() []key.Binding {
	return []key.Binding{k.Start, k.Pause, k.End, k.Retry}
}
