package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Pick key.Binding
	Quit key.Binding
	Help key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Pick: key.NewBinding(key.WithKeys("o", "enter"), key.WithHelp("o", "pick photo")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pick, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pick},
		{k.Help, k.Quit},
	}
}
