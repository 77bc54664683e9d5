package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Compile   key.Binding
	Export    key.Binding
	Filename  key.Binding
	Highlight key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Compile:   key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "compile")),
		Export:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "export docx")),
		Filename:  key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "filename")),
		Highlight: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "highlight")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q"), key.WithHelp("ctrl+q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Compile, k.Export, k.Filename, k.Highlight, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
