package ui

import "github.com/charmbracelet/bubbles/key"

type PanelKeyMap struct {
	Submit key.Binding
	Reset  key.Binding
	Close  key.Binding
	Copy   key.Binding
}

func DefaultPanelKeyMap() PanelKeyMap {
	return PanelKeyMap{
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Reset:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "new chat")),
		Close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Copy:   key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy reply")),
	}
}

type ShellKeyMap struct {
	Toggle key.Binding
	Press  key.Binding
	Quit   key.Binding
}

func DefaultShellKeyMap() ShellKeyMap {
	return ShellKeyMap{
		Toggle: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open/close chat")),
		// Press only applies while the panel is closed: enter or space on the button.
		Press: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "open chat")),
		Quit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}
