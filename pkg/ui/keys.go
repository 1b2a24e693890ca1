package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PanLeft     key.Binding
	PanRight    key.Binding
	PanUp       key.Binding
	PanDown     key.Binding
	ZoomIn      key.Binding
	ZoomOut     key.Binding
	Next        key.Binding
	Prev        key.Binding
	Expand      key.Binding
	Detail      key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	Fit         key.Binding
	Reset       key.Binding
	Slow        key.Binding
	Copy        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PanLeft:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan left")),
		PanRight:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan right")),
		PanUp:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan up")),
		PanDown:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan down")),
		ZoomIn:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:     key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Next:        key.NewBinding(key.WithKeys("tab", "n"), key.WithHelp("tab", "next node")),
		Prev:        key.NewBinding(key.WithKeys("shift+tab", "p"), key.WithHelp("shift+tab", "prev node")),
		Expand:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand/collapse")),
		Detail:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "details")),
		ExpandAll:   key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "expand all")),
		CollapseAll: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "collapse all")),
		Fit:         key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit")),
		Reset:       key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset zoom")),
		Slow:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "slow motion")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Expand, k.Detail, k.ZoomIn, k.ZoomOut, k.Fit, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PanLeft, k.PanRight, k.PanUp, k.PanDown},
		{k.ZoomIn, k.ZoomOut, k.Fit, k.Reset, k.Slow},
		{k.Next, k.Prev, k.Expand, k.Detail},
		{k.ExpandAll, k.CollapseAll, k.Copy, k.Quit},
	}
}
