// SPDX-License-Identifier: MIT
package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next     key.Binding
	Cycle    key.Binding
	Longer   key.Binding
	Shorter  key.Binding
	NextType key.Binding
	PrevType key.Binding
	Palette  key.Binding
	Green    key.Binding
	Blue     key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("n", " "),
			key.WithHelp("n/space", "random preset"),
		),
		Cycle: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "auto cycle"),
		),
		Longer: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "slower cycle"),
		),
		Shorter: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "faster cycle"),
		),
		NextType: key.NewBinding(
			key.WithKeys("t", "right", "l"),
			key.WithHelp("t/→", "next type"),
		),
		PrevType: key.NewBinding(
			key.WithKeys("T", "left", "h"),
			key.WithHelp("T/←", "previous type"),
		),
		Palette: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "palette"),
		),
		Green: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "green screen"),
		),
		Blue: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "blue screen"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+/-", "zoom"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-", "_"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.NextType, k.Palette, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Cycle, k.Longer, k.Shorter},
		{k.NextType, k.PrevType, k.Palette, k.ZoomIn},
		{k.Green, k.Blue, k.Help, k.Quit},
	}
}
