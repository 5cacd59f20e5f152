package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists every binding of the app
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	Details    key.Binding
	Search     key.Binding
	Submit     key.Binding
	NextField  key.Binding
	PrevField  key.Binding
	Toggle     key.Binding
	Preset     key.Binding
	CopyCourse key.Binding
	Yank       key.Binding
	Export     key.Binding
	Help       key.Binding
	Back       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the bindings; vim adds hjkl style keys
func DefaultKeyMap(vim bool) KeyMap {
	up, down, next, prev := []string{"up"}, []string{"down"}, []string{"right", "n"}, []string{"left", "p"}
	upHelp, downHelp, nextHelp, prevHelp := "↑", "↓", "→/n", "←/p"
	if vim {
		up, down = append(up, "k"), append(down, "j")
		next, prev = append(next, "l"), append(prev, "h")
		upHelp, downHelp, nextHelp, prevHelp = "↑/k", "↓/j", "→/l/n", "←/h/p"
	}

	return KeyMap{
		Up:         key.NewBinding(key.WithKeys(up...), key.WithHelp(upHelp, "previous row")),
		Down:       key.NewBinding(key.WithKeys(down...), key.WithHelp(downHelp, "next row")),
		NextPage:   key.NewBinding(key.WithKeys(next...), key.WithHelp(nextHelp, "next page")),
		PrevPage:   key.NewBinding(key.WithKeys(prev...), key.WithHelp(prevHelp, "previous page")),
		Details:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "toggle details")),
		Search:     key.NewBinding(key.WithKeys("/", "s"), key.WithHelp("/", "edit search")),
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
		NextField:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
		Toggle:     key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle severity")),
		Preset:     key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "cycle time preset")),
		CopyCourse: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy course")),
		Yank:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy details")),
		Export:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export page")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Details, k.NextPage, k.PrevPage, k.CopyCourse, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Details, k.Yank, k.Export},
		{k.NextPage, k.PrevPage},
		{k.Search, k.NextField, k.PrevField, k.Toggle, k.Preset, k.Submit},
		{k.CopyCourse, k.Help, k.Back, k.Quit},
	}
}
