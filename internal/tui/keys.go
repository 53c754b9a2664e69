package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Tab        key.Binding
	ShiftTab   key.Binding
	Quit       key.Binding
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Cycle      key.Binding
	Clear      key.Binding
	Reflection key.Binding
	Goal       key.Binding
	Comment    key.Binding
	Add        key.Binding
	Rename     key.Binding
	Remove     key.Binding
	PrevWeek   key.Binding
	NextWeek   key.Binding
	Today      key.Binding
	Save       key.Binding
	Overwrite  key.Binding
	Reload     key.Binding
	ToggleNote key.Binding
	Copy       key.Binding
	CopyNotes  key.Binding
	Logs       key.Binding
	Help       key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Cycle, k.PrevWeek, k.NextWeek, k.Save, k.Quit, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Tab, k.ShiftTab},
		{k.Cycle, k.Clear, k.Reflection, k.Goal, k.Comment},
		{k.Add, k.Rename, k.Remove},
		{k.PrevWeek, k.NextWeek, k.Today, k.Save, k.Overwrite, k.Reload},
		{k.ToggleNote, k.Copy, k.CopyNotes, k.Logs, k.Help, k.Quit},
	}
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev tab"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev day"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		Cycle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "cycle ⭕️✖️△"),
		),
		Clear: key.NewBinding(
			key.WithKeys("backspace", "delete"),
			key.WithHelp("⌫", "clear cell"),
		),
		Reflection: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reflection"),
		),
		Goal: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "goal"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "parents' comment"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add item"),
		),
		Rename: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "rename item"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove item"),
		),
		PrevWeek: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev week"),
		),
		NextWeek: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next week"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "this week"),
		),
		Save: key.NewBinding(
			key.WithKeys("s", "ctrl+s"),
			key.WithHelp("s", "save"),
		),
		Overwrite: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "overwrite remote"),
		),
		Reload: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "reload (discard edits)"),
		),
		ToggleNote: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "toggle parents' comment"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy grid TSV"),
		),
		CopyNotes: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "copy reflections TSV"),
		),
		Logs: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "debug log"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}
