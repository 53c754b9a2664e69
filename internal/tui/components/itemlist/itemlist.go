// Package itemlist lists the evaluation items of the open week.
package itemlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/weekdiary/internal/constants"
	"github.com/julianstephens/weekdiary/internal/diary"
)

type AddItemMsg struct{}

type RenameItemMsg struct {
	Index int
	Label string
}

type RemoveItemMsg struct {
	Index int
	Label string
}

type ResetItemsMsg struct{}

type Item struct {
	Index int
	Row   diary.Row
}

func (i Item) Title() string {
	return fmt.Sprintf("%d. %s", i.Index+1, i.Row.Item)
}

func (i Item) Description() string {
	set := 0
	for _, c := range i.Row.Cells {
		if c.IsSet() {
			set++
		}
	}
	return fmt.Sprintf("%d/%d days answered", set, constants.DaysPerWeek)
}

func (i Item) FilterValue() string { return i.Row.Item }

type KeyMap struct {
	Add    key.Binding
	Rename key.Binding
	Remove key.Binding
	Reset  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Rename: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "rename"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove"),
		),
		Reset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset to defaults"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(rows []diary.Row, width, height int) Model {
	l := list.New(toItems(rows), list.NewDefaultDelegate(), width, height)
	l.Title = "Evaluation items"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Rename, keys.Remove}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Rename, keys.Remove, keys.Reset}
	}

	return Model{list: l, keys: keys}
}

func toItems(rows []diary.Row) []list.Item {
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = Item{Index: i, Row: r}
	}
	return items
}

func (m *Model) SetRows(rows []diary.Row) {
	m.list.SetItems(toItems(rows))
}

// Filtering reports whether the list is capturing keys for its filter.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddItemMsg{} }
		case key.Matches(msg, m.keys.Rename):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return RenameItemMsg{Index: i.Index, Label: i.Row.Item} }
			}
		case key.Matches(msg, m.keys.Remove):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return RemoveItemMsg{Index: i.Index, Label: i.Row.Item} }
			}
		case key.Matches(msg, m.keys.Reset):
			return m, func() tea.Msg { return ResetItemsMsg{} }
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No evaluation items.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
