package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

func formKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel"))
	return km
}

func (m *Model) startForm(kind editKind, index int, field huh.Field) tea.Cmd {
	m.edit = kind
	m.editIndex = index
	m.previousState = m.state
	m.state = StateEditing
	m.form = huh.NewForm(huh.NewGroup(field)).
		WithKeyMap(formKeyMap()).
		WithShowHelp(true)
	if m.width > 0 {
		m.form = m.form.WithWidth(m.width - 4)
	}
	return m.form.Init()
}

// openInput edits a single line. The form writes into m.input, which
// survives the model being copied.
func (m *Model) openInput(kind editKind, index int, title, value string) tea.Cmd {
	*m.input = value
	return m.startForm(kind, index, huh.NewInput().
		Title(title).
		Value(m.input))
}

func (m *Model) openText(kind editKind, index int, title, value string) tea.Cmd {
	*m.input = value
	return m.startForm(kind, index, huh.NewText().
		Title(title).
		Lines(5).
		Value(m.input))
}

func (m *Model) openConfirm(kind editKind, index int, title string) tea.Cmd {
	*m.confirm = false
	return m.startForm(kind, index, huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(m.confirm))
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.state = m.previousState
		return m, nil
	}

	next, cmd := m.form.Update(msg)
	if f, ok := next.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.state = m.previousState
		m.form = nil
		if err := m.applyEdit(); err != nil {
			m.setError(err)
		}
		m.refresh()
		return m, nil
	case huh.StateAborted:
		m.state = m.previousState
		m.form = nil
		return m, nil
	}
	return m, cmd
}
