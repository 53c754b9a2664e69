package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/weekdiary/internal/diary"
	"github.com/julianstephens/weekdiary/internal/logger"
	"github.com/julianstephens/weekdiary/internal/tui/components/preview"
)

const logLines = 6

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateWeek:
		content = m.viewWeek()
	case StateItems:
		content = docStyle.Render(m.items.View())
	case StatePreview:
		content = m.viewPreview()
	case StateEditing:
		if m.form != nil {
			content = docStyle.Render(m.form.View())
		}
	}

	parts := []string{m.viewHeader(), content, m.viewStatus()}
	if m.showLogs {
		parts = append(parts, m.viewLogs())
	}
	parts = append(parts, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewHeader() string {
	var tabs []string
	active := m.state
	if active == StateEditing {
		active = m.previousState
	}
	for i, title := range tabTitles {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}

	week := m.sess.Week().String()
	if m.sess.Dirty() {
		week += dirtyStyle.Render(" ●")
	}
	tabs = append(tabs, weekStyle.Render(week))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewWeek() string {
	rec := m.sess.Record()
	if rec == nil {
		if m.loading {
			return docStyle.Render("Loading " + m.sess.Week().String() + "...")
		}
		return docStyle.Render("No week loaded. Press L to retry.")
	}

	t := diary.NewTable(rec)
	sections := []string{
		goalStyle.Render("今週の目標: " + t.GoalText()),
		docStyle.Render(m.grid.View()),
	}
	if m.showComment {
		comment := rec.ParentsComment
		if strings.TrimSpace(comment) == "" {
			comment = "(c to write)"
		}
		sections = append(sections, commentStyle.Render("保護者より\n"+comment))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewPreview() string {
	rec := m.sess.Record()
	if rec == nil {
		return docStyle.Render("No week loaded.")
	}
	return docStyle.Render(preview.Render(diary.NewTable(rec), preview.Options{
		ShowParentsComment: m.showComment,
	}))
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return dangerStyle.Render(m.status)
	}
	return okStyle.Render(m.status)
}

func (m Model) viewLogs() string {
	return logStyle.Render(strings.Join(logger.Recent(logLines), "\n"))
}
