// Package grid renders a week as an items × days grid with a cell cursor.
package grid

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/weekdiary/internal/constants"
	"github.com/julianstephens/weekdiary/internal/diary"
)

const (
	cellWidth    = 7
	maxItemWidth = 28
	minItemWidth = 10

	reflectionLabel = "感想"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(cellWidth).
			Align(lipgloss.Center)

	weekendHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("167"))

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	cellStyle = lipgloss.NewStyle().
			Width(cellWidth).
			Align(lipgloss.Center)

	cursorStyle = cellStyle.
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Bold(true)

	activeRowStyle = itemStyle.
			Foreground(lipgloss.Color("205"))

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

type Model struct {
	viewport viewport.Model
	table    *diary.Table
	row      int
	col      int
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.table == nil {
		return "Loading..."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetTable replaces the displayed week, keeping the cursor in range.
func (m *Model) SetTable(t diary.Table) {
	m.table = &t
	m.clamp()
	m.Render()
}

// Rows is the number of cursor rows: one per item plus the reflection row.
func (m Model) Rows() int {
	if m.table == nil {
		return 0
	}
	return len(m.table.Rows) + 1
}

// Cursor returns the selected row and day.
func (m Model) Cursor() (row, day int) {
	return m.row, m.col
}

// OnReflection reports whether the cursor is on the reflection row.
func (m Model) OnReflection() bool {
	return m.table != nil && m.row == len(m.table.Rows)
}

// SelectedItem returns the item under the cursor, false on the reflection row.
func (m Model) SelectedItem() (int, string, bool) {
	if m.table == nil || m.OnReflection() {
		return 0, "", false
	}
	return m.row, m.table.Rows[m.row].Item, true
}

func (m *Model) Move(dRow, dCol int) {
	m.row += dRow
	m.col += dCol
	m.clamp()
	m.Render()
}

// SetCursor places the cursor, clamped to the grid.
func (m *Model) SetCursor(row, day int) {
	m.row, m.col = row, day
	m.clamp()
	m.Render()
}

func (m *Model) clamp() {
	if m.row >= m.Rows() {
		m.row = m.Rows() - 1
	}
	if m.row < 0 {
		m.row = 0
	}
	if m.col >= constants.DaysPerWeek {
		m.col = constants.DaysPerWeek - 1
	}
	if m.col < 0 {
		m.col = 0
	}
}

func (m Model) labelWidth() int {
	w := lipgloss.Width(reflectionLabel)
	for _, r := range m.table.Rows {
		if lw := lipgloss.Width(r.Item); lw > w {
			w = lw
		}
	}
	if w > maxItemWidth {
		w = maxItemWidth
	}
	if w < minItemWidth {
		w = minItemWidth
	}
	return w + 1
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if lipgloss.Width(b.String()+string(r)+"…") > width {
			break
		}
		b.WriteRune(r)
	}
	return b.String() + "…"
}

func (m *Model) Render() {
	if m.table == nil {
		m.viewport.SetContent("No week loaded.")
		return
	}

	lw := m.labelWidth()
	label := lipgloss.NewStyle().Width(lw)

	var lines []string
	dates := []string{label.Render("")}
	days := []string{label.Render("")}
	for i, col := range m.table.Columns {
		style := headerStyle
		if i >= 5 {
			style = weekendHeaderStyle
		}
		dates = append(dates, style.Render(col.ShortDate()))
		days = append(days, style.Render(col.DayOfWeek))
	}
	lines = append(lines, strings.Join(dates, ""), strings.Join(days, ""))

	for r, row := range m.table.Rows {
		name := itemStyle
		if r == m.row {
			name = activeRowStyle
		}
		cells := []string{name.Width(lw).Render(truncate(row.Item, lw-1))}
		for c, v := range row.Cells {
			cells = append(cells, m.cell(r, c, v.Label()))
		}
		lines = append(lines, strings.Join(cells, ""))
	}

	r := len(m.table.Rows)
	name := itemStyle
	if r == m.row {
		name = activeRowStyle
	}
	cells := []string{name.Width(lw).Render(reflectionLabel)}
	for c, refl := range m.table.Reflections {
		mark := "·"
		if strings.TrimSpace(refl.Text) != "" {
			mark = "✎"
		}
		cells = append(cells, m.cell(r, c, mark))
	}
	lines = append(lines, strings.Join(cells, ""))

	refl := m.table.Reflections[m.col]
	lines = append(lines, "", noteStyle.Render(refl.Column.LongDate()+"("+refl.Column.DayOfWeek+") "+refl.DisplayText()))

	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func (m Model) cell(row, col int, text string) string {
	if row == m.row && col == m.col {
		return cursorStyle.Render(text)
	}
	return cellStyle.Render(text)
}
