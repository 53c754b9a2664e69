// Package preview renders the read-only week sheet shown by the preview tab
// and the preview command.
package preview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/weekdiary/internal/diary"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	headerCell = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Align(lipgloss.Center)

	bodyCell = lipgloss.NewStyle().
			Padding(0, 1).
			Align(lipgloss.Center)

	itemCell = lipgloss.NewStyle().
			Padding(0, 1)
)

// Options control optional sections.
type Options struct {
	ShowParentsComment bool
	Width              int
}

// Render draws the goal, the evaluation grid and the reflections of t.
func Render(t diary.Table, opts Options) string {
	sections := []string{
		titleStyle.Render(t.Week),
		labelStyle.Render("今週の目標: ") + t.GoalText(),
		"",
		evaluationTable(t, opts.Width),
		"",
		reflectionTable(t, opts.Width),
	}
	if opts.ShowParentsComment {
		comment := t.ParentsComment
		if strings.TrimSpace(comment) == "" {
			comment = "-"
		}
		sections = append(sections, "", labelStyle.Render("保護者より: ")+comment)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func evaluationTable(t diary.Table, width int) string {
	headers := []string{"評価項目"}
	for _, col := range t.Columns {
		headers = append(headers, col.ShortDate()+"("+col.DayOfWeek+")")
	}

	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := []string{r.Item}
		for _, c := range r.Cells {
			row = append(row, c.Label())
		}
		rows = append(rows, row)
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerCell
			case col == 0:
				return itemCell
			default:
				return bodyCell
			}
		})
	if width > 0 {
		tbl = tbl.Width(width)
	}
	return tbl.Render()
}

func reflectionTable(t diary.Table, width int) string {
	rows := make([][]string, 0, len(t.Reflections))
	for _, r := range t.Reflections {
		rows = append(rows, []string{r.Column.ShortDate() + "(" + r.Column.DayOfWeek + ")", r.DisplayText()})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("日付", "感想・気づき").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return itemCell
		})
	if width > 0 {
		tbl = tbl.Width(width)
	}
	return tbl.Render()
}
