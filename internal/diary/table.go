package diary

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/weekdiary/internal/constants"
	"github.com/julianstephens/weekdiary/internal/models"
)

const (
	unsetGoal       = "未設定"
	emptyReflection = "記録なし"
)

// Column is one day in a Table.
type Column struct {
	Date      time.Time
	DayOfWeek string
}

// ShortDate formats the column as M/D.
func (c Column) ShortDate() string {
	return fmt.Sprintf("%d/%d", int(c.Date.Month()), c.Date.Day())
}

// LongDate formats the column as M月D日.
func (c Column) LongDate() string {
	return fmt.Sprintf("%d月%d日", int(c.Date.Month()), c.Date.Day())
}

// Row is one evaluation item across the week.
type Row struct {
	Item  string
	Cells [constants.DaysPerWeek]models.Response
}

// Reflection is one day's free text.
type Reflection struct {
	Column Column
	Text   string
}

// Table is a read-only projection of a week used by previews and exports.
type Table struct {
	Week           string
	Goal           string
	ParentsComment string
	Columns        [constants.DaysPerWeek]Column
	Rows           []Row
	Reflections    [constants.DaysPerWeek]Reflection
}

// NewTable projects rec. It copies everything it reads.
func NewTable(rec *models.WeekRecord) Table {
	t := Table{
		Week:           rec.Week.String(),
		Goal:           rec.Goal,
		ParentsComment: rec.ParentsComment,
		Rows:           make([]Row, 0, len(rec.Items)),
	}

	fallback := rec.Week.Days()
	for i, day := range rec.Days {
		date, err := time.Parse(constants.DateFormat, day.Date)
		if err != nil {
			date = fallback[i]
		}
		label := day.DayOfWeek
		if label == "" {
			label = constants.DayNames[i]
		}
		t.Columns[i] = Column{Date: date, DayOfWeek: label}
		t.Reflections[i] = Reflection{Column: t.Columns[i], Text: day.Reflection}
	}

	for _, item := range rec.Items {
		row := Row{Item: item}
		for i, day := range rec.Days {
			row.Cells[i] = day.Responses[item]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// GoalText returns the goal, or a placeholder when it is blank.
func (t Table) GoalText() string {
	if isBlank(t.Goal) {
		return unsetGoal
	}
	return t.Goal
}

// DisplayText returns the reflection, or a placeholder when it is blank.
func (r Reflection) DisplayText() string {
	if isBlank(r.Text) {
		return emptyReflection
	}
	return r.Text
}

// EvaluationTSV renders the item grid as tab separated text: a date header,
// a weekday header, then one line per item with "-" for unset cells.
func EvaluationTSV(rec *models.WeekRecord) string {
	t := NewTable(rec)
	lines := make([]string, 0, len(t.Rows)+2)

	header := []string{"評価項目"}
	weekdays := []string{""}
	for _, col := range t.Columns {
		header = append(header, col.LongDate())
		weekdays = append(weekdays, "("+col.DayOfWeek+")")
	}
	lines = append(lines, strings.Join(header, "\t"), strings.Join(weekdays, "\t"))

	for _, row := range t.Rows {
		fields := []string{tsvField(row.Item)}
		for _, cell := range row.Cells {
			fields = append(fields, cell.Label())
		}
		lines = append(lines, strings.Join(fields, "\t"))
	}
	return strings.Join(lines, "\n")
}

// ReflectionTSV renders one "M/D(曜)<TAB>text" line per day under a header.
func ReflectionTSV(rec *models.WeekRecord) string {
	t := NewTable(rec)
	lines := []string{"日付\t感想・気づき"}
	for _, r := range t.Reflections {
		date := fmt.Sprintf("%s(%s)", r.Column.ShortDate(), r.Column.DayOfWeek)
		lines = append(lines, date+"\t"+tsvField(r.Text))
	}
	return strings.Join(lines, "\n")
}

var tsvReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// tsvField keeps a value on one line and in one column.
func tsvField(s string) string {
	return tsvReplacer.Replace(s)
}
