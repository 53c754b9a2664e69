package diary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/weekdiary/internal/models"
)

func sampleRecord() *models.WeekRecord {
	rec := New(week2025W01, []string{"早起き", "勉強"})
	SetGoal(rec, "がんばる")
	SetResponse(rec, 0, "早起き", models.ResponseSuccess)
	SetResponse(rec, 1, "勉強", models.ResponseFailure)
	SetResponse(rec, 6, "勉強", models.ResponsePartial)
	SetReflection(rec, 0, "よい一日")
	SetReflection(rec, 2, "line one\nline\ttwo")
	return rec
}

func TestNewTable(t *testing.T) {
	tbl := NewTable(sampleRecord())

	assert.Equal(t, "2025-W01", tbl.Week)
	assert.Equal(t, "がんばる", tbl.GoalText())
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "早起き", tbl.Rows[0].Item)
	assert.Equal(t, models.ResponseSuccess, tbl.Rows[0].Cells[0])
	assert.Equal(t, models.ResponsePartial, tbl.Rows[1].Cells[6])

	assert.Equal(t, "12/30", tbl.Columns[0].ShortDate())
	assert.Equal(t, "1月5日", tbl.Columns[6].LongDate())
	assert.Equal(t, "記録なし", tbl.Reflections[1].DisplayText())
	assert.Equal(t, "よい一日", tbl.Reflections[0].DisplayText())
}

func TestTableGoalPlaceholder(t *testing.T) {
	tbl := NewTable(New(week2025W01, nil))
	assert.Equal(t, "未設定", tbl.GoalText())
}

func TestEvaluationTSV(t *testing.T) {
	got := EvaluationTSV(sampleRecord())
	want := strings.Join([]string{
		"評価項目\t12月30日\t12月31日\t1月1日\t1月2日\t1月3日\t1月4日\t1月5日",
		"\t(月)\t(火)\t(水)\t(木)\t(金)\t(土)\t(日)",
		"早起き\t⭕️\t-\t-\t-\t-\t-\t-",
		"勉強\t-\t✖️\t-\t-\t-\t-\t△",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestReflectionTSV(t *testing.T) {
	got := ReflectionTSV(sampleRecord())
	want := strings.Join([]string{
		"日付\t感想・気づき",
		"12/30(月)\tよい一日",
		"12/31(火)\t",
		"1/1(水)\tline one line two",
		"1/2(木)\t",
		"1/3(金)\t",
		"1/4(土)\t",
		"1/5(日)\t",
	}, "\n")
	assert.Equal(t, want, got)
}
