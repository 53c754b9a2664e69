package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/weekdiary/internal/isoweek"
)

const legacyWeek = `{
  "week": "2024-W05",
  "goal": "早起き",
  "dailyRecords": [
    {"date": "2024-01-29", "dayOfWeek": "月", "responses": {"zeta": "⭕️", "alpha": "", "mid": "△"}, "reflection": "good"},
    {"date": "2024-01-30", "dayOfWeek": "火", "responses": {"alpha": "✖️", "new": "⭕️"}, "reflection": ""}
  ]
}`

func TestDailyRecordKeepsKeyOrder(t *testing.T) {
	rec, err := DecodeWeek([]byte(legacyWeek))
	require.NoError(t, err)

	assert.Equal(t, isoweek.WeekID{Year: 2024, Week: 5}, rec.Week)
	assert.Equal(t, "早起き", rec.Goal)
	assert.Empty(t, rec.Items)
	assert.Equal(t, 2, rec.DecodedDays)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, rec.Days[0].ResponseKeys())
	assert.Equal(t, []string{"alpha", "new"}, rec.Days[1].ResponseKeys())
	assert.Equal(t, ResponsePartial, rec.Days[0].Responses["mid"])
	assert.Equal(t, "good", rec.Days[0].Reflection)

	// days that were not in the file stay zero
	assert.Empty(t, rec.Days[2].Date)
}

func TestUnknownSymbolKeptOnReencode(t *testing.T) {
	data := `{"week":"2024-W05","goal":"","dailyRecords":[` +
		`{"date":"2024-01-29","dayOfWeek":"月","responses":{"a":"★","b":"⭕️"},"reflection":""}]}`
	rec, err := DecodeWeek([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, Response("★"), rec.Days[0].Responses["a"])

	out, err := EncodeWeek(rec)
	require.NoError(t, err)
	again, err := DecodeWeek(out)
	require.NoError(t, err)
	assert.Equal(t, Response("★"), again.Days[0].Responses["a"])
	assert.Equal(t, ResponseSuccess, again.Days[0].Responses["b"])
}

func TestResponseKeysWithoutDecodeOrder(t *testing.T) {
	d := DailyRecord{Responses: map[string]Response{"b": "", "a": "", "c": ""}}
	assert.Equal(t, []string{"a", "b", "c"}, d.ResponseKeys())
}

func TestWeekRecordDropsExtraDays(t *testing.T) {
	var days []string
	for i := 0; i < 9; i++ {
		days = append(days, `{"date":"x","dayOfWeek":"","responses":{},"reflection":""}`)
	}
	data := `{"week":"2024-W05","goal":"","dailyRecords":[` + strings.Join(days, ",") + `]}`

	rec, err := DecodeWeek([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, 9, rec.DecodedDays)
	assert.Equal(t, "x", rec.Days[6].Date)
}

func TestWeekRecordBadWeekField(t *testing.T) {
	rec, err := DecodeWeek([]byte(`{"week":"nope","goal":"g","dailyRecords":[]}`))
	require.NoError(t, err)
	assert.True(t, rec.Week.IsZero())
}

func TestDecodeWeekInvalidJSON(t *testing.T) {
	_, err := DecodeWeek([]byte(`{"week":`))
	assert.Error(t, err)

	_, err = DecodeWeek([]byte(`{"week":"2024-W05","dailyRecords":[{"responses":[1,2]}]}`))
	assert.Error(t, err)
}

func TestEncodeWeekLayout(t *testing.T) {
	rec := &WeekRecord{
		Week:           isoweek.WeekID{Year: 2025, Week: 1},
		Goal:           "goal",
		ParentsComment: "",
		Items:          []string{"second", "first"},
	}
	for i := range rec.Days {
		rec.Days[i] = DailyRecord{
			Date:      "2024-12-30",
			DayOfWeek: "月",
			Responses: map[string]Response{"first": ResponseNone, "second": ResponseSuccess},
		}
	}

	data, err := EncodeWeek(rec)
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "{\n  \"week\": \"2025-W01\",\n  \"goal\": \"goal\",\n  \"evaluationItems\": ["))
	assert.Contains(t, text, `"parentsComment": ""`)
	// responses follow item order, not sorted key order
	assert.Less(t, strings.Index(text, `"second": "⭕️"`), strings.Index(text, `"first": ""`))

	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	assert.Len(t, generic["dailyRecords"], 7)

	back, err := DecodeWeek(data)
	require.NoError(t, err)
	assert.Equal(t, rec.Items, back.Items)
	assert.Equal(t, []string{"second", "first"}, back.Days[0].ResponseKeys())
}

func TestEncodeWeekNilItems(t *testing.T) {
	rec := &WeekRecord{Week: isoweek.WeekID{Year: 2025, Week: 2}}
	data, err := EncodeWeek(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"evaluationItems": []`)
}

func TestCloneIsDeep(t *testing.T) {
	rec := &WeekRecord{Items: []string{"a"}}
	rec.Days[0].Responses = map[string]Response{"a": ResponseSuccess}

	cp := rec.Clone()
	cp.Items[0] = "b"
	cp.Days[0].Responses["a"] = ResponseFailure

	assert.Equal(t, "a", rec.Items[0])
	assert.Equal(t, ResponseSuccess, rec.Days[0].Responses["a"])
}
