package diary

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/weekdiary/internal/constants"
	"github.com/julianstephens/weekdiary/internal/models"
)

func TestDefaultEvaluationItems(t *testing.T) {
	items := DefaultEvaluationItems()
	assert.Len(t, items, len(constants.DefaultItems)-1)
	assert.NotContains(t, items, constants.DefaultItems[constants.DefaultGoalIndex])
	assert.Equal(t, constants.DefaultItems[1], items[0])

	// callers get their own copy
	items[0] = "changed"
	assert.NotEqual(t, "changed", DefaultEvaluationItems()[0])
}

func TestItemCache(t *testing.T) {
	var nilCache *ItemCache
	assert.True(t, nilCache.Empty())
	assert.Equal(t, DefaultEvaluationItems(), nilCache.CurrentItems())

	c := NewItemCache(nil)
	assert.True(t, c.Empty())

	src := []string{"a", "b"}
	c.Set(src)
	src[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, c.Get())

	got := c.Get()
	got[1] = "mutated"
	assert.Equal(t, []string{"a", "b"}, c.CurrentItems())
}

func TestReconcileItems(t *testing.T) {
	withResponses := func(days ...map[string]models.Response) *models.WeekRecord {
		rec := &models.WeekRecord{}
		for i, r := range days {
			rec.Days[i].Responses = r
		}
		return rec
	}

	tests := []struct {
		name   string
		loaded *models.WeekRecord
		cache  []string
		want   []string
	}{
		{
			name:   "explicit items win",
			loaded: &models.WeekRecord{Items: []string{"x", "y"}},
			cache:  []string{"c"},
			want:   []string{"x", "y"},
		},
		{
			name:   "explicit items drop blanks and duplicates",
			loaded: &models.WeekRecord{Items: []string{"x", " ", "x", "y"}},
			want:   []string{"x", "y"},
		},
		{
			name: "response key union",
			loaded: withResponses(
				map[string]models.Response{"A": models.ResponseSuccess},
				map[string]models.Response{"B": models.ResponseNone, "A": models.ResponseNone},
			),
			cache: []string{"c"},
			want:  []string{"A", "B"},
		},
		{
			name:   "cache when no items or responses",
			loaded: withResponses(map[string]models.Response{}),
			cache:  []string{"c1", "c2"},
			want:   []string{"c1", "c2"},
		},
		{
			name:   "defaults when nothing else",
			loaded: &models.WeekRecord{},
			want:   DefaultEvaluationItems(),
		},
		{
			name:   "nil loaded uses cache",
			loaded: nil,
			cache:  []string{"c"},
			want:   []string{"c"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewItemCache(tt.cache)
			got := ReconcileItems(tt.loaded, cache)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, cache.Get())
			assert.NotEmpty(t, got)
		})
	}
}

func TestReconcileItemsLegacyOrder(t *testing.T) {
	loaded, err := models.DecodeWeek([]byte(`{
  "week": "2024-W10",
  "goal": "",
  "dailyRecords": [
    {"date": "2024-03-04", "dayOfWeek": "月", "responses": {"Z": "", "A": "⭕️"}, "reflection": ""},
    {"date": "2024-03-05", "dayOfWeek": "火", "responses": {"M": "", "Z": "△"}, "reflection": ""}
  ]
}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"Z", "A", "M"}, ReconcileItems(loaded, NewItemCache(nil)))
}

func TestAddItem(t *testing.T) {
	rec := New(week2025W01, []string{"A"})

	require.NoError(t, AddItem(rec, "  B  "))
	assert.Equal(t, []string{"A", "B"}, rec.Items)
	for _, day := range rec.Days {
		v, ok := day.Responses["B"]
		assert.True(t, ok)
		assert.Equal(t, models.ResponseNone, v)
	}

	before := rec.Clone()
	err := AddItem(rec, "A")
	var dup *DuplicateItemError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "A", dup.Label)
	assert.Equal(t, before, rec)

	err = AddItem(rec, "   ")
	var blank *BlankLabelError
	require.True(t, errors.As(err, &blank))
	assert.Equal(t, before, rec)
}

func TestRenameItem(t *testing.T) {
	rec := New(week2025W01, []string{"A", "B", "C"})
	SetResponse(rec, 0, "B", models.ResponseSuccess)
	SetResponse(rec, 4, "B", models.ResponsePartial)

	require.NoError(t, RenameItem(rec, 1, " B2 "))
	assert.Equal(t, []string{"A", "B2", "C"}, rec.Items)
	for i, day := range rec.Days {
		_, old := day.Responses["B"]
		assert.False(t, old, "day %d still has old key", i)
		_, ok := day.Responses["B2"]
		assert.True(t, ok, "day %d missing new key", i)
	}
	assert.Equal(t, models.ResponseSuccess, rec.Days[0].Responses["B2"])
	assert.Equal(t, models.ResponsePartial, rec.Days[4].Responses["B2"])
}

func TestRenameItemCollisionLeavesRecordUnchanged(t *testing.T) {
	rec := New(week2025W01, []string{"A", "B"})
	SetResponse(rec, 2, "A", models.ResponseFailure)
	before := rec.Clone()

	err := RenameItem(rec, 0, "B")
	var dup *DuplicateItemError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, before, rec)

	err = RenameItem(rec, 0, "")
	var blank *BlankLabelError
	require.True(t, errors.As(err, &blank))
	assert.Equal(t, before, rec)
}

func TestRenameItemToSameLabel(t *testing.T) {
	rec := New(week2025W01, []string{"A"})
	before := rec.Clone()
	require.NoError(t, RenameItem(rec, 0, " A "))
	assert.Equal(t, before, rec)
}

func TestRenameItemIndexPrecondition(t *testing.T) {
	rec := New(week2025W01, []string{"A"})
	assert.Panics(t, func() { _ = RenameItem(rec, 1, "x") })
	assert.Panics(t, func() { RemoveItem(rec, -1) })
}

func TestRemoveThenAddResetsResponses(t *testing.T) {
	rec := New(week2025W01, []string{"A", "B"})
	SetResponse(rec, 0, "A", models.ResponseSuccess)

	removed := RemoveItem(rec, 0)
	assert.Equal(t, "A", removed)
	assert.Equal(t, []string{"B"}, rec.Items)
	for _, day := range rec.Days {
		_, ok := day.Responses["A"]
		assert.False(t, ok)
	}

	require.NoError(t, AddItem(rec, "A"))
	assert.Equal(t, models.ResponseNone, rec.Days[0].Responses["A"])
}

func TestRemoveItemDoesNotAliasItems(t *testing.T) {
	items := []string{"A", "B", "C"}
	rec := &models.WeekRecord{Items: items}
	RemoveItem(rec, 0)
	assert.Equal(t, []string{"A", "B", "C"}, items)
	assert.Equal(t, []string{"B", "C"}, rec.Items)
}

func TestResetToDefaultsKeepsOrphans(t *testing.T) {
	rec := New(week2025W01, []string{"custom"})
	SetResponse(rec, 0, "custom", models.ResponseSuccess)

	ResetToDefaults(rec)
	assert.Equal(t, DefaultEvaluationItems(), rec.Items)
	assert.Equal(t, models.ResponseSuccess, rec.Days[0].Responses["custom"])
	for _, item := range rec.Items {
		_, ok := rec.Days[6].Responses[item]
		assert.True(t, ok)
	}
}
