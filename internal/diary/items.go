package diary

import (
	"strings"

	"github.com/julianstephens/weekdiary/internal/constants"
	"github.com/julianstephens/weekdiary/internal/models"
)

// DefaultEvaluationItems returns the built-in item list without the weekly
// goal prompt.
func DefaultEvaluationItems() []string {
	items := make([]string, 0, len(constants.DefaultItems)-1)
	for i, item := range constants.DefaultItems {
		if i == constants.DefaultGoalIndex {
			continue
		}
		items = append(items, item)
	}
	return items
}

// ItemCache holds the most recently used item list. It is a fallback for
// weeks that carry no items of their own and is never authoritative.
type ItemCache struct {
	items []string
}

// NewItemCache returns a cache seeded with items, which may be empty.
func NewItemCache(items []string) *ItemCache {
	c := &ItemCache{}
	c.Set(items)
	return c
}

// Get returns a copy of the cached list.
func (c *ItemCache) Get() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.items...)
}

// Set overwrites the cached list.
func (c *ItemCache) Set(items []string) {
	if c == nil {
		return
	}
	c.items = append([]string(nil), items...)
}

// Empty reports whether the cache holds no items.
func (c *ItemCache) Empty() bool {
	return c == nil || len(c.items) == 0
}

// CurrentItems returns the cached list, or the defaults when the cache is empty.
func (c *ItemCache) CurrentItems() []string {
	if c.Empty() {
		return DefaultEvaluationItems()
	}
	return c.Get()
}

// ReconcileItems decides the item list for a loaded week. Explicit items win,
// then the union of response keys in first-seen order, then the cache, then
// the defaults. The result is never empty and is written back to the cache.
func ReconcileItems(loaded *models.WeekRecord, cache *ItemCache) []string {
	var items []string
	switch {
	case loaded != nil && len(nonBlank(loaded.Items)) > 0:
		items = dedupe(nonBlank(loaded.Items))
	case loaded != nil && len(responseKeyUnion(loaded)) > 0:
		items = responseKeyUnion(loaded)
	case !cache.Empty():
		items = cache.Get()
	default:
		items = DefaultEvaluationItems()
	}

	cache.Set(items)
	return items
}

func responseKeyUnion(rec *models.WeekRecord) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, day := range rec.Days {
		for _, k := range day.ResponseKeys() {
			if isBlank(k) || seen[k] {
				continue
			}
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

func nonBlank(items []string) []string {
	var out []string
	for _, item := range items {
		if !isBlank(item) {
			out = append(out, item)
		}
	}
	return out
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

func indexOf(items []string, label string) int {
	for i, item := range items {
		if item == label {
			return i
		}
	}
	return -1
}

func cleanLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", &BlankLabelError{}
	}
	return label, nil
}

// AddItem appends label and gives every day an unset response for it.
func AddItem(rec *models.WeekRecord, label string) error {
	label, err := cleanLabel(label)
	if err != nil {
		return err
	}
	if indexOf(rec.Items, label) >= 0 {
		return &DuplicateItemError{Label: label}
	}

	rec.Items = append(rec.Items, label)
	backfill(rec)
	return nil
}

// RenameItem relabels the item at index, moving every recorded response to
// the new key. Renaming an item to its current label is a no-op.
func RenameItem(rec *models.WeekRecord, index int, label string) error {
	checkIndex("RenameItem", index, len(rec.Items))
	label, err := cleanLabel(label)
	if err != nil {
		return err
	}

	old := rec.Items[index]
	if label == old {
		return nil
	}
	for i, item := range rec.Items {
		if i != index && item == label {
			return &DuplicateItemError{Label: label}
		}
	}

	for i := range rec.Days {
		responses := rec.Days[i].Responses
		if v, ok := responses[old]; ok {
			responses[label] = v
			delete(responses, old)
		}
	}
	rec.Items[index] = label
	backfill(rec)
	return nil
}

// RemoveItem deletes the item at index and its responses on every day.
func RemoveItem(rec *models.WeekRecord, index int) string {
	checkIndex("RemoveItem", index, len(rec.Items))
	removed := rec.Items[index]

	for i := range rec.Days {
		delete(rec.Days[i].Responses, removed)
	}
	rec.Items = append(rec.Items[:index:index], rec.Items[index+1:]...)
	return removed
}

// ResetToDefaults replaces the item list with the defaults. Responses under
// items outside the defaults are left in place.
func ResetToDefaults(rec *models.WeekRecord) {
	rec.Items = DefaultEvaluationItems()
	backfill(rec)
}

// backfill gives every day an entry for every item.
func backfill(rec *models.WeekRecord) {
	for i := range rec.Days {
		if rec.Days[i].Responses == nil {
			rec.Days[i].Responses = make(map[string]models.Response, len(rec.Items))
		}
		for _, item := range rec.Items {
			if _, ok := rec.Days[i].Responses[item]; !ok {
				rec.Days[i].Responses[item] = models.ResponseNone
			}
		}
	}
}
