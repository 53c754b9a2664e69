// Package diary implements the week record model: building a week, deciding
// which evaluation items apply to it, and editing it in place.
package diary

import (
	"strings"

	"github.com/julianstephens/weekdiary/internal/constants"
	"github.com/julianstephens/weekdiary/internal/isoweek"
	"github.com/julianstephens/weekdiary/internal/logger"
	"github.com/julianstephens/weekdiary/internal/models"
)

// GenerateDailyRecords builds the seven days of id with an unset response
// for every item.
func GenerateDailyRecords(id isoweek.WeekID, items []string) [constants.DaysPerWeek]models.DailyRecord {
	var days [constants.DaysPerWeek]models.DailyRecord
	for i, date := range id.Days() {
		days[i] = newDay(date.Format(constants.DateFormat), i, items)
	}
	return days
}

func newDay(date string, index int, items []string) models.DailyRecord {
	responses := make(map[string]models.Response, len(items))
	for _, item := range items {
		responses[item] = models.ResponseNone
	}
	return models.DailyRecord{
		Date:      date,
		DayOfWeek: constants.DayNames[index],
		Responses: responses,
	}
}

// New returns an empty record for id using items.
func New(id isoweek.WeekID, items []string) *models.WeekRecord {
	return &models.WeekRecord{
		Week:  id,
		Items: append([]string(nil), items...),
		Days:  GenerateDailyRecords(id, items),
	}
}

// Initialize returns current when it already holds id, otherwise a fresh
// record for id built from currentItems.
func Initialize(current *models.WeekRecord, id isoweek.WeekID, currentItems []string) *models.WeekRecord {
	if current != nil && current.Week == id {
		return current
	}
	return New(id, currentItems)
}

// Prepare reconciles and normalizes a record decoded from storage so that it
// satisfies every record invariant for week id. The cache is updated with the
// resolved item list.
func Prepare(loaded *models.WeekRecord, id isoweek.WeekID, cache *ItemCache) *models.WeekRecord {
	if loaded == nil {
		return New(id, cache.CurrentItems())
	}

	items := ReconcileItems(loaded, cache)
	normalize(loaded, id, items)
	return loaded
}

func normalize(rec *models.WeekRecord, id isoweek.WeekID, items []string) {
	if rec.Week != id {
		if !rec.Week.IsZero() {
			logger.Warn("Week file carries a different week id, using requested week",
				"file_week", rec.Week.String(), "week", id.String())
		}
		rec.Week = id
	}
	if rec.DecodedDays != constants.DaysPerWeek {
		logger.Warn("Week file has unexpected number of days", "week", id.String(), "days", rec.DecodedDays)
	}

	rec.Items = append([]string(nil), items...)
	keep := make(map[string]bool, len(items))
	for _, item := range items {
		keep[item] = true
	}

	dates := id.Days()
	for i := range rec.Days {
		day := &rec.Days[i]
		if day.Date == "" {
			day.Date = dates[i].Format(constants.DateFormat)
		}
		day.DayOfWeek = constants.DayNames[i]
		if day.Responses == nil {
			day.Responses = make(map[string]models.Response, len(items))
		}
		for key := range day.Responses {
			if !keep[key] {
				delete(day.Responses, key)
			}
		}
		for _, item := range items {
			if _, ok := day.Responses[item]; !ok {
				day.Responses[item] = models.ResponseNone
			}
		}
	}
}

// IsEmpty reports whether rec holds nothing worth saving.
func IsEmpty(rec *models.WeekRecord) bool {
	if rec == nil {
		return true
	}
	if !isBlank(rec.Goal) || !isBlank(rec.ParentsComment) {
		return false
	}
	for _, day := range rec.Days {
		for _, r := range day.Responses {
			if !isBlank(string(r)) {
				return false
			}
		}
		if !isBlank(day.Reflection) {
			return false
		}
	}
	return true
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// SetResponse records value for item on day. The item must belong to rec.
func SetResponse(rec *models.WeekRecord, day int, item string, value models.Response) {
	checkIndex("SetResponse", day, len(rec.Days))
	if indexOf(rec.Items, item) < 0 {
		panic(&PreconditionError{Op: "SetResponse: unknown item " + item, Index: -1, Limit: len(rec.Items)})
	}
	if rec.Days[day].Responses == nil {
		rec.Days[day].Responses = make(map[string]models.Response)
	}
	rec.Days[day].Responses[item] = value
}

// CycleResponse advances the response for item on day and returns the new value.
func CycleResponse(rec *models.WeekRecord, day int, item string) models.Response {
	checkIndex("CycleResponse", day, len(rec.Days))
	next := rec.Days[day].Responses[item].Next()
	SetResponse(rec, day, item, next)
	return next
}

// SetReflection replaces the reflection text for day.
func SetReflection(rec *models.WeekRecord, day int, text string) {
	checkIndex("SetReflection", day, len(rec.Days))
	rec.Days[day].Reflection = text
}

func SetGoal(rec *models.WeekRecord, goal string) {
	rec.Goal = goal
}

func SetParentsComment(rec *models.WeekRecord, comment string) {
	rec.ParentsComment = comment
}
