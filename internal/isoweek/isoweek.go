// Package isoweek maps calendar dates to ISO-8601 week identifiers and back.
//
// All arithmetic is done on calendar dates pinned to noon UTC, so daylight
// saving transitions and zone offsets never shift a date across midnight.
// Only the calendar date of any returned time.Time is meaningful.
package isoweek

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/weekdiary/internal/constants"
)

const (
	minWeek  = 1
	maxWeek  = 53
	jan4     = 4
	weekDays = 7
)

// WeekID identifies one ISO-8601 week. The zero value is not a valid week.
type WeekID struct {
	Year int
	Week int
}

// FormatError reports a malformed week identifier string.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid week identifier %q: %s", e.Input, e.Reason)
}

// New returns the WeekID for year and week, validating that the week exists.
func New(year, week int) (WeekID, error) {
	id := WeekID{Year: year, Week: week}
	if err := id.validate(); err != nil {
		return WeekID{}, &FormatError{Input: id.String(), Reason: err.Error()}
	}
	return id, nil
}

func (w WeekID) validate() error {
	if w.Year < 1 || w.Year > 9999 {
		return fmt.Errorf("year %d out of range 1..9999", w.Year)
	}
	if w.Week < minWeek || w.Week > maxWeek {
		return fmt.Errorf("week %d out of range %d..%d", w.Week, minWeek, maxWeek)
	}
	if last := WeeksInYear(w.Year); w.Week > last {
		return fmt.Errorf("year %d has only %d weeks", w.Year, last)
	}
	return nil
}

// IsZero reports whether w is the zero WeekID.
func (w WeekID) IsZero() bool {
	return w.Year == 0 && w.Week == 0
}

// String formats w as YYYY-Www.
func (w WeekID) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Week)
}

// Format is an alias for String.
func Format(w WeekID) string {
	return w.String()
}

// Parse parses a YYYY-Www identifier. It never returns a partially filled WeekID.
func Parse(s string) (WeekID, error) {
	yearPart, weekPart, ok := strings.Cut(s, "-W")
	if !ok {
		return WeekID{}, &FormatError{Input: s, Reason: "expected YYYY-Www"}
	}
	if len(yearPart) != 4 || len(weekPart) != 2 {
		return WeekID{}, &FormatError{Input: s, Reason: "expected a 4-digit year and 2-digit week"}
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil || strings.ContainsAny(yearPart, "+-") {
		return WeekID{}, &FormatError{Input: s, Reason: "year is not numeric"}
	}
	week, err := strconv.Atoi(weekPart)
	if err != nil || strings.ContainsAny(weekPart, "+-") {
		return WeekID{}, &FormatError{Input: s, Reason: "week is not numeric"}
	}
	id := WeekID{Year: year, Week: week}
	if err := id.validate(); err != nil {
		return WeekID{}, &FormatError{Input: s, Reason: err.Error()}
	}
	return id, nil
}

// MarshalText implements encoding.TextMarshaler.
func (w WeekID) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *WeekID) UnmarshalText(text []byte) error {
	id, err := Parse(string(text))
	if err != nil {
		return err
	}
	*w = id
	return nil
}

// MondayOffset returns the signed number of days from a weekday
// (0=Sunday..6=Saturday) back to the Monday of the same week.
func MondayOffset(weekday int) int {
	if weekday == int(time.Sunday) {
		return -6
	}
	return int(time.Monday) - weekday
}

func noon(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, constants.NoonHour, 0, 0, 0, time.UTC)
}

// FirstMondayOfYear returns the Monday of the ISO week containing January 4th.
func FirstMondayOfYear(year int) time.Time {
	anchor := noon(year, time.January, jan4)
	return anchor.AddDate(0, 0, MondayOffset(int(anchor.Weekday())))
}

// mondayOfDate returns the Monday on or before t's calendar date.
func mondayOfDate(t time.Time) time.Time {
	y, m, d := t.Date()
	day := noon(y, m, d)
	return day.AddDate(0, 0, MondayOffset(int(day.Weekday())))
}

func weekNumber(monday, firstMonday time.Time) int {
	days := int(monday.Sub(firstMonday).Hours() / 24)
	return days/weekDays + 1
}

// Of returns the ISO week containing t's calendar date (in t's location).
func Of(t time.Time) WeekID {
	year := t.Year()
	monday := mondayOfDate(t)
	week := weekNumber(monday, FirstMondayOfYear(year))

	switch {
	case week < minWeek:
		return lastWeekOf(year - 1)
	case week > 52:
		if !monday.Before(FirstMondayOfYear(year + 1)) {
			return WeekID{Year: year + 1, Week: 1}
		}
	}
	return WeekID{Year: year, Week: week}
}

// lastWeekOf returns the week containing December 31st of year, counted
// within year. Callers only use it when that week does not roll into year+1.
func lastWeekOf(year int) WeekID {
	monday := mondayOfDate(noon(year, time.December, 31))
	return WeekID{Year: year, Week: weekNumber(monday, FirstMondayOfYear(year))}
}

// WeeksInYear returns 52 or 53. December 28th always falls in a year's last week.
func WeeksInYear(year int) int {
	monday := mondayOfDate(noon(year, time.December, 28))
	return weekNumber(monday, FirstMondayOfYear(year))
}

// MondayOf returns the Monday that starts w.
func MondayOf(w WeekID) time.Time {
	return FirstMondayOfYear(w.Year).AddDate(0, 0, (w.Week-1)*weekDays)
}

// Days returns the seven dates of w, Monday first.
func (w WeekID) Days() [weekDays]time.Time {
	var days [weekDays]time.Time
	monday := MondayOf(w)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}

// Contains reports whether t's calendar date falls inside w.
func (w WeekID) Contains(t time.Time) bool {
	return Of(t) == w
}

// Add returns the week n weeks after w (n may be negative).
func (w WeekID) Add(n int) WeekID {
	return Of(MondayOf(w).AddDate(0, 0, n*weekDays))
}

// Next returns the following week.
func (w WeekID) Next() WeekID {
	return w.Add(1)
}

// Prev returns the preceding week.
func (w WeekID) Prev() WeekID {
	return w.Add(-1)
}

// Before reports whether w is earlier than other.
func (w WeekID) Before(other WeekID) bool {
	if w.Year != other.Year {
		return w.Year < other.Year
	}
	return w.Week < other.Week
}

// Current returns the week containing now in loc.
func Current(loc *time.Location) WeekID {
	return Of(time.Now().In(loc))
}

// Resolve interprets a user supplied week reference relative to now:
// "", "today", "this", "next", "prev"/"last", a YYYY-MM-DD date, or YYYY-Www.
func Resolve(ref string, now time.Time) (WeekID, error) {
	switch strings.ToLower(strings.TrimSpace(ref)) {
	case "", "today", "this", "current":
		return Of(now), nil
	case "next":
		return Of(now).Next(), nil
	case "prev", "previous", "last":
		return Of(now).Prev(), nil
	}

	ref = strings.TrimSpace(ref)
	if strings.Contains(ref, "-W") {
		return Parse(ref)
	}
	date, err := time.ParseInLocation(constants.DateFormat, ref, now.Location())
	if err != nil {
		return WeekID{}, &FormatError{Input: ref, Reason: "expected YYYY-Www, YYYY-MM-DD, today, next or prev"}
	}
	return Of(date), nil
}
