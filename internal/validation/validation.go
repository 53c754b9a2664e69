// Package validation inspects decoded week files for problems that loading
// would otherwise repair silently.
package validation

import (
	"fmt"
	"strings"

	"github.com/julianstephens/weekdiary/internal/constants"
	"github.com/julianstephens/weekdiary/internal/isoweek"
	"github.com/julianstephens/weekdiary/internal/models"
)

type ConflictType string

const (
	ConflictWeekMismatch     ConflictType = "week_mismatch"
	ConflictMissingDays      ConflictType = "missing_days"
	ConflictDateMismatch     ConflictType = "date_mismatch"
	ConflictBlankItem        ConflictType = "blank_item"
	ConflictDuplicateItem    ConflictType = "duplicate_item"
	ConflictOrphanedResponse ConflictType = "orphaned_response"
)

// Conflict is one problem found in a week file.
type Conflict struct {
	Type        ConflictType
	Week        string
	Description string
	Items       []string
}

type ValidationResult struct {
	Conflicts []Conflict
}

func (r ValidationResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// Merge appends the conflicts of other.
func (r *ValidationResult) Merge(other ValidationResult) {
	r.Conflicts = append(r.Conflicts, other.Conflicts...)
}

func (r ValidationResult) FormatReport() string {
	if !r.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d issue(s):\n", len(r.Conflicts))
	for _, c := range r.Conflicts {
		fmt.Fprintf(&b, "  - [%s] %s: %s\n", c.Type, c.Week, c.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateWeek checks a week file as decoded, before normalization, against
// the week it was stored under.
func (v *Validator) ValidateWeek(rec *models.WeekRecord, id isoweek.WeekID) ValidationResult {
	var result ValidationResult
	add := func(t ConflictType, desc string, items ...string) {
		result.Conflicts = append(result.Conflicts, Conflict{Type: t, Week: id.String(), Description: desc, Items: items})
	}

	switch {
	case rec.Week.IsZero():
		add(ConflictWeekMismatch, "week field is missing or malformed")
	case rec.Week != id:
		add(ConflictWeekMismatch, fmt.Sprintf("file says %s", rec.Week))
	}

	if rec.DecodedDays != constants.DaysPerWeek {
		add(ConflictMissingDays, fmt.Sprintf("%d daily records, expected %d", rec.DecodedDays, constants.DaysPerWeek))
	}

	dates := id.Days()
	limit := rec.DecodedDays
	if limit > len(rec.Days) {
		limit = len(rec.Days)
	}
	for i := 0; i < limit; i++ {
		want := dates[i].Format(constants.DateFormat)
		if got := rec.Days[i].Date; got != want {
			add(ConflictDateMismatch, fmt.Sprintf("%s is dated %q, expected %s", constants.DayNames[i], got, want))
		}
	}

	known := make(map[string]bool, len(rec.Items))
	for _, item := range rec.Items {
		label := strings.TrimSpace(item)
		if label == "" {
			add(ConflictBlankItem, "blank evaluation item")
			continue
		}
		if known[label] {
			add(ConflictDuplicateItem, fmt.Sprintf("item %q listed more than once", label), label)
			continue
		}
		known[label] = true
	}

	if len(known) == 0 {
		return result
	}
	orphaned := map[string]bool{}
	var order []string
	for i := 0; i < limit; i++ {
		for _, key := range rec.Days[i].ResponseKeys() {
			if !known[key] && !orphaned[key] {
				orphaned[key] = true
				order = append(order, key)
			}
		}
	}
	for _, key := range order {
		add(ConflictOrphanedResponse, fmt.Sprintf("responses for %q, which is not an evaluation item", key), key)
	}
	return result
}
