package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/weekdiary/internal/constants"
	"github.com/julianstephens/weekdiary/internal/isoweek"
)

type DayCmd struct {
	Date string `arg:"" help:"Date to show (YYYY-MM-DD or 'today')." default:"today"`
}

// Run prints one day's answers and reflection.
func (c *DayCmd) Run(ctx *Context) error {
	now := ctx.now().In(ctx.Location())
	date := now
	if c.Date != "today" {
		var err error
		date, err = parseDate(c.Date, now.Location())
		if err != nil {
			return err
		}
	}

	id := isoweek.Of(date)
	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	if err := sess.Open(context.Background(), id); err != nil {
		return err
	}
	idx, err := ParseDay(date.Format(constants.DateFormat), id, now)
	if err != nil {
		return err
	}

	rec := sess.Record()
	day := rec.Days[idx]
	ctx.printf("%s (%s) · %s\n\n", day.Date, day.DayOfWeek, id)

	if len(rec.Items) == 0 {
		ctx.println("  No evaluation items")
	}
	for i, item := range rec.Items {
		ctx.printf("  %2d. %-4s %s\n", i+1, day.Responses[item].Label(), item)
	}

	ctx.println()
	if day.Reflection == "" {
		ctx.println("Reflection: (none)")
	} else {
		ctx.printf("Reflection: %s\n", day.Reflection)
	}
	return nil
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(constants.DateFormat, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD or 'today': %w", err)
	}
	return d, nil
}
