package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/weekdiary/internal/isoweek"
	"github.com/julianstephens/weekdiary/internal/storage"
	"github.com/julianstephens/weekdiary/internal/validation"
)

type ValidateCmd struct {
	Week string `arg:"" optional:"" help:"Week to check. Defaults to every week in the repository."`
}

// Run checks stored week files as they are, before loading repairs them.
func (cmd *ValidateCmd) Run(ctx *Context) error {
	bg := context.Background()
	remote, err := ctx.Remote()
	if err != nil {
		return err
	}

	var weeks []isoweek.WeekID
	if cmd.Week != "" {
		id, err := ctx.ResolveWeek(cmd.Week)
		if err != nil {
			return err
		}
		weeks = []isoweek.WeekID{id}
	} else {
		lister, ok := remote.(storage.WeekLister)
		if !ok {
			return fmt.Errorf("this store cannot list weeks; pass a week")
		}
		if weeks, err = lister.List(bg); err != nil {
			return err
		}
	}

	ctx.printf("Validating %d week(s)...\n", len(weeks))
	validator := validation.New()
	var result validation.ValidationResult
	for _, id := range weeks {
		rec, _, err := remote.Load(bg, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("loading %s: %w", id, err)
		}
		result.Merge(validator.ValidateWeek(rec, id))
	}

	ctx.println()
	ctx.println(result.FormatReport())
	return nil
}
