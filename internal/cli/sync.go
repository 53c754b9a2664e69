package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/weekdiary/internal/isoweek"
	"github.com/julianstephens/weekdiary/internal/logger"
	"github.com/julianstephens/weekdiary/internal/storage"
	"github.com/julianstephens/weekdiary/internal/storage/sqlite"
)

type PullCmd struct {
	Week    string `arg:"" optional:"" help:"Week to download. Defaults to every week in the repository."`
	Discard bool   `help:"Replace local copies that have unpushed edits."`
}

// Run refreshes local copies from the remote store. Weeks with unpushed
// edits are left alone unless --discard is given.
func (c *PullCmd) Run(ctx *Context) error {
	bg := context.Background()
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	var weeks []isoweek.WeekID
	if c.Week != "" {
		id, err := ctx.ResolveWeek(c.Week)
		if err != nil {
			return err
		}
		weeks = []isoweek.WeekID{id}
	} else {
		remote, _ := ctx.Remote()
		lister, ok := remote.(storage.WeekLister)
		if !ok {
			return fmt.Errorf("this store cannot list weeks; pass a week")
		}
		if weeks, err = lister.List(bg); err != nil {
			return err
		}
	}

	pulled := 0
	for _, id := range weeks {
		if !c.Discard {
			dirty, err := ctx.Store.IsDirty(bg, id)
			if err != nil {
				ctx.printf("  ❌ %s: %v\n", id, err)
				continue
			}
			if dirty {
				ctx.printf("  ⚠ %s: unpushed local edits kept; run 'weekdiary push' or pull --discard\n", id)
				continue
			}
		}
		sess.Begin(id)
		if err := sess.Reload(bg); err != nil {
			ctx.printf("  ❌ %s: %v\n", id, err)
			continue
		}
		if sess.Dirty() {
			ctx.printf("  ⚠ %s: remote unreachable, kept local copy\n", id)
			continue
		}
		if sess.Revision() == "" {
			ctx.printf("  ⊘ %s: not in repository\n", id)
			continue
		}
		pulled++
		ctx.printf("  ✓ %s\n", id)
	}
	ctx.printf("Pulled %d of %d week(s).\n", pulled, len(weeks))
	return nil
}

type PushCmd struct {
	Force bool `help:"Overwrite remote changes instead of stopping on a conflict."`
}

// Run uploads every week whose local copy has unsaved changes.
func (c *PushCmd) Run(ctx *Context) error {
	bg := context.Background()
	remote, err := ctx.Remote()
	if err != nil {
		return err
	}
	dirty, err := ctx.Store.DirtyWeeks(bg)
	if err != nil {
		return err
	}
	if len(dirty) == 0 {
		ctx.println("Nothing to push.")
		return nil
	}

	var failed int
	for _, id := range dirty {
		if err := pushWeek(bg, ctx.Store, remote, id, c.Force); err != nil {
			failed++
			ctx.printf("  ❌ %s: %v\n", id, err)
			continue
		}
		ctx.printf("  ✓ %s\n", id)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d week(s) failed to push", failed, len(dirty))
	}
	ctx.printf("Pushed %d week(s).\n", len(dirty))
	return nil
}

func pushWeek(ctx context.Context, local *sqlite.Store, remote storage.WeekStore, id isoweek.WeekID, force bool) error {
	rec, _, err := local.Load(ctx, id)
	if err != nil {
		return err
	}
	expected, err := local.RemoteRevision(ctx, id)
	if err != nil {
		return err
	}
	if force {
		expected = ""
	}

	rev, err := remote.Save(ctx, rec, expected)
	if err != nil {
		status := sqlite.StatusFailed
		if storage.IsConflict(err) {
			status = sqlite.StatusConflict
		}
		if _, rerr := local.RecordSyncEvent(ctx, id, sqlite.ActionSave, status, err.Error()); rerr != nil {
			logger.Warn("Failed to record sync event", "week", id.String(), "error", rerr)
		}
		return err
	}
	if _, err := local.RecordSyncEvent(ctx, id, sqlite.ActionSave, sqlite.StatusOK, "push"); err != nil {
		logger.Warn("Failed to record sync event", "week", id.String(), "error", err)
	}
	return local.Mirror(ctx, rec, rev, false)
}

type DeleteCmd struct {
	Week string `arg:"" help:"Week to delete."`
	Yes  bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *DeleteCmd) Run(ctx *Context) error {
	id, err := ctx.ResolveWeek(c.Week)
	if err != nil {
		return err
	}

	if !c.Yes {
		if !Interactive() {
			return fmt.Errorf("refusing to delete %s without --yes", id)
		}
		confirmed := false
		err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s from the repository?", id)).
				Description("The week file is removed with a commit. This cannot be undone here.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&confirmed),
		)).Run()
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.println("Delete cancelled.")
			return nil
		}
	}

	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	sess.Begin(id)
	if err := sess.Delete(context.Background()); err != nil {
		return err
	}
	ctx.printf("✓ Deleted %s.\n", id)
	return nil
}

type HistoryCmd struct {
	Week  string `short:"w" help:"Only show events for this week."`
	Limit int    `short:"n" help:"Number of events to show." default:"20"`
}

func (c *HistoryCmd) Run(ctx *Context) error {
	week := ""
	if c.Week != "" {
		id, err := ctx.ResolveWeek(c.Week)
		if err != nil {
			return err
		}
		week = id.String()
	}

	events, err := ctx.Store.ListSyncEvents(context.Background(), week, c.Limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		ctx.println("No sync history.")
		return nil
	}

	loc := ctx.Location()
	for _, e := range events {
		mark := "✓"
		switch e.Status {
		case sqlite.StatusConflict:
			mark = "⚠"
		case sqlite.StatusFailed:
			mark = "❌"
		case sqlite.StatusNotFound:
			mark = "⊘"
		}
		line := fmt.Sprintf("%s %s  %-8s %-6s %s", mark, e.At.In(loc).Format("2006-01-02 15:04:05"), e.Week, e.Action, e.Status)
		if e.Detail != "" {
			line += "  " + e.Detail
		}
		ctx.println(line)
	}
	return nil
}
