package cli

import (
	"context"

	"github.com/julianstephens/weekdiary/internal/session"
)

type ItemListCmd struct {
	Week string `short:"w" help:"Week to list items for." default:"today"`
}

func (c *ItemListCmd) Run(ctx *Context) error {
	sess, err := ctx.OpenWeek(context.Background(), c.Week)
	if err != nil {
		return err
	}
	rec := sess.Record()
	ctx.printf("Evaluation items for %s (%d):\n", rec.Week, len(rec.Items))
	for i, item := range rec.Items {
		ctx.printf("  %2d. %s\n", i+1, item)
	}
	return nil
}

type ItemAddCmd struct {
	Label string `arg:"" help:"New item label."`
	Week  string `short:"w" help:"Week to edit." default:"today"`
}

func (c *ItemAddCmd) Run(ctx *Context) error {
	sess, err := ctx.EditWeek(c.Week, func(s *session.Session) error {
		return s.AddItem(c.Label)
	})
	if err != nil {
		return err
	}
	ctx.printf("✓ Added item %d to %s.\n", len(sess.Record().Items), sess.Week())
	return nil
}

type ItemRenameCmd struct {
	Item  string `arg:"" help:"Item label or number."`
	Label string `arg:"" help:"New label."`
	Week  string `short:"w" help:"Week to edit." default:"today"`
}

func (c *ItemRenameCmd) Run(ctx *Context) error {
	var old string
	sess, err := ctx.EditWeek(c.Week, func(s *session.Session) error {
		idx, err := ResolveItem(s.Record(), c.Item)
		if err != nil {
			return err
		}
		old = s.Record().Items[idx]
		return s.RenameItem(idx, c.Label)
	})
	if err != nil {
		return err
	}
	ctx.printf("✓ Renamed %q in %s.\n", old, sess.Week())
	return nil
}

type ItemRemoveCmd struct {
	Item string `arg:"" help:"Item label or number."`
	Week string `short:"w" help:"Week to edit." default:"today"`
}

func (c *ItemRemoveCmd) Run(ctx *Context) error {
	var removed string
	sess, err := ctx.EditWeek(c.Week, func(s *session.Session) error {
		idx, err := ResolveItem(s.Record(), c.Item)
		if err != nil {
			return err
		}
		removed, err = s.RemoveItem(idx)
		return err
	})
	if err != nil {
		return err
	}
	ctx.printf("✓ Removed %q and its responses from %s.\n", removed, sess.Week())
	return nil
}

type ItemResetCmd struct {
	Week string `short:"w" help:"Week to edit." default:"today"`
}

func (c *ItemResetCmd) Run(ctx *Context) error {
	sess, err := ctx.EditWeek(c.Week, func(s *session.Session) error {
		return s.ResetItems()
	})
	if err != nil {
		return err
	}
	ctx.printf("✓ Restored the %d default items for %s.\n", len(sess.Record().Items), sess.Week())
	return nil
}
