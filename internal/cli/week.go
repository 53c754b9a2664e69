package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/weekdiary/internal/models"
	"github.com/julianstephens/weekdiary/internal/session"
)

type TestConnectionCmd struct {
	Timeout time.Duration `help:"Give up after this long." default:"15s"`
}

func (c *TestConnectionCmd) Run(ctx *Context) error {
	remote, err := ctx.Remote()
	if err != nil {
		return err
	}

	bg, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	start := time.Now()
	if err := remote.Ping(bg); err != nil {
		ctx.println("❌ Connection failed")
		return err
	}
	ctx.printf("✓ Connection OK (%s)\n", time.Since(start).Round(time.Millisecond))
	return nil
}

type WeekShowCmd struct {
	Week string `arg:"" optional:"" help:"Week to show (YYYY-Www, YYYY-MM-DD, today, next, prev)."`
}

// Run prints the week file exactly as it is stored.
func (c *WeekShowCmd) Run(ctx *Context) error {
	sess, err := ctx.OpenWeek(context.Background(), c.Week)
	if err != nil {
		return err
	}
	data, err := models.EncodeWeek(sess.Record())
	if err != nil {
		return err
	}
	ctx.println(string(data))
	return nil
}

type WeekGoalCmd struct {
	Goal string `arg:"" help:"The week's goal. Use \"\" to clear it."`
	Week string `short:"w" help:"Week to edit." default:"today"`
}

func (c *WeekGoalCmd) Run(ctx *Context) error {
	sess, err := ctx.EditWeek(c.Week, func(s *session.Session) error {
		return s.SetGoal(c.Goal)
	})
	if err != nil {
		return err
	}
	ctx.printf("✓ Goal for %s saved.\n", sess.Week())
	return nil
}

type WeekCommentCmd struct {
	Comment string `arg:"" help:"The parents' comment. Use \"\" to clear it."`
	Week    string `short:"w" help:"Week to edit." default:"today"`
}

func (c *WeekCommentCmd) Run(ctx *Context) error {
	sess, err := ctx.EditWeek(c.Week, func(s *session.Session) error {
		return s.SetParentsComment(c.Comment)
	})
	if err != nil {
		return err
	}
	ctx.printf("✓ Parents' comment for %s saved.\n", sess.Week())
	return nil
}

type MarkCmd struct {
	Day    string `arg:"" help:"Day: mon..sun, 月..日, 1-7, today or YYYY-MM-DD."`
	Item   string `arg:"" help:"Item label or number (see 'item list')."`
	Symbol string `arg:"" help:"o/⭕️ success, x/✖️ failure, t/△ partial, - to clear."`
	Week   string `short:"w" help:"Week to edit." default:"today"`
}

func (c *MarkCmd) Run(ctx *Context) error {
	value, ok := models.ParseResponse(c.Symbol)
	if !ok {
		return fmt.Errorf("unknown symbol %q (use o, x, t or -)", c.Symbol)
	}

	var day int
	var label string
	sess, err := ctx.EditWeek(c.Week, func(s *session.Session) error {
		var err error
		day, err = ParseDay(c.Day, s.Week(), ctx.now().In(ctx.Location()))
		if err != nil {
			return err
		}
		idx, err := ResolveItem(s.Record(), c.Item)
		if err != nil {
			return err
		}
		label = s.Record().Items[idx]
		return s.SetResponse(day, label, value)
	})
	if err != nil {
		return err
	}
	ctx.printf("✓ %s %s: %s = %s\n", sess.Week(), sess.Record().Days[day].Date, label, value.Label())
	return nil
}

type ReflectCmd struct {
	Day  string `arg:"" help:"Day: mon..sun, 月..日, 1-7, today or YYYY-MM-DD."`
	Text string `arg:"" help:"Reflection text. Use \"\" to clear it."`
	Week string `short:"w" help:"Week to edit." default:"today"`
}

func (c *ReflectCmd) Run(ctx *Context) error {
	var day int
	sess, err := ctx.EditWeek(c.Week, func(s *session.Session) error {
		var err error
		day, err = ParseDay(c.Day, s.Week(), ctx.now().In(ctx.Location()))
		if err != nil {
			return err
		}
		return s.SetReflection(day, c.Text)
	})
	if err != nil {
		return err
	}
	ctx.printf("✓ Reflection for %s saved.\n", sess.Record().Days[day].Date)
	return nil
}
