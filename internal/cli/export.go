package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/atotto/clipboard"

	"github.com/julianstephens/weekdiary/internal/diary"
	"github.com/julianstephens/weekdiary/internal/models"
	"github.com/julianstephens/weekdiary/internal/tui/components/preview"
)

const (
	kindEval       = "eval"
	kindReflection = "reflection"
	kindBoth       = "both"
)

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

type ExportTSVCmd struct {
	Week string `arg:"" optional:"" help:"Week to export."`
	Kind string `help:"What to export." enum:"eval,reflection,both" default:"eval"`
	Copy bool   `help:"Copy to the clipboard instead of printing."`
	Out  string `short:"o" type:"path" help:"Write to this file instead of printing."`
}

func (c *ExportTSVCmd) Run(ctx *Context) error {
	sess, err := ctx.OpenWeek(context.Background(), c.Week)
	if err != nil {
		return err
	}
	text := renderTSV(sess.Record(), c.Kind)

	switch {
	case c.Copy:
		if err := copyToClipboard(text); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		ctx.printf("✓ %s copied to clipboard.\n", sess.Week())
	case c.Out != "":
		if err := os.WriteFile(c.Out, []byte(text+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", c.Out, err)
		}
		ctx.printf("✓ Wrote %s\n", c.Out)
	default:
		ctx.println(text)
	}
	return nil
}

func renderTSV(rec *models.WeekRecord, kind string) string {
	switch kind {
	case kindReflection:
		return diary.ReflectionTSV(rec)
	case kindBoth:
		return diary.EvaluationTSV(rec) + "\n\n" + diary.ReflectionTSV(rec)
	default:
		return diary.EvaluationTSV(rec)
	}
}

type ExportJSONCmd struct {
	Week string `arg:"" optional:"" help:"Week to export."`
	Out  string `short:"o" type:"path" help:"Write to this file instead of printing."`
}

// Run writes the week in the repository file format.
func (c *ExportJSONCmd) Run(ctx *Context) error {
	sess, err := ctx.OpenWeek(context.Background(), c.Week)
	if err != nil {
		return err
	}
	data, err := models.EncodeWeek(sess.Record())
	if err != nil {
		return err
	}
	if c.Out == "" {
		ctx.println(string(data))
		return nil
	}
	if err := os.WriteFile(c.Out, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Out, err)
	}
	ctx.printf("✓ Wrote %s\n", c.Out)
	return nil
}

type PreviewCmd struct {
	Week string `arg:"" optional:"" help:"Week to preview."`
}

func (c *PreviewCmd) Run(ctx *Context) error {
	sess, err := ctx.OpenWeek(context.Background(), c.Week)
	if err != nil {
		return err
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	ctx.println(preview.Render(diary.NewTable(sess.Record()), preview.Options{
		ShowParentsComment: settings.ShowParentsComment,
	}))
	return nil
}
