package cli

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/weekdiary/internal/lock"
	"github.com/julianstephens/weekdiary/internal/logger"
	"github.com/julianstephens/weekdiary/internal/tui"
)

type TuiCmd struct {
	Week string `arg:"" optional:"" help:"Week to open (YYYY-Www, YYYY-MM-DD, today, next, prev)."`
}

func (c *TuiCmd) Run(ctx *Context) error {
	id, err := ctx.ResolveWeek(c.Week)
	if err != nil {
		return err
	}

	editorLock, err := lock.Acquire(filepath.Dir(ctx.Store.GetConfigPath()))
	if err != nil {
		return err
	}
	defer func() {
		if err := editorLock.Release(); err != nil {
			logger.Warn("Failed to release editor lock", "error", err)
		}
	}()

	ctx.PerformAutomaticBackup()

	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	model := tui.New(tui.Options{
		Session:            sess,
		Settings:           ctx.Store,
		Week:               id,
		AutosaveInterval:   settings.AutosaveInterval,
		ShowParentsComment: settings.ShowParentsComment,
		Location:           settings.Location(),
	})

	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("editor failed: %w", err)
	}
	if m, ok := final.(tui.Model); ok && m.Session().Dirty() {
		ctx.printf("⚠ %s has unsaved changes; they are kept locally. Run 'weekdiary push' to upload them.\n", m.Session().Week())
	}
	return nil
}
