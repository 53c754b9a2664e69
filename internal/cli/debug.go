package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/weekdiary/internal/logger"
	"github.com/julianstephens/weekdiary/internal/models"
	"github.com/julianstephens/weekdiary/internal/storage"
)

type DebugCmd struct {
	DBPath   DebugDBPathCmd   `cmd:"" help:"Show database path."`
	DumpWeek DebugDumpWeekCmd `cmd:"" help:"Dump the local copy of a week as JSON."`
	Mirror   DebugMirrorCmd   `cmd:"" help:"List local copies and their sync state."`
	Logs     DebugLogsCmd     `cmd:"" help:"Show recent log lines from this process."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	output := map[string]string{
		"path": ctx.Store.GetConfigPath(),
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.println(string(jsonBytes))
	return nil
}

type DebugDumpWeekCmd struct {
	Week string `arg:"" help:"Week to dump (YYYY-Www, YYYY-MM-DD or 'today')."`
}

func (cmd DebugDumpWeekCmd) Run(ctx *Context) error {
	id, err := ctx.ResolveWeek(cmd.Week)
	if err != nil {
		return err
	}

	rec, rev, err := ctx.Store.Load(context.Background(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no local copy found for week: %s", id)
		}
		return fmt.Errorf("failed to get week: %w", err)
	}

	body, err := models.EncodeWeek(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal week: %w", err)
	}
	logger.Debug("Dumped local copy", "week", id.String(), "revision", string(rev))
	ctx.println(string(body))
	return nil
}

type DebugMirrorCmd struct{}

func (cmd *DebugMirrorCmd) Run(ctx *Context) error {
	entries, err := ctx.Store.Entries(context.Background())
	if err != nil {
		return err
	}

	type row struct {
		Week           string `json:"week"`
		Revision       string `json:"revision"`
		RemoteRevision string `json:"remoteRevision"`
		Dirty          bool   `json:"dirty"`
		SavedAt        string `json:"savedAt"`
	}
	rows := make([]row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, row{
			Week:           e.Week.String(),
			Revision:       string(e.Revision),
			RemoteRevision: string(e.RemoteRevision),
			Dirty:          e.Dirty,
			SavedAt:        e.SavedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	jsonBytes, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.println(string(jsonBytes))
	return nil
}

type DebugLogsCmd struct {
	Lines int `short:"n" help:"Number of lines." default:"50"`
}

func (cmd *DebugLogsCmd) Run(ctx *Context) error {
	for _, line := range logger.Recent(cmd.Lines) {
		ctx.println(line)
	}
	return nil
}
