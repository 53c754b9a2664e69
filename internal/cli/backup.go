package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/weekdiary/internal/backup"
	"github.com/julianstephens/weekdiary/internal/constants"
	"github.com/julianstephens/weekdiary/internal/logger"
)

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	path, err := mgr.Create()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.printf("✓ Backup created: %s\n", path)
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.println("No backups found.")
		ctx.printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	ctx.printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), constants.MaxBackups)
	for i, b := range backups {
		ctx.printf("  %2d. %s  %s  (%.1f KB)\n", i+1, b.Timestamp.Local().Format("2006-01-02 15:04:05"), b.Name, float64(b.Size)/1024.0)
	}
	ctx.printf("\nBackup directory: %s\n", mgr.Dir())
	return nil
}

type BackupRestoreCmd struct {
	Backup string `arg:"" optional:"" help:"Backup to restore: 'latest', its number in 'backup list', a file name or a path." default:"latest"`
	Yes    bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *BackupRestoreCmd) Run(ctx *Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	info, err := mgr.Find(c.Backup)
	if err != nil {
		return err
	}

	if !c.Yes {
		if !Interactive() {
			return fmt.Errorf("refusing to restore without --yes")
		}
		confirmed := false
		err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Restore %s?", info.Name)).
				Description("The current database is replaced. A safety backup is taken first.").
				Affirmative("Restore").
				Negative("Cancel").
				Value(&confirmed),
		)).Run()
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.println("Restore cancelled.")
			return nil
		}
	}

	if err := ctx.Store.Close(); err != nil {
		logger.Warn("Failed to close database before restore", "error", err)
	}

	safety, err := mgr.Restore(info.Path)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	ctx.printf("✓ Restored %s\n", info.Name)
	if safety != "" {
		ctx.printf("  Previous database saved as %s\n", safety)
	}
	ctx.println("Restart any running weekdiary sessions to use the restored database.")
	return nil
}
