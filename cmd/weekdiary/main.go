package main

import (
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/weekdiary/internal/cli"
	"github.com/julianstephens/weekdiary/internal/constants"
	"github.com/julianstephens/weekdiary/internal/errors"
	"github.com/julianstephens/weekdiary/internal/logger"
	"github.com/julianstephens/weekdiary/internal/storage/sqlite"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Database path." type:"path" default:"${defaultConfig}" env:"WEEKDIARY_CONFIG"`
	Debug    bool   `help:"Log debug output to stderr."`
	LocalDir string `help:"Read and write week files in this directory instead of GitHub." type:"path"`

	Init           cli.InitCmd           `cmd:"" help:"Initialize weekdiary storage."`
	ConfigCmd      ConfigCmds            `cmd:"" name:"config" help:"Show or change settings."`
	TestConnection cli.TestConnectionCmd `cmd:"" help:"Check that the diary repository is reachable."`
	Tui            cli.TuiCmd            `cmd:"" help:"Launch the interactive editor." default:"withargs"`
	Week           struct {
		Show    cli.WeekShowCmd    `cmd:"" help:"Print a week file."`
		Goal    cli.WeekGoalCmd    `cmd:"" help:"Set the week's goal."`
		Comment cli.WeekCommentCmd `cmd:"" help:"Set the parents' comment."`
	} `cmd:"" help:"Show or edit a week."`
	Mark    cli.MarkCmd    `cmd:"" help:"Record a response for one item on one day."`
	Reflect cli.ReflectCmd `cmd:"" help:"Write a day's reflection."`
	Day     cli.DayCmd     `cmd:"" help:"Show one day."`
	Item    struct {
		List   cli.ItemListCmd   `cmd:"" help:"List evaluation items."`
		Add    cli.ItemAddCmd    `cmd:"" help:"Add an evaluation item."`
		Rename cli.ItemRenameCmd `cmd:"" help:"Rename an evaluation item."`
		Remove cli.ItemRemoveCmd `cmd:"" help:"Remove an evaluation item and its responses."`
		Reset  cli.ItemResetCmd  `cmd:"" help:"Restore the default evaluation items."`
	} `cmd:"" help:"Manage evaluation items."`
	Pull   cli.PullCmd   `cmd:"" help:"Download weeks into the local copy."`
	Push   cli.PushCmd   `cmd:"" help:"Upload weeks with unsaved local changes."`
	Delete cli.DeleteCmd `cmd:"" help:"Delete a week from the repository."`
	Export struct {
		TSV  cli.ExportTSVCmd  `cmd:"" name:"tsv" help:"Export a week as tab separated text."`
		JSON cli.ExportJSONCmd `cmd:"" name:"json" help:"Export a week file."`
	} `cmd:"" help:"Export a week."`
	Preview  cli.PreviewCmd  `cmd:"" help:"Render a week as tables."`
	History  cli.HistoryCmd  `cmd:"" help:"Show recent sync events."`
	Validate cli.ValidateCmd `cmd:"" help:"Check stored week files for problems."`
	Backup   struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a database backup."`
		List    cli.BackupListCmd    `cmd:"" help:"List backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore a backup."`
	} `cmd:"" help:"Manage database backups."`
	Doctor   cli.DoctorCmd `cmd:"" help:"Run health checks."`
	DebugCmd cli.DebugCmd  `cmd:"" name:"debug" help:"Debugging helpers."`
}

type ConfigCmds struct {
	Show  cli.ConfigShowCmd  `cmd:"" help:"Show settings." default:"1"`
	Set   cli.ConfigSetCmd   `cmd:"" help:"Change a setting."`
	Token cli.ConfigTokenCmd `cmd:"" help:"Store the GitHub token in the system keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Weekly habit diary kept as JSON files in a GitHub repository"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{
			"version":       constants.Version,
			"defaultConfig": constants.DefaultConfigPath,
		},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: filepath.Dir(CLI.Config)}); err != nil {
		errors.Fatalf("failed to initialize logger: %v", err)
	}

	store := sqlite.NewStore(CLI.Config)
	if ctx.Command() != "init" {
		if err := store.Open(); err != nil {
			errors.Fatal(err)
		}
	}
	defer store.Close()

	appCtx := &cli.Context{
		Store:    store,
		LocalDir: CLI.LocalDir,
	}
	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		errors.Fatal(err)
	}
}
