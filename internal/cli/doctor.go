package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/weekdiary/internal/backup"
	"github.com/julianstephens/weekdiary/internal/keyring"
	"github.com/julianstephens/weekdiary/internal/storage"
)

type DoctorCmd struct {
	Offline bool          `help:"Skip the repository connection check."`
	Timeout time.Duration `help:"Timeout for the repository connection check." default:"15s"`
}

type checkResult int

const (
	checkOK checkResult = iota
	checkWarn
	checkFail
	checkSkip
)

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	hasError := false
	report := func(name string, res checkResult, err error) {
		switch res {
		case checkOK:
			ctx.printf("✓ %s: OK\n", name)
		case checkWarn:
			ctx.printf("⚠ %s: WARNING\n", name)
		case checkFail:
			ctx.printf("❌ %s: FAIL\n", name)
			hasError = true
		case checkSkip:
			ctx.printf("⊘ %s: SKIPPED\n", name)
		}
		if err != nil {
			ctx.printf("   %v\n", err)
		}
	}

	dbErr := checkDBReachable(ctx)
	if dbErr != nil {
		report("Database reachable", checkFail, dbErr)
	} else {
		report("Database reachable", checkOK, nil)
	}

	if dbErr != nil {
		report("Schema version", checkSkip, nil)
		report("Local copies", checkSkip, nil)
	} else {
		if err := checkSchema(ctx); err != nil {
			report("Schema version", checkFail, err)
		} else {
			report("Schema version", checkOK, nil)
		}
		if pending, err := checkLocalCopies(ctx); err != nil {
			report("Local copies", checkFail, err)
		} else if pending > 0 {
			report("Local copies", checkWarn, fmt.Errorf("%d week(s) not pushed; run 'weekdiary push'", pending))
		} else {
			report("Local copies", checkOK, nil)
		}
	}

	if err := checkBackupsPresent(ctx); err != nil {
		report("Backups present", checkWarn, err)
	} else {
		report("Backups present", checkOK, nil)
	}

	tokenRes, tokenErr := checkToken(ctx)
	report("GitHub token", tokenRes, tokenErr)

	switch {
	case cmd.Offline:
		report("Repository connection", checkSkip, nil)
	case tokenRes == checkFail && ctx.LocalDir == "":
		report("Repository connection", checkSkip, fmt.Errorf("no token"))
	default:
		if err := checkRemote(ctx, cmd.Timeout); err != nil {
			report("Repository connection", checkFail, err)
		} else {
			report("Repository connection", checkOK, nil)
		}
	}

	if err := checkClockTimezone(ctx); err != nil {
		report("Clock/timezone", checkFail, err)
	} else {
		report("Clock/timezone", checkOK, nil)
	}

	ctx.println()
	if hasError {
		ctx.println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *Context) error {
	if err := ctx.Store.Ping(context.Background()); err != nil {
		return err
	}
	var result int
	if err := ctx.Store.GetDB().QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchema(ctx *Context) error {
	st, err := ctx.Store.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if st.Current > st.Latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", st.Current, st.Latest)
	}
	if len(st.Pending) > 0 {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", st.Current, st.Latest)
	}
	return nil
}

// checkLocalCopies decodes every mirrored week and counts unpushed ones.
func checkLocalCopies(ctx *Context) (int, error) {
	bg := context.Background()
	entries, err := ctx.Store.Entries(bg)
	if err != nil {
		return 0, err
	}
	pending := 0
	for _, e := range entries {
		if _, _, err := ctx.Store.Load(bg, e.Week); err != nil {
			return pending, fmt.Errorf("%s: %w", e.Week, err)
		}
		if e.Dirty {
			pending++
		}
	}
	return pending, nil
}

func checkBackupsPresent(ctx *Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'weekdiary backup create'")
	}
	return nil
}

func checkToken(ctx *Context) (checkResult, error) {
	if ctx.LocalDir != "" {
		return checkSkip, fmt.Errorf("using local directory %s", ctx.LocalDir)
	}
	_, source, err := keyring.ResolveToken()
	switch {
	case err == nil:
		return checkOK, fmt.Errorf("from %s", source)
	case errors.Is(err, keyring.ErrNotFound):
		return checkFail, fmt.Errorf("not set; run 'weekdiary config token'")
	default:
		return checkFail, err
	}
}

func checkRemote(ctx *Context, timeout time.Duration) error {
	remote, err := ctx.Remote()
	if err != nil {
		return err
	}
	bg, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := remote.Ping(bg); err != nil {
		if storage.IsAuth(err) {
			return fmt.Errorf("token rejected or lacks write access: %w", err)
		}
		return err
	}
	return nil
}

func checkClockTimezone(ctx *Context) error {
	now := ctx.now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	if settings.Timezone != "" && settings.Timezone != "Local" {
		if _, err := time.LoadLocation(settings.Timezone); err != nil {
			return fmt.Errorf("configured timezone %q is unknown", settings.Timezone)
		}
	}
	return nil
}
