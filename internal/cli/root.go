package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/julianstephens/weekdiary/internal/backup"
	"github.com/julianstephens/weekdiary/internal/constants"
	"github.com/julianstephens/weekdiary/internal/isoweek"
	"github.com/julianstephens/weekdiary/internal/keyring"
	"github.com/julianstephens/weekdiary/internal/logger"
	"github.com/julianstephens/weekdiary/internal/models"
	"github.com/julianstephens/weekdiary/internal/session"
	"github.com/julianstephens/weekdiary/internal/storage"
	"github.com/julianstephens/weekdiary/internal/storage/github"
	"github.com/julianstephens/weekdiary/internal/storage/jsonfs"
	"github.com/julianstephens/weekdiary/internal/storage/sqlite"
)

// Context is shared by every command.
type Context struct {
	Store *sqlite.Store

	// LocalDir, when set, replaces GitHub with a directory of week files.
	LocalDir string

	Out io.Writer
	Now func() time.Time

	remote storage.WeekStore
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Remote returns the week store commands read from and write to.
func (c *Context) Remote() (storage.WeekStore, error) {
	if c.remote != nil {
		return c.remote, nil
	}

	if c.LocalDir != "" {
		store := jsonfs.NewStore(c.LocalDir)
		if err := store.Init(); err != nil {
			return nil, err
		}
		c.remote = store
		return store, nil
	}

	settings, err := c.Store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if !settings.Configured() {
		return nil, fmt.Errorf("no repository configured; run 'weekdiary config set owner <name>' and 'weekdiary config set repo <name>'")
	}
	token, source, err := keyring.ResolveToken()
	if err != nil {
		return nil, fmt.Errorf("no GitHub token available: %w", err)
	}
	logger.Debug("Using GitHub token", "source", source)

	client, err := github.New(github.Config{
		Owner:             settings.RepoOwner,
		Repo:              settings.RepoName,
		Branch:            settings.Branch,
		Dir:               settings.DataDir,
		Token:             token,
		MaxRetries:        constants.GitHubMaxRetries,
		InitialBackoff:    constants.GitHubInitialBackoff,
		RequestsPerSecond: constants.GitHubRequestsPerSec,
	})
	if err != nil {
		return nil, err
	}
	c.remote = client
	return client, nil
}

// SetRemote overrides the remote store.
func (c *Context) SetRemote(store storage.WeekStore) {
	c.remote = store
}

// Session returns a session over the remote with the local database as
// mirror, settings store and item cache.
func (c *Context) Session() (*session.Session, error) {
	remote, err := c.Remote()
	if err != nil {
		return nil, err
	}
	return session.New(session.Options{
		Remote:             remote,
		Local:              c.Store,
		Settings:           c.Store,
		AutosaveOnNavigate: true,
	}), nil
}

// Location is the configured time zone.
func (c *Context) Location() *time.Location {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return time.Local
	}
	return settings.Location()
}

// ResolveWeek interprets a week reference in the configured time zone.
func (c *Context) ResolveWeek(ref string) (isoweek.WeekID, error) {
	return isoweek.Resolve(ref, c.now().In(c.Location()))
}

// OpenWeek resolves ref and loads it into a new session.
func (c *Context) OpenWeek(ctx context.Context, ref string) (*session.Session, error) {
	id, err := c.ResolveWeek(ref)
	if err != nil {
		return nil, err
	}
	sess, err := c.Session()
	if err != nil {
		return nil, err
	}
	if err := sess.Open(ctx, id); err != nil {
		return nil, err
	}
	return sess, nil
}

// EditWeek opens a week, applies edit and saves the result.
func (c *Context) EditWeek(ref string, edit func(*session.Session) error) (*session.Session, error) {
	ctx := context.Background()
	sess, err := c.OpenWeek(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := edit(sess); err != nil {
		return nil, err
	}
	if err := sess.Save(ctx); err != nil {
		return sess, err
	}
	return sess, nil
}

// Interactive reports whether stdin is a terminal.
func Interactive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

var dayAliases = map[string]int{
	"mon": 0, "monday": 0, "月": 0,
	"tue": 1, "tuesday": 1, "火": 1,
	"wed": 2, "wednesday": 2, "水": 2,
	"thu": 3, "thursday": 3, "木": 3,
	"fri": 4, "friday": 4, "金": 4,
	"sat": 5, "saturday": 5, "土": 5,
	"sun": 6, "sunday": 6, "日": 6,
}

// ParseDay turns a day reference into an index within week id: a weekday
// name, 1-7 with Monday as 1, "today", or a YYYY-MM-DD date in the week.
func ParseDay(s string, id isoweek.WeekID, now time.Time) (int, error) {
	ref := strings.ToLower(strings.TrimSpace(s))
	if idx, ok := dayAliases[ref]; ok {
		return idx, nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > constants.DaysPerWeek {
			return 0, fmt.Errorf("day number must be 1-7 (Monday is 1), got %d", n)
		}
		return n - 1, nil
	}

	var date time.Time
	if ref == "today" {
		date = now
	} else {
		d, err := time.ParseInLocation(constants.DateFormat, ref, now.Location())
		if err != nil {
			return 0, fmt.Errorf("invalid day: %s", s)
		}
		date = d
	}
	if !id.Contains(date) {
		return 0, fmt.Errorf("%s is not in week %s", date.Format(constants.DateFormat), id)
	}
	return -isoweek.MondayOffset(int(date.Weekday())), nil
}

// ResolveItem finds an item by exact label or 1-based position.
func ResolveItem(rec *models.WeekRecord, ref string) (int, error) {
	for i, item := range rec.Items {
		if item == ref {
			return i, nil
		}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(ref)); err == nil {
		if n < 1 || n > len(rec.Items) {
			return 0, fmt.Errorf("item number must be 1-%d, got %d", len(rec.Items), n)
		}
		return n - 1, nil
	}
	return 0, fmt.Errorf("unknown item: %s", ref)
}
