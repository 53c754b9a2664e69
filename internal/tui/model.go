// Package tui is the interactive week editor.
package tui

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/weekdiary/internal/constants"
	"github.com/julianstephens/weekdiary/internal/diary"
	"github.com/julianstephens/weekdiary/internal/isoweek"
	"github.com/julianstephens/weekdiary/internal/session"
	"github.com/julianstephens/weekdiary/internal/storage"
	"github.com/julianstephens/weekdiary/internal/tui/components/grid"
	"github.com/julianstephens/weekdiary/internal/tui/components/itemlist"
)

type SessionState int

const (
	StateWeek SessionState = iota
	StateItems
	StatePreview
	StateEditing
)

var tabTitles = []string{"Week", "Items", "Preview"}

// editKind says what a completed form applies to.
type editKind int

const (
	editGoal editKind = iota
	editComment
	editReflection
	editAddItem
	editRenameItem
	editRemoveItem
	editResetItems
)

type Options struct {
	Session  *session.Session
	Settings storage.SettingsStore

	// Week is opened first.
	Week isoweek.WeekID

	AutosaveInterval   time.Duration
	ShowParentsComment bool
	Location           *time.Location

	// Clipboard receives copied TSV. Defaults to the system clipboard.
	Clipboard func(string) error
}

type Model struct {
	sess     *session.Session
	settings storage.SettingsStore
	loc      *time.Location
	copyFn   func(string) error

	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model
	grid          grid.Model
	items         itemlist.Model

	form      *huh.Form
	edit      editKind
	editIndex int
	input     *string
	confirm   *bool

	autosave    time.Duration
	loading     bool
	saving      bool
	pendingNav  *isoweek.WeekID
	navErr      error
	quitPending bool
	quitting    bool

	showComment bool
	showLogs    bool
	status      string
	statusErr   bool

	width  int
	height int
}

func New(opts Options) Model {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	interval := opts.AutosaveInterval
	if interval <= 0 {
		interval = constants.DefaultAutosaveInterval
	}

	opts.Session.Begin(opts.Week)

	return Model{
		sess:        opts.Session,
		settings:    opts.Settings,
		loc:         loc,
		copyFn:      copyFn,
		state:       StateWeek,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		grid:        grid.New(0, 0),
		items:       itemlist.New(nil, 0, 0),
		autosave:    interval,
		loading:     true,
		showComment: opts.ShowParentsComment,
		input:       new(string),
		confirm:     new(bool),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(m.sess.Week()), m.tick())
}

// Session exposes the underlying session, mainly for callers that want to
// inspect state after the program exits.
func (m Model) Session() *session.Session {
	return m.sess
}

// refresh re-projects the open week into the grid and item list.
func (m *Model) refresh() {
	rec := m.sess.Record()
	if rec == nil {
		return
	}
	t := diary.NewTable(rec)
	m.grid.SetTable(t)
	m.items.SetRows(t.Rows)
}

func (m *Model) setStatus(msg string) {
	m.status = msg
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = describeError(err)
	m.statusErr = true
}
