package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/weekdiary/internal/constants"
	"github.com/julianstephens/weekdiary/internal/diary"
	"github.com/julianstephens/weekdiary/internal/isoweek"
	"github.com/julianstephens/weekdiary/internal/logger"
	"github.com/julianstephens/weekdiary/internal/models"
	"github.com/julianstephens/weekdiary/internal/session"
	"github.com/julianstephens/weekdiary/internal/storage"
	"github.com/julianstephens/weekdiary/internal/tui/components/itemlist"
)

type loadedMsg struct {
	res session.LoadResult
}

type savedMsg struct {
	res session.SaveResult
}

type autosaveTickMsg struct{}

// fetch loads id off the event loop. Only the stores are touched there.
func (m Model) fetch(id isoweek.WeekID) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), constants.GitHubRequestTimeout)
		defer cancel()
		return loadedMsg{res: sess.Fetch(ctx, id)}
	}
}

// fetchRemote loads id ignoring unpushed local edits.
func (m Model) fetchRemote(id isoweek.WeekID) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), constants.GitHubRequestTimeout)
		defer cancel()
		return loadedMsg{res: sess.FetchRemote(ctx, id)}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.autosave, func(time.Time) tea.Msg { return autosaveTickMsg{} })
}

// startSave snapshots the open week and pushes it off the event loop.
func (m *Model) startSave(force bool) tea.Cmd {
	if m.saving {
		return nil
	}
	req, err := m.sess.Snapshot()
	if err != nil {
		m.setError(err)
		return nil
	}
	if force {
		req.Expected = ""
	}
	m.saving = true
	m.setStatus("Saving...")

	sess := m.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), constants.GitHubRequestTimeout)
		defer cancel()
		return savedMsg{res: sess.Push(ctx, req)}
	}
}

// open switches to id without saving the current week.
func (m *Model) open(id isoweek.WeekID) tea.Cmd {
	m.sess.Begin(id)
	m.loading = true
	m.setStatus("Loading " + id.String() + "...")
	return m.fetch(id)
}

// goTo switches weeks, saving first when the open week has unsaved content.
func (m *Model) goTo(id isoweek.WeekID) tea.Cmd {
	if m.saving || m.sess.ShouldAutosave() {
		m.pendingNav = &id
		if m.saving {
			return nil
		}
		return m.startSave(false)
	}
	return m.open(id)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.grid.SetSize(msg.Width-4, msg.Height-10)
		m.items.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case loadedMsg:
		return m.handleLoaded(msg)

	case savedMsg:
		return m.handleSaved(msg)

	case autosaveTickMsg:
		var save tea.Cmd
		if !m.saving && !m.loading && m.sess.ShouldAutosave() {
			logger.Debug("Autosaving", "week", m.sess.Week().String())
			save = m.startSave(false)
		}
		return m, tea.Batch(save, m.tick())

	case itemlist.AddItemMsg:
		return m, m.openInput(editAddItem, 0, "New evaluation item", "")
	case itemlist.RenameItemMsg:
		return m, m.openInput(editRenameItem, msg.Index, "Rename item", msg.Label)
	case itemlist.RemoveItemMsg:
		return m, m.openConfirm(editRemoveItem, msg.Index, fmt.Sprintf("Remove %q and its answers?", msg.Label))
	case itemlist.ResetItemsMsg:
		return m, m.openConfirm(editResetItems, 0, "Replace this week's items with the defaults?")
	}

	if m.state == StateEditing {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if next, cmd, handled := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
		switch m.state {
		case StateWeek:
			return m.handleWeekKey(msg)
		case StateItems:
			var cmd tea.Cmd
			m.items, cmd = m.items.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	err := m.sess.Apply(context.Background(), msg.res)
	if errors.Is(err, session.ErrStaleResult) {
		return m, nil
	}
	m.loading = false
	if err != nil {
		m.navErr = nil
		m.setError(err)
		return m, nil
	}

	m.refresh()
	switch {
	case m.navErr != nil:
		// the week we left failed to save; keep saying so
		m.setError(m.navErr)
		m.navErr = nil
	case msg.res.Offline:
		m.status = "Offline: showing the local copy. Changes are kept locally until saved."
		m.statusErr = true
	case msg.res.Pending:
		m.status = "Restored unpushed edits for " + m.sess.Week().String() + ". s: save, L: discard them."
		m.statusErr = true
	case m.sess.Revision() == "":
		m.setStatus("New week " + m.sess.Week().String())
	default:
		m.setStatus("Loaded " + m.sess.Week().String())
	}
	return m, nil
}

func (m Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	m.saving = false
	err := m.sess.Commit(context.Background(), msg.res)
	switch {
	case errors.Is(err, session.ErrStaleResult):
	case err != nil:
		m.setError(err)
		if m.quitPending {
			m.status += " Press q again to quit without saving."
		}
	default:
		m.setStatus("Saved " + msg.res.Week.String())
		if m.quitPending {
			m.quitting = true
			return m, tea.Quit
		}
	}

	if m.pendingNav != nil {
		id := *m.pendingNav
		m.pendingNav = nil
		if err != nil && !errors.Is(err, session.ErrStaleResult) {
			logger.Warn("Autosave before navigation failed", "week", msg.res.Week.String(), "error", err)
		}
		cmd := m.open(id)
		if err != nil && !errors.Is(err, session.ErrStaleResult) {
			m.navErr = fmt.Errorf("%s kept locally: %w", msg.res.Week, err)
			m.setError(m.navErr)
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) handleGlobalKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if m.state == StateItems && m.items.Filtering() {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.quitPending || !m.sess.ShouldAutosave() {
			m.quitting = true
			return m, tea.Quit, true
		}
		// save once, then quit; a second press quits without saving
		m.quitPending = true
		return m, m.startSave(false), true
	case key.Matches(msg, m.keys.Tab):
		m.state = (m.state + 1) % SessionState(len(tabTitles))
	case key.Matches(msg, m.keys.ShiftTab):
		m.state = (m.state - 1 + SessionState(len(tabTitles))) % SessionState(len(tabTitles))
	case key.Matches(msg, m.keys.PrevWeek):
		return m, m.goTo(m.sess.Week().Prev()), true
	case key.Matches(msg, m.keys.NextWeek):
		return m, m.goTo(m.sess.Week().Next()), true
	case key.Matches(msg, m.keys.Today):
		return m, m.goTo(isoweek.Current(m.loc)), true
	case key.Matches(msg, m.keys.Save):
		return m, m.startSave(false), true
	case key.Matches(msg, m.keys.Overwrite):
		return m, m.startSave(true), true
	case key.Matches(msg, m.keys.Reload):
		if m.saving {
			return m, nil, true
		}
		id := m.sess.Week()
		m.sess.Begin(id)
		m.loading = true
		m.setStatus("Reloading " + id.String() + "...")
		return m, m.fetchRemote(id), true
	case key.Matches(msg, m.keys.ToggleNote):
		m.toggleComment()
	case key.Matches(msg, m.keys.Copy):
		m.copy("Grid", diary.EvaluationTSV)
	case key.Matches(msg, m.keys.CopyNotes):
		m.copy("Reflections", diary.ReflectionTSV)
	case key.Matches(msg, m.keys.Logs):
		m.showLogs = !m.showLogs
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	default:
		return m, nil, false
	}
	return m, nil, true
}

func (m Model) handleWeekKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	_, day := m.grid.Cursor()
	rec := m.sess.Record()

	switch {
	case key.Matches(msg, m.keys.Up):
		m.grid.Move(-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.grid.Move(1, 0)
	case key.Matches(msg, m.keys.Left):
		m.grid.Move(0, -1)
	case key.Matches(msg, m.keys.Right):
		m.grid.Move(0, 1)
	case key.Matches(msg, m.keys.Cycle):
		if rec == nil {
			break
		}
		if m.grid.OnReflection() {
			return m, m.openText(editReflection, day, reflectionTitle(rec, day), rec.Days[day].Reflection)
		}
		if _, item, ok := m.grid.SelectedItem(); ok {
			if _, err := m.sess.CycleResponse(day, item); err != nil {
				m.setError(err)
			}
			m.refresh()
		}
	case key.Matches(msg, m.keys.Clear):
		if rec == nil {
			break
		}
		var err error
		if m.grid.OnReflection() {
			err = m.sess.SetReflection(day, "")
		} else if _, item, ok := m.grid.SelectedItem(); ok {
			err = m.sess.SetResponse(day, item, models.ResponseNone)
		}
		if err != nil {
			m.setError(err)
		}
		m.refresh()
	case key.Matches(msg, m.keys.Reflection):
		if rec != nil {
			return m, m.openText(editReflection, day, reflectionTitle(rec, day), rec.Days[day].Reflection)
		}
	case key.Matches(msg, m.keys.Goal):
		if rec != nil {
			return m, m.openInput(editGoal, 0, "今週の目標", rec.Goal)
		}
	case key.Matches(msg, m.keys.Comment):
		if rec != nil && m.showComment {
			return m, m.openText(editComment, 0, "保護者より", rec.ParentsComment)
		}
	case key.Matches(msg, m.keys.Add):
		if rec != nil {
			return m, m.openInput(editAddItem, 0, "New evaluation item", "")
		}
	case key.Matches(msg, m.keys.Rename):
		if idx, item, ok := m.grid.SelectedItem(); ok {
			return m, m.openInput(editRenameItem, idx, "Rename item", item)
		}
	case key.Matches(msg, m.keys.Remove):
		if idx, item, ok := m.grid.SelectedItem(); ok {
			return m, m.openConfirm(editRemoveItem, idx, fmt.Sprintf("Remove %q and its answers?", item))
		}
	default:
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return m, cmd
	}
	return m, nil
}

func reflectionTitle(rec *models.WeekRecord, day int) string {
	return fmt.Sprintf("感想・気づき %s(%s)", rec.Days[day].Date, rec.Days[day].DayOfWeek)
}

func (m *Model) toggleComment() {
	m.showComment = !m.showComment
	if m.settings == nil {
		return
	}
	if err := m.settings.SetSetting(constants.SettingShowParentsComment, strconv.FormatBool(m.showComment)); err != nil {
		logger.Warn("Failed to persist parents' comment setting", "error", err)
	}
}

func (m *Model) copy(what string, render func(*models.WeekRecord) string) {
	rec := m.sess.Record()
	if rec == nil {
		return
	}
	if err := m.copyFn(render(rec)); err != nil {
		m.setError(fmt.Errorf("copy failed: %w", err))
		return
	}
	m.setStatus(what + " copied to clipboard")
}

// applyEdit runs the completed form's change against the session.
func (m *Model) applyEdit() error {
	value := *m.input
	switch m.edit {
	case editGoal:
		return m.sess.SetGoal(value)
	case editComment:
		return m.sess.SetParentsComment(value)
	case editReflection:
		return m.sess.SetReflection(m.editIndex, value)
	case editAddItem:
		if err := m.sess.AddItem(value); err != nil {
			return err
		}
		m.refresh()
		m.grid.SetCursor(len(m.sess.Record().Items)-1, m.gridDay())
		return nil
	case editRenameItem:
		return m.sess.RenameItem(m.editIndex, value)
	case editRemoveItem:
		if !*m.confirm {
			return nil
		}
		label, err := m.sess.RemoveItem(m.editIndex)
		if err == nil {
			m.setStatus(fmt.Sprintf("Removed %q", label))
		}
		return err
	case editResetItems:
		if !*m.confirm {
			return nil
		}
		return m.sess.ResetItems()
	}
	return nil
}

func (m Model) gridDay() int {
	_, day := m.grid.Cursor()
	return day
}

// describeError adds the key to press for errors the editor can resolve.
func describeError(err error) string {
	switch {
	case storage.IsConflict(err):
		return err.Error() + " (O: overwrite remote, L: reload and discard edits)"
	case storage.IsAuth(err):
		return err.Error() + " (check the token with 'weekdiary config token')"
	case errors.Is(err, session.ErrNotOpen):
		return "No week loaded"
	}
	return err.Error()
}
