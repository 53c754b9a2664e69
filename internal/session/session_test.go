package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/weekdiary/internal/diary"
	"github.com/julianstephens/weekdiary/internal/isoweek"
	"github.com/julianstephens/weekdiary/internal/models"
	"github.com/julianstephens/weekdiary/internal/storage"
	"github.com/julianstephens/weekdiary/internal/storage/jsonfs"
	"github.com/julianstephens/weekdiary/internal/storage/sqlite"
)

var week = isoweek.WeekID{Year: 2025, Week: 10}

// flakyStore wraps a store and fails calls on demand.
type flakyStore struct {
	storage.WeekStore
	loadErr error
	saveErr error
	saves   int
}

func (f *flakyStore) Load(ctx context.Context, id isoweek.WeekID) (*models.WeekRecord, storage.Revision, error) {
	if f.loadErr != nil {
		return nil, "", f.loadErr
	}
	return f.WeekStore.Load(ctx, id)
}

func (f *flakyStore) Save(ctx context.Context, rec *models.WeekRecord, expected storage.Revision) (storage.Revision, error) {
	f.saves++
	if f.saveErr != nil {
		return "", f.saveErr
	}
	return f.WeekStore.Save(ctx, rec, expected)
}

type fixture struct {
	remote *flakyStore
	local  *sqlite.Store
	sess   *Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	fs := jsonfs.NewStore(filepath.Join(dir, "remote"))
	require.NoError(t, fs.Init())

	local := sqlite.NewStore(filepath.Join(dir, "local.db"))
	require.NoError(t, local.Init())
	t.Cleanup(func() { local.Close() })

	remote := &flakyStore{WeekStore: fs}
	return &fixture{
		remote: remote,
		local:  local,
		sess: New(Options{
			Remote:             remote,
			Local:              local,
			Settings:           local,
			AutosaveOnNavigate: true,
		}),
	}
}

func TestOpenMissingWeekUsesDefaults(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.sess.Open(context.Background(), week))

	rec := f.sess.Record()
	require.NotNil(t, rec)
	assert.Equal(t, week, rec.Week)
	assert.Equal(t, diary.DefaultEvaluationItems(), rec.Items)
	assert.False(t, f.sess.Dirty())
	assert.Empty(t, f.sess.Revision())
}

func TestOpenMissingWeekUsesCache(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.local.SaveItemCache([]string{"読書"}))

	sess := New(Options{Remote: f.remote, Settings: f.local})
	require.NoError(t, sess.Open(context.Background(), week))
	assert.Equal(t, []string{"読書"}, sess.Record().Items)
}

func TestSaveAndReopen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.Open(ctx, week))
	require.NoError(t, f.sess.SetGoal("早寝"))
	assert.True(t, f.sess.Dirty())

	require.NoError(t, f.sess.Save(ctx))
	assert.False(t, f.sess.Dirty())
	assert.NotEmpty(t, f.sess.Revision())
	assert.NoError(t, f.sess.LastSyncError())

	other := New(Options{Remote: f.remote})
	require.NoError(t, other.Open(ctx, week))
	assert.Equal(t, "早寝", other.Record().Goal)
	assert.Equal(t, f.sess.Revision(), other.Revision())

	mirrored, _, err := f.local.Load(ctx, week)
	require.NoError(t, err)
	assert.Equal(t, "早寝", mirrored.Goal)

	events, err := f.local.ListSyncEvents(ctx, week.String(), 10)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, sqlite.ActionSave, events[0].Action)
	assert.Equal(t, sqlite.StatusOK, events[0].Status)
}

func TestSaveFailureKeepsDirty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.Open(ctx, week))
	require.NoError(t, f.sess.SetReflection(0, "雨"))

	f.remote.saveErr = &storage.StorageError{Op: "save", Kind: storage.KindTransport, Err: errors.New("offline")}
	err := f.sess.Save(ctx)
	require.Error(t, err)
	assert.True(t, f.sess.Dirty())
	assert.Error(t, f.sess.LastSyncError())

	dirty, err := f.local.DirtyWeeks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []isoweek.WeekID{week}, dirty)
}

func TestSaveConflictThenOverwrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.Open(ctx, week))
	require.NoError(t, f.sess.SetGoal("mine"))

	// someone else writes the week in the meantime
	theirs := diary.New(week, []string{"X"})
	diary.SetGoal(theirs, "theirs")
	_, err := f.remote.WeekStore.Save(ctx, theirs, "")
	require.NoError(t, err)

	// a fresh week opened before the other write has no revision, so the
	// first save replaces it; a second stale writer conflicts
	require.NoError(t, f.sess.Save(ctx))
	stale := f.sess.Revision()

	_, err = f.remote.WeekStore.Save(ctx, theirs, stale)
	require.NoError(t, err)

	require.NoError(t, f.sess.SetGoal("mine again"))
	err = f.sess.Save(ctx)
	assert.True(t, storage.IsConflict(err))
	assert.True(t, f.sess.Dirty())

	events, err := f.local.ListSyncEvents(ctx, week.String(), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, sqlite.StatusConflict, events[0].Status)

	require.NoError(t, f.sess.Overwrite(ctx))
	assert.False(t, f.sess.Dirty())

	loaded, _, err := f.remote.Load(ctx, week)
	require.NoError(t, err)
	assert.Equal(t, "mine again", loaded.Goal)
}

func TestStaleResultsAreDiscarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.sess.Begin(week)
	pending := f.sess.Fetch(ctx, week)

	f.sess.Begin(week.Next())
	assert.ErrorIs(t, f.sess.Apply(ctx, pending), ErrStaleResult)
	assert.Nil(t, f.sess.Record())

	require.NoError(t, f.sess.Apply(ctx, f.sess.Fetch(ctx, week.Next())))
	require.NoError(t, f.sess.SetGoal("x"))
	req, err := f.sess.Snapshot()
	require.NoError(t, err)

	f.sess.Begin(week)
	assert.ErrorIs(t, f.sess.Commit(ctx, f.sess.Push(ctx, req)), ErrStaleResult)
}

func TestEditsDuringSaveStayDirty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.Open(ctx, week))
	require.NoError(t, f.sess.SetGoal("one"))
	req, err := f.sess.Snapshot()
	require.NoError(t, err)

	require.NoError(t, f.sess.SetGoal("two"))
	require.NoError(t, f.sess.Commit(ctx, f.sess.Push(ctx, req)))
	assert.True(t, f.sess.Dirty())
}

func TestNavigateAutosaves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.Open(ctx, week))
	require.NoError(t, f.sess.Navigate(ctx, 1))
	assert.Equal(t, 0, f.remote.saves, "empty week should not be saved")
	assert.Equal(t, week.Next(), f.sess.Week())

	require.NoError(t, f.sess.SetGoal("next week"))
	require.NoError(t, f.sess.Navigate(ctx, -1))
	assert.Equal(t, 1, f.remote.saves)
	assert.Equal(t, week, f.sess.Week())

	saved, _, err := f.remote.Load(ctx, week.Next())
	require.NoError(t, err)
	assert.Equal(t, "next week", saved.Goal)
}

func TestNavigateContinuesAfterFailedAutosave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.Open(ctx, week))
	require.NoError(t, f.sess.SetGoal("unsaved"))
	f.remote.saveErr = errors.New("boom")

	require.NoError(t, f.sess.Navigate(ctx, 1))
	assert.Equal(t, week.Next(), f.sess.Week())
	assert.Error(t, f.sess.LastSyncError())
}

func TestUnpushedEditsSurviveReopen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.Open(ctx, week))
	require.NoError(t, f.sess.SetGoal("first"))
	require.NoError(t, f.sess.Save(ctx))

	require.NoError(t, f.sess.SetGoal("unsynced edit"))
	f.remote.saveErr = &storage.StorageError{Op: "save", Kind: storage.KindTransport, Err: errors.New("offline")}
	require.NoError(t, f.sess.Navigate(ctx, 1))
	dirty, err := f.local.DirtyWeeks(ctx)
	require.NoError(t, err)
	require.Equal(t, []isoweek.WeekID{week}, dirty)

	// back online, the remote still holds "first"
	f.remote.saveErr = nil
	require.NoError(t, f.sess.Navigate(ctx, -1))
	assert.Equal(t, "unsynced edit", f.sess.Record().Goal)
	assert.True(t, f.sess.Dirty())

	local, _, err := f.local.Load(ctx, week)
	require.NoError(t, err)
	assert.Equal(t, "unsynced edit", local.Goal)

	require.NoError(t, f.sess.Save(ctx))
	assert.False(t, f.sess.Dirty())
	saved, _, err := f.remote.Load(ctx, week)
	require.NoError(t, err)
	assert.Equal(t, "unsynced edit", saved.Goal)

	dirty, err = f.local.DirtyWeeks(ctx)
	require.NoError(t, err)
	assert.Empty(t, dirty)
}

func TestUnpushedEditsConflictWithRemoteChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.Open(ctx, week))
	require.NoError(t, f.sess.SetGoal("base"))
	require.NoError(t, f.sess.Save(ctx))
	base := f.sess.Revision()

	require.NoError(t, f.sess.SetGoal("mine"))
	f.remote.saveErr = errors.New("boom")
	require.Error(t, f.sess.Save(ctx))
	f.remote.saveErr = nil

	theirs := diary.New(week, []string{"X"})
	diary.SetGoal(theirs, "theirs")
	_, err := f.remote.WeekStore.Save(ctx, theirs, base)
	require.NoError(t, err)

	require.NoError(t, f.sess.Open(ctx, week))
	assert.Equal(t, "mine", f.sess.Record().Goal)
	assert.Equal(t, base, f.sess.Revision())
	assert.True(t, storage.IsConflict(f.sess.Save(ctx)))
	assert.True(t, f.sess.Dirty())
}

func TestReloadDiscardsUnpushedEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.Open(ctx, week))
	require.NoError(t, f.sess.SetGoal("first"))
	require.NoError(t, f.sess.Save(ctx))

	require.NoError(t, f.sess.SetGoal("throwaway"))
	f.remote.saveErr = errors.New("boom")
	require.Error(t, f.sess.Save(ctx))
	f.remote.saveErr = nil

	require.NoError(t, f.sess.Reload(ctx))
	assert.Equal(t, "first", f.sess.Record().Goal)
	assert.False(t, f.sess.Dirty())

	dirty, err := f.local.DirtyWeeks(ctx)
	require.NoError(t, err)
	assert.Empty(t, dirty)
}

func TestNavigateWithoutAutosave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := New(Options{Remote: f.remote})

	require.NoError(t, sess.Open(ctx, week))
	require.NoError(t, sess.SetGoal("x"))
	assert.False(t, sess.ShouldAutosave())
	require.NoError(t, sess.Navigate(ctx, 1))
	assert.Equal(t, 0, f.remote.saves)
}

func TestOfflineFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.Open(ctx, week))
	require.NoError(t, f.sess.SetGoal("cached"))
	require.NoError(t, f.sess.Save(ctx))

	f.remote.loadErr = &storage.StorageError{Op: "load", Kind: storage.KindTransport, Err: errors.New("no route")}
	require.NoError(t, f.sess.Open(ctx, week))
	assert.Equal(t, "cached", f.sess.Record().Goal)
	assert.True(t, f.sess.Dirty())

	f.remote.loadErr = &storage.StorageError{Op: "load", Kind: storage.KindAuth, StatusCode: 401, Err: errors.New("bad token")}
	err := f.sess.Open(ctx, week)
	require.Error(t, err)
	assert.True(t, storage.IsAuth(err))
	assert.Nil(t, f.sess.Record())
}

func TestItemEditsRefreshCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.Open(ctx, week))
	require.NoError(t, f.sess.ResetItems())
	require.NoError(t, f.sess.AddItem("瞑想"))

	cached, err := f.local.GetItemCache()
	require.NoError(t, err)
	assert.Equal(t, "瞑想", cached[len(cached)-1])
	assert.Equal(t, f.sess.Record().Items, f.sess.Cache().Get())

	var dup *diary.DuplicateItemError
	assert.ErrorAs(t, f.sess.AddItem("瞑想"), &dup)

	require.NoError(t, f.sess.RenameItem(len(cached)-1, "ヨガ"))
	removed, err := f.sess.RemoveItem(0)
	require.NoError(t, err)
	assert.Equal(t, diary.DefaultEvaluationItems()[0], removed)
	assert.NotContains(t, f.sess.Cache().Get(), removed)
	assert.Contains(t, f.sess.Cache().Get(), "ヨガ")
}

func TestCycleResponse(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sess.Open(context.Background(), week))
	item := f.sess.Record().Items[0]

	next, err := f.sess.CycleResponse(2, item)
	require.NoError(t, err)
	assert.Equal(t, models.ResponseSuccess, next)
	assert.True(t, f.sess.Dirty())
}

func TestMutatorsRequireOpenWeek(t *testing.T) {
	sess := New(Options{})
	assert.ErrorIs(t, sess.SetGoal("x"), ErrNotOpen)
	assert.ErrorIs(t, sess.AddItem("x"), ErrNotOpen)
	_, err := sess.Snapshot()
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.Open(ctx, week))
	require.NoError(t, f.sess.SetGoal("gone soon"))
	require.NoError(t, f.sess.Save(ctx))

	require.NoError(t, f.sess.Delete(ctx))
	assert.True(t, diary.IsEmpty(f.sess.Record()))
	assert.Empty(t, f.sess.Revision())

	_, _, err := f.remote.Load(ctx, week)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, _, err = f.local.Load(ctx, week)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
