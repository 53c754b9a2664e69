// Package session owns the week being edited: which week is current, the
// record held for it, whether it has unsaved changes and the revision it was
// loaded at. All methods are meant to be called from one goroutine; the
// Fetch and Push halves of loading and saving may run elsewhere because they
// only touch the stores.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/weekdiary/internal/diary"
	"github.com/julianstephens/weekdiary/internal/isoweek"
	"github.com/julianstephens/weekdiary/internal/logger"
	"github.com/julianstephens/weekdiary/internal/models"
	"github.com/julianstephens/weekdiary/internal/storage"
	"github.com/julianstephens/weekdiary/internal/storage/sqlite"
)

var (
	// ErrStaleResult is returned when a load or save finishes for a week
	// that is no longer current. The result has been discarded.
	ErrStaleResult = errors.New("result is for a week that is no longer open")

	// ErrNotOpen is returned by mutators when no week is held.
	ErrNotOpen = errors.New("no week is open")
)

// Mirror is the local copy kept alongside the remote store.
type Mirror interface {
	storage.WeekStore
	Mirror(ctx context.Context, rec *models.WeekRecord, remote storage.Revision, dirty bool) error
	RemoteRevision(ctx context.Context, id isoweek.WeekID) (storage.Revision, error)
	IsDirty(ctx context.Context, id isoweek.WeekID) (bool, error)
	RecordSyncEvent(ctx context.Context, week isoweek.WeekID, action sqlite.SyncAction, status sqlite.SyncStatus, detail string) (sqlite.SyncEvent, error)
}

// Options configures a Session. Only Remote is required.
type Options struct {
	Remote   storage.WeekStore
	Local    Mirror
	Settings storage.SettingsStore
	Cache    *diary.ItemCache

	// AutosaveOnNavigate saves a changed, non-empty week before leaving it.
	AutosaveOnNavigate bool
}

type Session struct {
	remote   storage.WeekStore
	local    Mirror
	settings storage.SettingsStore
	cache    *diary.ItemCache
	autosave bool

	week     isoweek.WeekID
	rec      *models.WeekRecord
	revision storage.Revision
	dirty    bool
	edits    uint64
	lastErr  error
}

// New creates a session. When Cache is nil the cache is seeded from the
// settings store, if there is one.
func New(opts Options) *Session {
	cache := opts.Cache
	if cache == nil {
		cache = diary.NewItemCache(nil)
		if opts.Settings != nil {
			items, err := opts.Settings.GetItemCache()
			if err != nil {
				logger.Warn("Failed to read item cache", "error", err)
			}
			cache.Set(items)
		}
	}
	return &Session{
		remote:   opts.Remote,
		local:    opts.Local,
		settings: opts.Settings,
		cache:    cache,
		autosave: opts.AutosaveOnNavigate,
	}
}

func (s *Session) Week() isoweek.WeekID { return s.week }
func (s *Session) Record() *models.WeekRecord { return s.rec }
func (s *Session) Revision() storage.Revision { return s.revision }
func (s *Session) Dirty() bool { return s.dirty }
func (s *Session) Cache() *diary.ItemCache { return s.cache }
func (s *Session) Loaded() bool { return s.rec != nil }

// LastSyncError is the error of the most recent save attempt, or nil once a
// save succeeds.
func (s *Session) LastSyncError() error { return s.lastErr }

// LoadResult is the outcome of fetching one week.
type LoadResult struct {
	Week     isoweek.WeekID
	Record   *models.WeekRecord // nil when the week has no file yet
	Revision storage.Revision
	Offline  bool // served from the local mirror after a transport failure
	Pending  bool // served from the local mirror because it holds unpushed edits
	Err      error
}

// Begin makes id the current week and drops the held record. Results for
// any other week arriving afterwards are discarded by Apply.
func (s *Session) Begin(id isoweek.WeekID) {
	s.week = id
	s.rec = nil
	s.revision = ""
	s.dirty = false
	s.lastErr = nil
}

// Fetch loads id. A local copy with unpushed edits wins over the remote
// store so those edits survive until they are pushed or discarded; saving it
// uses the remote revision it was based on, so a remote change since then
// surfaces as a conflict. It does not touch session state.
func (s *Session) Fetch(ctx context.Context, id isoweek.WeekID) LoadResult {
	if s.local != nil {
		dirty, err := s.local.IsDirty(ctx, id)
		if err != nil {
			logger.Warn("Failed to check local copy", "week", id.String(), "error", err)
		}
		if dirty {
			if local, _, err := s.local.Load(ctx, id); err == nil {
				remoteRev, _ := s.local.RemoteRevision(ctx, id)
				logger.Info("Using local copy with unpushed edits", "week", id.String())
				return LoadResult{Week: id, Record: local, Revision: remoteRev, Pending: true}
			}
		}
	}
	return s.FetchRemote(ctx, id)
}

// FetchRemote loads id from the remote store, ignoring unpushed local edits,
// and falls back to the local mirror only on transport failures.
func (s *Session) FetchRemote(ctx context.Context, id isoweek.WeekID) LoadResult {
	rec, rev, err := s.remote.Load(ctx, id)
	switch {
	case err == nil:
		return LoadResult{Week: id, Record: rec, Revision: rev}
	case errors.Is(err, storage.ErrNotFound):
		return LoadResult{Week: id}
	}

	if s.local != nil && storage.IsTransport(err) {
		local, _, lerr := s.local.Load(ctx, id)
		if lerr == nil {
			remoteRev, _ := s.local.RemoteRevision(ctx, id)
			logger.Warn("Remote unreachable, using local copy", "week", id.String(), "error", err)
			return LoadResult{Week: id, Record: local, Revision: remoteRev, Offline: true}
		}
	}
	return LoadResult{Week: id, Err: err}
}

// Apply installs a fetched week. A missing file yields a fresh week built
// from the item cache; a stored one is reconciled and normalized.
func (s *Session) Apply(ctx context.Context, res LoadResult) error {
	if res.Week != s.week {
		logger.Debug("Discarding stale load", "week", res.Week.String(), "current", s.week.String())
		return ErrStaleResult
	}
	if res.Err != nil {
		s.record(ctx, res.Week, sqlite.ActionLoad, statusOf(res.Err), res.Err.Error())
		return fmt.Errorf("loading %s: %w", res.Week, res.Err)
	}

	if res.Record == nil {
		s.rec = diary.Initialize(nil, res.Week, s.cache.CurrentItems())
		s.revision = ""
		s.record(ctx, res.Week, sqlite.ActionLoad, sqlite.StatusNotFound, "")
		// any local copy left is stale: either clean or being discarded
		if s.local != nil {
			if err := s.local.Delete(ctx, res.Week); err != nil && !errors.Is(err, storage.ErrNotFound) {
				logger.Warn("Failed to drop stale local copy", "week", res.Week.String(), "error", err)
			}
		}
	} else {
		s.rec = diary.Prepare(res.Record, res.Week, s.cache)
		s.revision = res.Revision
		s.persistCache()
		s.record(ctx, res.Week, sqlite.ActionLoad, sqlite.StatusOK, "")
		if s.local != nil && !res.Offline && !res.Pending {
			if err := s.local.Mirror(ctx, s.rec, s.revision, false); err != nil {
				logger.Warn("Failed to mirror week locally", "week", res.Week.String(), "error", err)
			}
		}
	}
	// a local copy may hold edits the remote has not seen
	s.dirty = res.Offline || res.Pending
	s.edits = 0
	return nil
}

// Open makes id current and loads it.
func (s *Session) Open(ctx context.Context, id isoweek.WeekID) error {
	s.Begin(id)
	return s.Apply(ctx, s.Fetch(ctx, id))
}

// Reload discards local edits, including unpushed ones in the mirror, and
// loads the current week from the remote store again.
func (s *Session) Reload(ctx context.Context) error {
	s.Begin(s.week)
	return s.Apply(ctx, s.FetchRemote(ctx, s.week))
}

// ShouldAutosave reports whether leaving the current week would save it.
func (s *Session) ShouldAutosave() bool {
	return s.autosave && s.rec != nil && s.dirty && !diary.IsEmpty(s.rec)
}

// Navigate moves delta weeks away, saving the current week first when
// ShouldAutosave allows. A failed autosave does not block navigation; the
// week stays dirty in the local mirror and the error is reported through
// LastSyncError.
func (s *Session) Navigate(ctx context.Context, delta int) error {
	if s.ShouldAutosave() {
		if err := s.Save(ctx); err != nil {
			logger.Warn("Autosave before navigation failed", "week", s.week.String(), "error", err)
			saveErr := err
			if err := s.Open(ctx, s.week.Add(delta)); err != nil {
				return err
			}
			s.lastErr = saveErr
			return nil
		}
	}
	return s.Open(ctx, s.week.Add(delta))
}

// SaveRequest is a snapshot of the current week ready to be written.
type SaveRequest struct {
	Record   *models.WeekRecord
	Expected storage.Revision
	edits    uint64
}

// SaveResult is the outcome of writing a SaveRequest.
type SaveResult struct {
	Week     isoweek.WeekID
	Revision storage.Revision
	Err      error
	edits    uint64
}

// Snapshot captures the current week for saving.
func (s *Session) Snapshot() (SaveRequest, error) {
	if s.rec == nil {
		return SaveRequest{}, ErrNotOpen
	}
	return SaveRequest{Record: s.rec.Clone(), Expected: s.revision, edits: s.edits}, nil
}

// Push writes req to the remote store. It does not touch session state.
func (s *Session) Push(ctx context.Context, req SaveRequest) SaveResult {
	rev, err := s.remote.Save(ctx, req.Record, req.Expected)
	return SaveResult{Week: req.Record.Week, Revision: rev, Err: err, edits: req.edits}
}

// Commit records the outcome of a Push. Edits made while the push was in
// flight keep the week dirty.
func (s *Session) Commit(ctx context.Context, res SaveResult) error {
	if res.Week != s.week || s.rec == nil {
		logger.Debug("Discarding stale save", "week", res.Week.String(), "current", s.week.String())
		return ErrStaleResult
	}

	if res.Err != nil {
		s.lastErr = res.Err
		s.record(ctx, res.Week, sqlite.ActionSave, statusOf(res.Err), res.Err.Error())
		if s.local != nil {
			if err := s.local.Mirror(ctx, s.rec, s.revision, true); err != nil {
				logger.Warn("Failed to keep unsaved week locally", "week", res.Week.String(), "error", err)
			}
		}
		return fmt.Errorf("saving %s: %w", res.Week, res.Err)
	}

	s.revision = res.Revision
	s.lastErr = nil
	if s.edits == res.edits {
		s.dirty = false
	}
	s.record(ctx, res.Week, sqlite.ActionSave, sqlite.StatusOK, "")
	if s.local != nil {
		if err := s.local.Mirror(ctx, s.rec, s.revision, s.dirty); err != nil {
			logger.Warn("Failed to mirror week locally", "week", res.Week.String(), "error", err)
		}
	}
	return nil
}

// Save writes the current week using the revision it was loaded at. On a
// conflict the week stays dirty; Overwrite forces the write.
func (s *Session) Save(ctx context.Context) error {
	req, err := s.Snapshot()
	if err != nil {
		return err
	}
	return s.Commit(ctx, s.Push(ctx, req))
}

// Overwrite writes the current week regardless of what is stored remotely.
func (s *Session) Overwrite(ctx context.Context) error {
	req, err := s.Snapshot()
	if err != nil {
		return err
	}
	req.Expected = ""
	return s.Commit(ctx, s.Push(ctx, req))
}

// Delete removes the current week from both stores and resets the session
// to a fresh record for the same week.
func (s *Session) Delete(ctx context.Context) error {
	id := s.week
	if err := s.remote.Delete(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.record(ctx, id, sqlite.ActionDelete, statusOf(err), err.Error())
		return fmt.Errorf("deleting %s: %w", id, err)
	}
	if s.local != nil {
		if err := s.local.Delete(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("Failed to delete local copy", "week", id.String(), "error", err)
		}
	}
	s.record(ctx, id, sqlite.ActionDelete, sqlite.StatusOK, "")

	s.rec = diary.New(id, s.cache.CurrentItems())
	s.revision = ""
	s.dirty = false
	s.edits = 0
	return nil
}

// MarkChanged flags the current week as modified.
func (s *Session) MarkChanged() {
	s.dirty = true
	s.edits++
}

func (s *Session) mutate(fn func(rec *models.WeekRecord) error) error {
	if s.rec == nil {
		return ErrNotOpen
	}
	if err := fn(s.rec); err != nil {
		return err
	}
	s.MarkChanged()
	return nil
}

func (s *Session) SetGoal(goal string) error {
	return s.mutate(func(rec *models.WeekRecord) error {
		diary.SetGoal(rec, goal)
		return nil
	})
}

func (s *Session) SetParentsComment(comment string) error {
	return s.mutate(func(rec *models.WeekRecord) error {
		diary.SetParentsComment(rec, comment)
		return nil
	})
}

func (s *Session) SetReflection(day int, text string) error {
	return s.mutate(func(rec *models.WeekRecord) error {
		diary.SetReflection(rec, day, text)
		return nil
	})
}

func (s *Session) SetResponse(day int, item string, value models.Response) error {
	return s.mutate(func(rec *models.WeekRecord) error {
		diary.SetResponse(rec, day, item, value)
		return nil
	})
}

// CycleResponse advances one cell to its next symbol and returns it.
func (s *Session) CycleResponse(day int, item string) (models.Response, error) {
	var next models.Response
	err := s.mutate(func(rec *models.WeekRecord) error {
		next = diary.CycleResponse(rec, day, item)
		return nil
	})
	return next, err
}

func (s *Session) AddItem(label string) error {
	return s.itemEdit(func(rec *models.WeekRecord) error {
		return diary.AddItem(rec, label)
	})
}

func (s *Session) RenameItem(index int, label string) error {
	return s.itemEdit(func(rec *models.WeekRecord) error {
		return diary.RenameItem(rec, index, label)
	})
}

// RemoveItem deletes the item at index and returns its label.
func (s *Session) RemoveItem(index int) (string, error) {
	var removed string
	err := s.itemEdit(func(rec *models.WeekRecord) error {
		removed = diary.RemoveItem(rec, index)
		return nil
	})
	return removed, err
}

func (s *Session) ResetItems() error {
	return s.itemEdit(func(rec *models.WeekRecord) error {
		diary.ResetToDefaults(rec)
		return nil
	})
}

// itemEdit applies an item list change and refreshes the cache from the
// resulting list.
func (s *Session) itemEdit(fn func(rec *models.WeekRecord) error) error {
	if err := s.mutate(fn); err != nil {
		return err
	}
	s.cache.Set(s.rec.Items)
	s.persistCache()
	return nil
}

func (s *Session) persistCache() {
	if s.settings == nil {
		return
	}
	if err := s.settings.SaveItemCache(s.cache.Get()); err != nil {
		logger.Warn("Failed to persist item cache", "error", err)
	}
}

func (s *Session) record(ctx context.Context, id isoweek.WeekID, action sqlite.SyncAction, status sqlite.SyncStatus, detail string) {
	if s.local == nil {
		return
	}
	if _, err := s.local.RecordSyncEvent(ctx, id, action, status, detail); err != nil {
		logger.Warn("Failed to record sync event", "week", id.String(), "error", err)
	}
}

func statusOf(err error) sqlite.SyncStatus {
	switch {
	case err == nil:
		return sqlite.StatusOK
	case errors.Is(err, storage.ErrNotFound):
		return sqlite.StatusNotFound
	case storage.IsConflict(err):
		return sqlite.StatusConflict
	default:
		return sqlite.StatusFailed
	}
}
