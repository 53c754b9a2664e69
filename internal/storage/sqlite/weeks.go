package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/julianstephens/weekdiary/internal/isoweek"
	"github.com/julianstephens/weekdiary/internal/models"
	"github.com/julianstephens/weekdiary/internal/storage"
)

// MirrorEntry describes a week held in the local mirror.
type MirrorEntry struct {
	Week           isoweek.WeekID
	Revision       storage.Revision
	RemoteRevision storage.Revision
	Dirty          bool
	SavedAt        time.Time
}

func revisionOf(body []byte) storage.Revision {
	sum := sha256.Sum256(body)
	return storage.Revision(hex.EncodeToString(sum[:]))
}

func (s *Store) currentRevision(ctx context.Context, q queryer, id isoweek.WeekID) (storage.Revision, error) {
	var rev string
	err := q.QueryRowContext(ctx, "SELECT revision FROM weeks WHERE week = ?", id.String()).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", &storage.StorageError{Op: "read", Week: id.String(), Kind: storage.KindIO, Err: err}
	}
	return storage.Revision(rev), nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *Store) Load(ctx context.Context, id isoweek.WeekID) (*models.WeekRecord, storage.Revision, error) {
	var body, rev string
	err := s.db.QueryRowContext(ctx, "SELECT body, revision FROM weeks WHERE week = ?", id.String()).Scan(&body, &rev)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", storage.ErrNotFound
	}
	if err != nil {
		return nil, "", &storage.StorageError{Op: "load", Week: id.String(), Kind: storage.KindIO, Err: err}
	}

	rec, err := models.DecodeWeek([]byte(body))
	if err != nil {
		return nil, "", &storage.StorageError{Op: "load", Week: id.String(), Kind: storage.KindDecode, Err: err}
	}
	return rec, storage.Revision(rev), nil
}

// Save writes rec as a clean local copy.
func (s *Store) Save(ctx context.Context, rec *models.WeekRecord, expected storage.Revision) (storage.Revision, error) {
	return s.put(ctx, rec, expected, nil, false)
}

// Mirror stores rec with the remote revision it corresponds to. dirty marks
// a copy that has not reached the remote store yet. Mirroring never conflicts.
func (s *Store) Mirror(ctx context.Context, rec *models.WeekRecord, remote storage.Revision, dirty bool) error {
	_, err := s.put(ctx, rec, "", &remote, dirty)
	return err
}

func (s *Store) put(ctx context.Context, rec *models.WeekRecord, expected storage.Revision, remote *storage.Revision, dirty bool) (storage.Revision, error) {
	body, err := models.EncodeWeek(rec)
	if err != nil {
		return "", &storage.StorageError{Op: "save", Week: rec.Week.String(), Kind: storage.KindDecode, Err: err}
	}
	rev := revisionOf(body)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", &storage.StorageError{Op: "save", Week: rec.Week.String(), Kind: storage.KindIO, Err: err}
	}
	defer tx.Rollback()

	current, err := s.currentRevision(ctx, tx, rec.Week)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}
	if expected != "" && expected != current {
		return "", &storage.ConflictError{Week: rec.Week, Expected: expected, Actual: current}
	}

	remoteRev := ""
	if remote != nil {
		remoteRev = string(*remote)
	} else {
		// keep whatever remote revision was recorded before
		_ = tx.QueryRowContext(ctx, "SELECT remote_revision FROM weeks WHERE week = ?", rec.Week.String()).Scan(&remoteRev)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO weeks (week, body, revision, saved_at, dirty, remote_revision)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Week.String(), string(body), string(rev), time.Now().UTC().Format(time.RFC3339), dirty, remoteRev)
	if err != nil {
		return "", &storage.StorageError{Op: "save", Week: rec.Week.String(), Kind: storage.KindIO, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return "", &storage.StorageError{Op: "save", Week: rec.Week.String(), Kind: storage.KindIO, Err: err}
	}
	return rev, nil
}

func (s *Store) Delete(ctx context.Context, id isoweek.WeekID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM weeks WHERE week = ?", id.String())
	if err != nil {
		return &storage.StorageError{Op: "delete", Week: id.String(), Kind: storage.KindIO, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &storage.StorageError{Op: "delete", Week: id.String(), Kind: storage.KindIO, Err: err}
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List returns every mirrored week, oldest first.
func (s *Store) List(ctx context.Context) ([]isoweek.WeekID, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}
	weeks := make([]isoweek.WeekID, 0, len(entries))
	for _, e := range entries {
		weeks = append(weeks, e.Week)
	}
	return weeks, nil
}

// Entries returns mirror metadata for every week, oldest first.
func (s *Store) Entries(ctx context.Context) ([]MirrorEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT week, revision, remote_revision, dirty, saved_at
		FROM weeks
		ORDER BY week`)
	if err != nil {
		return nil, &storage.StorageError{Op: "list", Kind: storage.KindIO, Err: err}
	}
	defer rows.Close()

	var entries []MirrorEntry
	for rows.Next() {
		var week, rev, remote, savedAt string
		var dirty bool
		if err := rows.Scan(&week, &rev, &remote, &dirty, &savedAt); err != nil {
			return nil, &storage.StorageError{Op: "list", Kind: storage.KindIO, Err: err}
		}
		id, err := isoweek.Parse(week)
		if err != nil {
			continue
		}
		at, _ := time.Parse(time.RFC3339, savedAt)
		entries = append(entries, MirrorEntry{
			Week:           id,
			Revision:       storage.Revision(rev),
			RemoteRevision: storage.Revision(remote),
			Dirty:          dirty,
			SavedAt:        at,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.StorageError{Op: "list", Kind: storage.KindIO, Err: err}
	}
	return entries, nil
}

// DirtyWeeks returns weeks whose local copy has not been pushed.
func (s *Store) DirtyWeeks(ctx context.Context) ([]isoweek.WeekID, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}
	var weeks []isoweek.WeekID
	for _, e := range entries {
		if e.Dirty {
			weeks = append(weeks, e.Week)
		}
	}
	return weeks, nil
}

// RemoteRevision returns the remote revision recorded for id, empty if unknown.
func (s *Store) RemoteRevision(ctx context.Context, id isoweek.WeekID) (storage.Revision, error) {
	var remote string
	err := s.db.QueryRowContext(ctx, "SELECT remote_revision FROM weeks WHERE week = ?", id.String()).Scan(&remote)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", &storage.StorageError{Op: "read", Week: id.String(), Kind: storage.KindIO, Err: err}
	}
	return storage.Revision(remote), nil
}

// IsDirty reports whether the local copy of id holds changes the remote
// store has not seen. A week with no local copy is clean.
func (s *Store) IsDirty(ctx context.Context, id isoweek.WeekID) (bool, error) {
	var dirty bool
	err := s.db.QueryRowContext(ctx, "SELECT dirty FROM weeks WHERE week = ?", id.String()).Scan(&dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, &storage.StorageError{Op: "read", Week: id.String(), Kind: storage.KindIO, Err: err}
	}
	return dirty, nil
}
