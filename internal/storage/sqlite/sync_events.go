package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/weekdiary/internal/isoweek"
)

// eventTimeFormat sorts lexically in time order.
const eventTimeFormat = "2006-01-02T15:04:05.000000000Z"

// SyncAction is what a sync event attempted.
type SyncAction string

const (
	ActionLoad   SyncAction = "load"
	ActionSave   SyncAction = "save"
	ActionDelete SyncAction = "delete"
)

// SyncStatus is how a sync event ended.
type SyncStatus string

const (
	StatusOK       SyncStatus = "ok"
	StatusNotFound SyncStatus = "not_found"
	StatusConflict SyncStatus = "conflict"
	StatusFailed   SyncStatus = "failed"
)

// SyncEvent is one recorded exchange with the remote store.
type SyncEvent struct {
	ID     string
	Week   string
	Action SyncAction
	Status SyncStatus
	Detail string
	At     time.Time
}

// RecordSyncEvent appends an event and returns it with its generated ID.
func (s *Store) RecordSyncEvent(ctx context.Context, week isoweek.WeekID, action SyncAction, status SyncStatus, detail string) (SyncEvent, error) {
	ev := SyncEvent{
		ID:     uuid.New().String(),
		Week:   week.String(),
		Action: action,
		Status: status,
		Detail: detail,
		At:     time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sync_events (id, week, action, status, detail, at) VALUES (?, ?, ?, ?, ?, ?)",
		ev.ID, ev.Week, string(ev.Action), string(ev.Status), ev.Detail, ev.At.Format(eventTimeFormat))
	if err != nil {
		return SyncEvent{}, fmt.Errorf("recording sync event: %w", err)
	}
	return ev, nil
}

// ListSyncEvents returns the newest events first. An empty week lists all weeks.
func (s *Store) ListSyncEvents(ctx context.Context, week string, limit int) ([]SyncEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	query := "SELECT id, week, action, status, detail, at FROM sync_events"
	args := []interface{}{}
	if week != "" {
		query += " WHERE week = ?"
		args = append(args, week)
	}
	query += " ORDER BY at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []SyncEvent
	for rows.Next() {
		var ev SyncEvent
		var action, status, at string
		if err := rows.Scan(&ev.ID, &ev.Week, &action, &status, &ev.Detail, &at); err != nil {
			return nil, err
		}
		ev.Action = SyncAction(action)
		ev.Status = SyncStatus(status)
		ev.At, _ = time.Parse(eventTimeFormat, at)
		events = append(events, ev)
	}
	return events, rows.Err()
}
