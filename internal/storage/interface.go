package storage

import (
	"context"

	"github.com/julianstephens/weekdiary/internal/isoweek"
	"github.com/julianstephens/weekdiary/internal/models"
)

// Revision is an opaque token identifying the stored version of a week file.
// The empty revision means "unknown"; stores look it up before writing.
type Revision string

// WeekStore persists one file per week.
type WeekStore interface {
	// Load returns ErrNotFound when no file exists for id.
	Load(ctx context.Context, id isoweek.WeekID) (*models.WeekRecord, Revision, error)
	// Save writes rec if the stored revision still matches expected and
	// returns the new revision. A stale expected revision yields *ConflictError.
	Save(ctx context.Context, rec *models.WeekRecord, expected Revision) (Revision, error)
	// Delete returns ErrNotFound when there is nothing to delete.
	Delete(ctx context.Context, id isoweek.WeekID) error
	// Ping checks that the store is reachable and usable.
	Ping(ctx context.Context) error
}

// WeekLister is implemented by stores that can enumerate their weeks.
type WeekLister interface {
	List(ctx context.Context) ([]isoweek.WeekID, error)
}

// SettingsStore holds local settings and the session item cache.
type SettingsStore interface {
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	GetItemCache() ([]string, error)
	SaveItemCache(items []string) error
}
