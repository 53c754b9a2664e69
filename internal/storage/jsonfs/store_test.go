package jsonfs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/weekdiary/internal/constants"
	"github.com/julianstephens/weekdiary/internal/diary"
	"github.com/julianstephens/weekdiary/internal/isoweek"
	"github.com/julianstephens/weekdiary/internal/models"
	"github.com/julianstephens/weekdiary/internal/storage"
)

var (
	_ storage.WeekStore     = (*Store)(nil)
	_ storage.WeekLister    = (*Store)(nil)
	_ storage.SettingsStore = (*Store)(nil)
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "weeks"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	return store
}

func TestLoadNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, _, err := store.Load(context.Background(), isoweek.WeekID{Year: 2025, Week: 3})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	id := isoweek.WeekID{Year: 2025, Week: 3}

	rec := diary.New(id, []string{"A", "B"})
	diary.SetGoal(rec, "goal")
	diary.SetResponse(rec, 2, "B", models.ResponseFailure)

	rev, err := store.Save(ctx, rec, "")
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if rev == "" {
		t.Fatal("Save() returned empty revision")
	}

	loaded, loadedRev, err := store.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loadedRev != rev {
		t.Errorf("Load() revision = %q, want %q", loadedRev, rev)
	}
	if loaded.Goal != "goal" {
		t.Errorf("Goal = %q, want %q", loaded.Goal, "goal")
	}
	if got := loaded.Days[2].Responses["B"]; got != models.ResponseFailure {
		t.Errorf("response = %q, want %q", got, models.ResponseFailure)
	}

	if _, err := os.Stat(filepath.Join(store.Root(), "2025-W03.json")); err != nil {
		t.Errorf("week file not written: %v", err)
	}
}

func TestSaveConflict(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	id := isoweek.WeekID{Year: 2025, Week: 4}

	rec := diary.New(id, []string{"A"})
	first, err := store.Save(ctx, rec, "")
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	diary.SetGoal(rec, "second")
	second, err := store.Save(ctx, rec, first)
	if err != nil {
		t.Fatalf("Save() with current revision failed: %v", err)
	}

	diary.SetGoal(rec, "stale")
	_, err = store.Save(ctx, rec, first)
	var conflict *storage.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Save() with stale revision error = %v, want ConflictError", err)
	}
	if conflict.Actual != second {
		t.Errorf("conflict.Actual = %q, want %q", conflict.Actual, second)
	}

	loaded, _, err := store.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.Goal != "second" {
		t.Errorf("stale save overwrote data: goal = %q", loaded.Goal)
	}
}

func TestDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	id := isoweek.WeekID{Year: 2025, Week: 5}

	if err := store.Delete(ctx, id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Delete() on missing week error = %v, want ErrNotFound", err)
	}

	if _, err := store.Save(ctx, diary.New(id, nil), ""); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, _, err := store.Load(ctx, id); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Load() after delete error = %v, want ErrNotFound", err)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	store := setupTestStore(t)
	id := isoweek.WeekID{Year: 2025, Week: 6}
	if err := os.WriteFile(filepath.Join(store.Root(), id.String()+".json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	_, _, err := store.Load(context.Background(), id)
	var se *storage.StorageError
	if !errors.As(err, &se) || se.Kind != storage.KindDecode {
		t.Fatalf("Load() error = %v, want decode StorageError", err)
	}
}

func TestList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, id := range []isoweek.WeekID{{Year: 2025, Week: 2}, {Year: 2024, Week: 52}, {Year: 2025, Week: 1}} {
		if _, err := store.Save(ctx, diary.New(id, nil), ""); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
	}
	// unrelated files are ignored
	os.WriteFile(filepath.Join(store.Root(), "notes.txt"), []byte("x"), 0600)

	weeks, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	want := []string{"2024-W52", "2025-W01", "2025-W02"}
	if len(weeks) != len(want) {
		t.Fatalf("List() = %v, want %v", weeks, want)
	}
	for i, w := range weeks {
		if w.String() != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, w, want[i])
		}
	}
}

func TestSettings(t *testing.T) {
	store := setupTestStore(t)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() failed: %v", err)
	}
	if settings.Branch != constants.DefaultBranch {
		t.Errorf("default Branch = %q, want %q", settings.Branch, constants.DefaultBranch)
	}

	settings.RepoOwner = "me"
	settings.RepoName = "diary"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings() failed: %v", err)
	}
	if err := store.SetSetting(constants.SettingShowParentsComment, "true"); err != nil {
		t.Fatalf("SetSetting() failed: %v", err)
	}

	got, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() failed: %v", err)
	}
	if got.RepoOwner != "me" || got.RepoName != "diary" || !got.ShowParentsComment {
		t.Errorf("GetSettings() = %+v", got)
	}

	if _, err := store.GetSetting("missing"); err == nil {
		t.Error("GetSetting() on missing key should fail")
	}
}

func TestItemCache(t *testing.T) {
	store := setupTestStore(t)

	items, err := store.GetItemCache()
	if err != nil {
		t.Fatalf("GetItemCache() failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("initial cache = %v, want empty", items)
	}

	if err := store.SaveItemCache([]string{"x", "y"}); err != nil {
		t.Fatalf("SaveItemCache() failed: %v", err)
	}
	items, err = store.GetItemCache()
	if err != nil {
		t.Fatalf("GetItemCache() failed: %v", err)
	}
	if len(items) != 2 || items[0] != "x" || items[1] != "y" {
		t.Errorf("GetItemCache() = %v, want [x y]", items)
	}
}
