package migration

import (
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/weekdiary/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func files(m map[string]string) fstest.MapFS {
	out := fstest.MapFS{}
	for name, body := range m {
		out[name] = &fstest.MapFile{Data: []byte(body)}
	}
	return out
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name = ?", name).Scan(&count); err != nil {
		t.Fatalf("checking table %s: %v", name, err)
	}
	return count > 0
}

func TestCurrentVersionFreshDatabase(t *testing.T) {
	runner := NewRunner(setupTestDB(t), files(nil))

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}
}

func TestLoadSortsByVersion(t *testing.T) {
	runner := NewRunner(setupTestDB(t), files(map[string]string{
		"010_later.sql":  "SELECT 1;",
		"002_update.sql": "SELECT 1;",
		"001_init.sql":   "SELECT 1;",
		"README.md":      "ignored",
	}))

	migrations, err := runner.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	wantVersions := []int{1, 2, 10}
	wantNames := []string{"init", "update", "later"}
	for i, m := range migrations {
		if m.Version != wantVersions[i] || m.Name != wantNames[i] {
			t.Errorf("migration %d = (%d, %q), want (%d, %q)", i, m.Version, m.Name, wantVersions[i], wantNames[i])
		}
	}
}

func TestApplyFromScratchAndIncremental(t *testing.T) {
	db := setupTestDB(t)
	src := files(map[string]string{
		"001_init.sql": "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);",
	})
	runner := NewRunner(db, src)

	var messages []string
	applied, err := runner.Apply(func(msg string, keyvals ...interface{}) {
		messages = append(messages, msg)
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected 1 migration applied, got %d", applied)
	}
	if !tableExists(t, db, "users") {
		t.Error("users table not created")
	}
	if len(messages) == 0 {
		t.Error("expected progress messages")
	}

	src["002_posts.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE posts (id INTEGER PRIMARY KEY);")}
	applied, err = runner.Apply(nil)
	if err != nil {
		t.Fatalf("incremental Apply failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected 1 incremental migration, got %d", applied)
	}

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}

	applied, err = runner.Apply(nil)
	if err != nil {
		t.Fatalf("no-op Apply failed: %v", err)
	}
	if applied != 0 {
		t.Errorf("expected no migrations on second run, got %d", applied)
	}
}

func TestApplyRollsBackFailedMigration(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, files(map[string]string{
		"001_init.sql":   "CREATE TABLE ok_table (id INTEGER);",
		"002_broken.sql": "CREATE TABLE half (id INTEGER); THIS IS NOT SQL;",
	}))

	applied, err := runner.Apply(nil)
	if err == nil {
		t.Fatal("expected error from broken migration")
	}
	if applied != 1 {
		t.Errorf("expected 1 migration applied before failure, got %d", applied)
	}
	if !strings.Contains(err.Error(), "migration 2") {
		t.Errorf("error should name the failing migration: %v", err)
	}

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 1 {
		t.Errorf("expected version 1 after rollback, got %d", version)
	}
	if tableExists(t, db, "half") {
		t.Error("partial migration was not rolled back")
	}
}

func TestValidateNewerDatabase(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, files(map[string]string{
		"001_init.sql": "SELECT 1;",
	}))
	if err := runner.EnsureHistoryTable(); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO schema_migrations (version, name, applied_at) VALUES (5, 'future', 'now')"); err != nil {
		t.Fatal(err)
	}

	if err := runner.Validate(); err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("Validate() error = %v, want newer schema error", err)
	}
	if _, err := runner.Apply(nil); err == nil {
		t.Error("Apply() should refuse a newer database")
	}
}

func TestStatus(t *testing.T) {
	runner := NewRunner(setupTestDB(t), files(map[string]string{
		"001_a.sql": "CREATE TABLE a (id INTEGER);",
		"002_b.sql": "CREATE TABLE b (id INTEGER);",
	}))

	st, err := runner.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if st.Current != 0 || st.Latest != 2 || len(st.Pending) != 2 {
		t.Errorf("Status() = %+v", st)
	}
}

func TestInvalidFilenames(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{"missing underscore", map[string]string{"001init.sql": "SELECT 1;"}},
		{"non numeric version", map[string]string{"abc_init.sql": "SELECT 1;"}},
		{"zero version", map[string]string{"000_init.sql": "SELECT 1;"}},
		{"duplicate version", map[string]string{"001_a.sql": "SELECT 1;", "1_b.sql": "SELECT 1;"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(setupTestDB(t), files(tt.files))
			if _, err := runner.Load(); err == nil {
				t.Error("expected Load() to fail")
			}
		})
	}
}

func TestEmbeddedMigrationsApply(t *testing.T) {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		t.Fatalf("fs.Sub failed: %v", err)
	}
	db := setupTestDB(t)
	runner := NewRunner(db, sub)

	if _, err := runner.Apply(nil); err != nil {
		t.Fatalf("embedded migrations failed: %v", err)
	}
	for _, table := range []string{"settings", "weeks", "sync_events"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s missing after embedded migrations", table)
		}
	}
}
