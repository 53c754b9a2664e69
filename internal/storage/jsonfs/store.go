// Package jsonfs stores week files in a local directory using the same
// layout as the remote repository.
package jsonfs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/julianstephens/weekdiary/internal/isoweek"
	"github.com/julianstephens/weekdiary/internal/models"
	"github.com/julianstephens/weekdiary/internal/storage"
)

const (
	fileSuffix   = ".json"
	settingsFile = "settings.json"
)

type settingsDoc struct {
	Version   int               `json:"version"`
	Settings  map[string]string `json:"settings"`
	ItemCache []string          `json:"item_cache"`
}

type Store struct {
	root string
	mu   sync.Mutex
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

// Init creates the store directory.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.root, 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	return nil
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) weekPath(id isoweek.WeekID) string {
	return filepath.Join(s.root, id.String()+fileSuffix)
}

// Revision returns the content revision used by this store.
func Revision(data []byte) storage.Revision {
	sum := sha256.Sum256(data)
	return storage.Revision(hex.EncodeToString(sum[:]))
}

func (s *Store) read(id isoweek.WeekID) ([]byte, storage.Revision, error) {
	data, err := os.ReadFile(s.weekPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", storage.ErrNotFound
		}
		return nil, "", &storage.StorageError{Op: "read", Week: id.String(), Kind: storage.KindIO, Err: err}
	}
	return data, Revision(data), nil
}

func (s *Store) Load(ctx context.Context, id isoweek.WeekID) (*models.WeekRecord, storage.Revision, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, rev, err := s.read(id)
	if err != nil {
		return nil, "", err
	}
	rec, err := models.DecodeWeek(data)
	if err != nil {
		return nil, "", &storage.StorageError{Op: "load", Week: id.String(), Kind: storage.KindDecode, Err: err}
	}
	return rec, rev, nil
}

func (s *Store) Save(ctx context.Context, rec *models.WeekRecord, expected storage.Revision) (storage.Revision, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, current, err := s.read(rec.Week)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}
	if expected != "" && expected != current {
		return "", &storage.ConflictError{Week: rec.Week, Expected: expected, Actual: current}
	}

	data, err := models.EncodeWeek(rec)
	if err != nil {
		return "", &storage.StorageError{Op: "save", Week: rec.Week.String(), Kind: storage.KindDecode, Err: err}
	}
	if err := writeFileAtomic(s.weekPath(rec.Week), data); err != nil {
		return "", &storage.StorageError{Op: "save", Week: rec.Week.String(), Kind: storage.KindIO, Err: err}
	}
	return Revision(data), nil
}

func (s *Store) Delete(ctx context.Context, id isoweek.WeekID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.weekPath(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storage.ErrNotFound
		}
		return &storage.StorageError{Op: "delete", Week: id.String(), Kind: storage.KindIO, Err: err}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.root)
	if err != nil {
		return &storage.StorageError{Op: "ping", Kind: storage.KindIO, Err: err}
	}
	if !info.IsDir() {
		return &storage.StorageError{Op: "ping", Kind: storage.KindIO, Err: fmt.Errorf("%s is not a directory", s.root)}
	}
	return nil
}

// List returns the weeks stored in the directory, oldest first.
func (s *Store) List(ctx context.Context) ([]isoweek.WeekID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &storage.StorageError{Op: "list", Kind: storage.KindIO, Err: err}
	}

	var weeks []isoweek.WeekID
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		id, err := isoweek.Parse(strings.TrimSuffix(name, fileSuffix))
		if err != nil {
			continue
		}
		weeks = append(weeks, id)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	return weeks, nil
}

func (s *Store) loadSettingsDoc() (*settingsDoc, error) {
	doc := &settingsDoc{Version: 1, Settings: map[string]string{}}
	data, err := os.ReadFile(filepath.Join(s.root, settingsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if doc.Settings == nil {
		doc.Settings = map[string]string{}
	}
	return doc, nil
}

func (s *Store) saveSettingsDoc(doc *settingsDoc) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(s.root, settingsFile), data); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

func (s *Store) GetSettings() (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadSettingsDoc()
	if err != nil {
		return models.Settings{}, err
	}
	settings, err := models.MapToSettings(doc.Settings)
	if err != nil {
		return models.Settings{}, err
	}
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

func (s *Store) SaveSettings(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadSettingsDoc()
	if err != nil {
		return err
	}
	for k, v := range models.SettingsToMap(settings) {
		doc.Settings[k] = v
	}
	return s.saveSettingsDoc(doc)
}

func (s *Store) GetSetting(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadSettingsDoc()
	if err != nil {
		return "", err
	}
	value, ok := doc.Settings[key]
	if !ok {
		return "", fmt.Errorf("setting not found: %s", key)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadSettingsDoc()
	if err != nil {
		return err
	}
	doc.Settings[key] = value
	return s.saveSettingsDoc(doc)
}

func (s *Store) GetItemCache() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadSettingsDoc()
	if err != nil {
		return nil, err
	}
	return doc.ItemCache, nil
}

func (s *Store) SaveItemCache(items []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadSettingsDoc()
	if err != nil {
		return err
	}
	doc.ItemCache = append([]string(nil), items...)
	return s.saveSettingsDoc(doc)
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
