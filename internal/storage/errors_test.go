package storage

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/julianstephens/weekdiary/internal/isoweek"
)

func TestStorageErrorMessage(t *testing.T) {
	err := &StorageError{Op: "save", Week: "2025-W01", Kind: KindAuth, StatusCode: 401, Err: errors.New("bad credentials")}
	want := "save 2025-W01: auth (HTTP 401): bad credentials"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorPredicates(t *testing.T) {
	conflict := fmt.Errorf("pushing: %w", &ConflictError{Week: isoweek.WeekID{Year: 2025, Week: 1}, Expected: "a", Actual: "b"})
	if !IsConflict(conflict) {
		t.Error("IsConflict() = false for wrapped conflict")
	}
	if IsAuth(conflict) {
		t.Error("IsAuth() = true for conflict")
	}
	if !strings.Contains(conflict.Error(), `expected revision "a", found "b"`) {
		t.Errorf("unexpected conflict message %q", conflict.Error())
	}

	auth := fmt.Errorf("loading: %w", &StorageError{Op: "load", Kind: KindAuth})
	if !IsAuth(auth) {
		t.Error("IsAuth() = false for wrapped auth error")
	}

	inner := errors.New("boom")
	wrapped := &StorageError{Op: "load", Kind: KindTransport, Err: inner}
	if !errors.Is(wrapped, inner) {
		t.Error("StorageError does not unwrap to its cause")
	}
	if !IsTransport(fmt.Errorf("saving: %w", wrapped)) {
		t.Error("IsTransport() = false for wrapped transport error")
	}
	if IsTransport(auth) || IsTransport(conflict) {
		t.Error("IsTransport() = true for non-transport error")
	}
}
