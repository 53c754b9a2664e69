package storage

import (
	"errors"
	"fmt"

	"github.com/julianstephens/weekdiary/internal/isoweek"
)

// ErrNotFound reports that no file exists for a week. It signals absence,
// not failure.
var ErrNotFound = errors.New("week not found")

// ConflictError reports a write rejected because the stored revision moved.
type ConflictError struct {
	Week     isoweek.WeekID
	Expected Revision
	Actual   Revision
}

func (e *ConflictError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("conflict saving %s: stored revision changed since %q", e.Week, e.Expected)
	}
	return fmt.Sprintf("conflict saving %s: expected revision %q, found %q", e.Week, e.Expected, e.Actual)
}

// ErrorKind classifies a StorageError.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindAuth      ErrorKind = "auth"
	KindStatus    ErrorKind = "status"
	KindDecode    ErrorKind = "decode"
	KindIO        ErrorKind = "io"
)

// StorageError wraps a failure talking to a store.
type StorageError struct {
	Op         string
	Week       string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *StorageError) Error() string {
	msg := e.Op
	if e.Week != "" {
		msg += " " + e.Week
	}
	msg += ": " + string(e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsConflict reports whether err is or wraps a *ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsAuth reports whether err is an authentication or authorization failure.
func IsAuth(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Kind == KindAuth
}

// IsTransport reports whether err is a network failure where no HTTP response
// was received.
func IsTransport(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Kind == KindTransport
}
