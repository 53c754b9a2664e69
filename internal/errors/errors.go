package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/weekdiary/internal/isoweek"
	"github.com/julianstephens/weekdiary/internal/keyring"
	"github.com/julianstephens/weekdiary/internal/lock"
	"github.com/julianstephens/weekdiary/internal/logger"
	"github.com/julianstephens/weekdiary/internal/storage"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\nHint: " + hint
	}
	return msg
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint suggests a next step for errors the user can act on.
func Hint(err error) string {
	var (
		formatErr *isoweek.FormatError
		heldErr   *lock.HeldError
	)
	switch {
	case storage.IsConflict(err):
		return "the week changed remotely; run 'weekdiary pull' to discard local edits or 'weekdiary push --force' to overwrite"
	case storage.IsAuth(err):
		return "check the token with 'weekdiary config token' and that it can write to the repository"
	case stderrors.Is(err, keyring.ErrNotFound):
		return "store a token with 'weekdiary config token' or set WEEKDIARY_GITHUB_TOKEN"
	case stderrors.As(err, &formatErr):
		return "weeks are written as YYYY-Www (e.g. 2025-W07), a YYYY-MM-DD date, today, next or prev"
	case stderrors.As(err, &heldErr):
		return "close the other editor first"
	}
	return ""
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
