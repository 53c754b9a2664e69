// Package lock keeps a second interactive editor from opening the same
// diary. The lockfile records the owner's PID and executable name; a file
// whose process is gone, or now belongs to another program, is stale and
// gets replaced.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/weekdiary/internal/constants"
	"github.com/julianstephens/weekdiary/internal/logger"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
	executableFunc  = currentExecutable
)

// HeldError reports a lock owned by another live editor.
type HeldError struct {
	PID     int
	Since   time.Time
	Program string
}

func (e *HeldError) Error() string {
	return fmt.Sprintf("diary is already open in %s (PID %d) since %s",
		e.Program, e.PID, e.Since.Local().Format("2006-01-02 15:04"))
}

// Lock is a held editor lock.
type Lock struct {
	path string
	pid  int
}

type owner struct {
	pid     int
	program string
	since   time.Time
}

func currentExecutable() string {
	exe, err := os.Executable()
	if err != nil {
		return constants.AppName
	}
	return filepath.Base(exe)
}

// Acquire takes the editor lock in dir.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	path := filepath.Join(dir, constants.EditorLockfileName)
	pid := getpidFunc()
	content := fmt.Sprintf("%d|%s|%d\n", pid, executableFunc(), time.Now().Unix())

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			_, werr := f.WriteString(content)
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return nil, fmt.Errorf("failed to write lockfile: %w", errors.Join(werr, cerr))
			}
			logger.Debug("Acquired editor lock", "path", path, "pid", pid)
			return &Lock{path: path, pid: pid}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create lockfile: %w", err)
		}

		held, err := readOwner(path)
		if err == nil && alive(held) {
			return nil, &HeldError{PID: held.pid, Since: held.since, Program: held.program}
		}
		logger.Warn("Removing stale editor lock", "path", path, "reason", staleReason(held, err))
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}
	return nil, fmt.Errorf("could not acquire editor lock at %s", path)
}

func staleReason(o owner, err error) string {
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("process %d is not running", o.pid)
}

func readOwner(path string) (owner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return owner{}, err
	}
	parts := strings.Split(strings.TrimSpace(string(data)), "|")
	if len(parts) != 3 {
		return owner{}, errors.New("lockfile is malformed")
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return owner{}, errors.New("invalid process ID in lockfile")
	}
	if strings.TrimSpace(parts[1]) == "" {
		return owner{}, errors.New("program in lockfile is empty")
	}
	unix, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return owner{}, errors.New("invalid timestamp in lockfile")
	}
	return owner{pid: pid, program: parts[1], since: time.Unix(unix, 0)}, nil
}

// alive reports whether the recorded process still runs the same program.
// PIDs are recycled, so a live PID with another executable does not count.
func alive(o owner) bool {
	if o.pid == getpidFunc() {
		return true
	}
	proc, err := findProcessFunc(o.pid)
	if err != nil || proc == nil {
		return false
	}
	return proc.Executable() == o.program
}

// Release removes the lockfile if this process still owns it.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	held, err := readOwner(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if held.pid != l.pid {
		return fmt.Errorf("editor lock was taken over by PID %d", held.pid)
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	logger.Debug("Released editor lock", "path", l.path)
	return nil
}

func (l *Lock) Path() string {
	return l.path
}
