// Package session guards a repository against two concurrent commit
// sessions with an advisory lock under the git directory. The lock file
// holds the PID of the process that owns it.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrLocked indicates the lock is already held by another autocommit
// process in the same repository.
var ErrLocked = errors.New("commit session already active")

// LockedError is returned by AcquireLock when the lock is held. PID is the
// holder's process id, or 0 when it could not be read.
type LockedError struct {
	Path string
	PID  int
}

func (e *LockedError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("%s (held by pid %d)", ErrLocked, e.PID)
	}
	return ErrLocked.Error()
}

// Is makes errors.Is(err, ErrLocked) true.
func (e *LockedError) Is(target error) bool { return target == ErrLocked }

const (
	stateDirName = "autocommit"
	lockFilename = "lock"
)

// StateDir returns the per-repository state directory, <gitDir>/autocommit.
func StateDir(gitDir string) string {
	return filepath.Join(gitDir, stateDirName)
}

// AcquireLock takes the non-blocking commit lock in stateDir, creating the
// directory if needed, and records the current PID in it. A held lock
// yields a *LockedError. Call release when the session ends.
func AcquireLock(stateDir string) (release func(), err error) {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("commit lock: create %s: %w", stateDir, err)
	}
	path := filepath.Join(stateDir, lockFilename)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("commit lock: open %s: %w", path, err)
	}
	if err := tryLock(f); err != nil {
		_ = f.Close()
		if errors.Is(err, ErrLocked) {
			return nil, &LockedError{Path: path, PID: holder(path)}
		}
		return nil, fmt.Errorf("commit lock: %s: %w", path, err)
	}
	release = func() {
		unlock(f)
		_ = f.Close()
	}
	if err := writePID(f); err != nil {
		release()
		return nil, fmt.Errorf("commit lock: record pid in %s: %w", path, err)
	}
	return release, nil
}

func writePID(f *os.File) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	_, err := f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	return err
}

// holder reads the PID recorded in the lock file; 0 when unreadable.
func holder(path string) int {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid <= 0 {
		return 0
	}
	return pid
}
