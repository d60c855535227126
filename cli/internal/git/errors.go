package git

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRepository matches every RepositoryError.
	ErrRepository = errors.New("git operation failed")
	// ErrNotARepository is returned by Open outside a work tree.
	ErrNotARepository = errors.New("not a git repository")
	// ErrNothingToCommit is returned by Commit when the index matches HEAD.
	ErrNothingToCommit = errors.New("nothing to commit")
)

// RepositoryError is a failed git invocation with its captured stderr.
type RepositoryError struct {
	Op     string
	Args   []string
	Stderr string
	Err    error
}

func (e *RepositoryError) Error() string {
	msg := e.Stderr
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		return fmt.Sprintf("git %s failed", e.Op)
	}
	return fmt.Sprintf("git %s: %s", e.Op, firstLines(msg, 6))
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRepository) true for any RepositoryError.
func (e *RepositoryError) Is(target error) bool { return target == ErrRepository }

func firstLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = append(lines[:n], "...")
	}
	return strings.Join(lines, "\n")
}
