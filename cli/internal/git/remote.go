package git

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/sabry-awad97/autocommit/cli/internal/erruser"
)

// Remotes returns configured remote names in git's order.
func (r *Repo) Remotes(ctx context.Context) ([]string, error) {
	out, err := r.query(ctx, "remote")
	if err != nil {
		return nil, erruser.New("Could not list remotes.", err)
	}
	var remotes []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			remotes = append(remotes, line)
		}
	}
	return remotes, nil
}

// Push runs `git push --verbose remote HEAD`, pushing the current branch to
// the same name, or `remote HEAD:branch` when branch is set. Never forces.
func (r *Repo) Push(ctx context.Context, remote, branch string) error {
	refspec := "HEAD"
	if branch != "" {
		refspec = "HEAD:" + branch
	}
	args := []string{"push", "--verbose", remote, refspec}
	if _, err := r.exec(ctx, args...); err != nil {
		return erruser.Newf(err, "Failed to push to %s.", remote)
	}
	return nil
}

// Pull merges the current branch from remote. A branch that does not exist
// on the remote yet has nothing to pull and returns nil.
func (r *Repo) Pull(ctx context.Context, remote string) error {
	branch, err := r.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	exists, err := r.remoteHasBranch(ctx, remote, branch)
	if err != nil {
		return erruser.Newf(err, "Could not reach %s.", remote)
	}
	if !exists {
		r.tracer.Printf("remote %s has no branch %s; skipping pull\n", remote, branch)
		return nil
	}
	if _, err := r.exec(ctx, "pull", "--no-edit", remote, branch); err != nil {
		return erruser.Newf(err, "Failed to pull from %s.", remote)
	}
	return nil
}

// remoteHasBranch uses `git ls-remote --exit-code`, which exits 2 when no ref matches.
func (r *Repo) remoteHasBranch(ctx context.Context, remote, branch string) (bool, error) {
	_, err := r.exec(ctx, "ls-remote", "--exit-code", "--heads", remote, "refs/heads/"+branch)
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 2 {
		return false, nil
	}
	return false, err
}
