// Package git is the repository gateway: change detection, staging, staged
// diffs, commits, and remote synchronization, all by running the git CLI.
package git

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/sabry-awad97/autocommit/cli/internal/erruser"
	"github.com/sabry-awad97/autocommit/cli/internal/trace"
)

// Options configures Open.
type Options struct {
	Tracer *trace.Tracer
}

// Repo is a work tree. Zero value is not valid; use Open.
type Repo struct {
	root   string
	gitDir string
	ignore []string
	tracer *trace.Tracer
}

// Open resolves the repository containing dir and loads its .autoignore.
func Open(ctx context.Context, dir string, opts Options) (*Repo, error) {
	root, err := RepoRoot(dir)
	if err != nil {
		return nil, err
	}
	out, err := run(ctx, root, minimalEnv(), "rev-parse", "--absolute-git-dir")
	if err != nil {
		return nil, erruser.New("Could not locate the .git directory.", err)
	}
	ignore, err := LoadIgnore(root)
	if err != nil {
		return nil, err
	}
	return &Repo{
		root:   root,
		gitDir: strings.TrimSpace(out),
		ignore: ignore,
		tracer: opts.Tracer,
	}, nil
}

// Root returns the absolute work tree path.
func (r *Repo) Root() string { return r.root }

// GitDir returns the absolute .git directory (for worktrees, the per-worktree dir).
func (r *Repo) GitDir() string { return r.gitDir }

func (r *Repo) query(ctx context.Context, args ...string) (string, error) {
	r.tracer.Printf("git %s\n", strings.Join(args, " "))
	return run(ctx, r.root, minimalEnv(), args...)
}

func (r *Repo) exec(ctx context.Context, args ...string) (string, error) {
	r.tracer.Printf("git %s\n", strings.Join(args, " "))
	return run(ctx, r.root, userEnv(), args...)
}

func (r *Repo) execInput(ctx context.Context, env []string, input string, args ...string) (string, error) {
	r.tracer.Printf("git %s\n", strings.Join(args, " "))
	return runInput(ctx, r.root, env, input, args...)
}

// RepoRoot returns the absolute path of the git repository root containing dir.
// Runs "git rev-parse --show-toplevel" with Dir=dir. Returns an error matching
// ErrNotARepository if dir is not inside a work tree.
func RepoRoot(dir string) (string, error) {
	out, err := run(context.Background(), dir, minimalEnv(), "rev-parse", "--show-toplevel")
	if err != nil {
		return "", erruser.New("This directory is not inside a Git repository.", errors.Join(ErrNotARepository, err))
	}
	root := strings.TrimSpace(out)
	return filepath.Abs(root)
}

// RevParse resolves ref to a full SHA.
func (r *Repo) RevParse(ctx context.Context, ref string) (string, error) {
	out, err := r.query(ctx, "rev-parse", "--verify", ref)
	if err != nil {
		return "", erruser.New("Invalid ref or commit.", err)
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the checked-out branch ("HEAD" when detached).
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.query(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		// Unborn branch: no commits yet.
		out, err = r.query(ctx, "symbolic-ref", "--short", "HEAD")
		if err != nil {
			return "", erruser.New("Could not read the current branch.", err)
		}
	}
	return strings.TrimSpace(out), nil
}

// Identity returns git's configured user.name and user.email for dir. Unset
// values are returned empty; it never fails.
func Identity(dir string) (name, email string) {
	ctx := context.Background()
	if out, err := run(ctx, dir, minimalEnv(), "config", "--get", "user.name"); err == nil {
		name = strings.TrimSpace(out)
	}
	if out, err := run(ctx, dir, minimalEnv(), "config", "--get", "user.email"); err == nil {
		email = strings.TrimSpace(out)
	}
	return name, email
}
