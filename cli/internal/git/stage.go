package git

import (
	"context"

	"github.com/sabry-awad97/autocommit/cli/internal/erruser"
)

// Stage adds paths to the index, including deletions. Ignored paths are skipped.
func (r *Repo) Stage(ctx context.Context, paths []string) error {
	paths = r.withoutIgnored(paths)
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--all", "--"}, paths...)
	if _, err := r.exec(ctx, args...); err != nil {
		return erruser.New("Could not stage files.", err)
	}
	return nil
}

// StageAll stages every changed file that .autoignore does not exclude.
func (r *Repo) StageAll(ctx context.Context) error {
	changed, err := r.ChangedFiles(ctx)
	if err != nil {
		return err
	}
	return r.Stage(ctx, changed)
}
