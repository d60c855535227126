package git

import (
	"context"
	"strings"

	"github.com/sabry-awad97/autocommit/cli/internal/diff"
	"github.com/sabry-awad97/autocommit/cli/internal/erruser"
)

// StagedDiff is the staged change text sent to the model.
type StagedDiff struct {
	Text string
	// Excluded lists staged paths left out of Text (lock files and similar).
	Excluded []string
	Added    int
	Removed  int
}

// StagedDiff returns the staged diff for paths (all staged files when empty).
// When every path is excluded, Text falls back to `git diff --cached --stat`
// so the model still sees which files changed.
func (r *Repo) StagedDiff(ctx context.Context, paths []string) (StagedDiff, error) {
	args := []string{"diff", "--cached", "--no-color", "--no-ext-diff", "--no-renames", "--"}
	args = append(args, paths...)
	out, err := r.query(ctx, args...)
	if err != nil {
		return StagedDiff{}, erruser.New("Could not read the staged diff.", err)
	}
	res, err := diff.Filter(out, nil)
	if err != nil {
		return StagedDiff{}, erruser.New("Could not parse the staged diff.", err)
	}
	added, removed := diff.Stats(res.Files)
	sd := StagedDiff{Text: res.Text, Excluded: res.Excluded, Added: added, Removed: removed}
	if strings.TrimSpace(sd.Text) == "" && len(res.Excluded) > 0 {
		statArgs := append([]string{"diff", "--cached", "--no-color", "--no-renames", "--stat", "--"}, paths...)
		stat, err := r.query(ctx, statArgs...)
		if err != nil {
			return StagedDiff{}, erruser.New("Could not read the staged diff.", err)
		}
		sd.Text = stat
	}
	return sd, nil
}
