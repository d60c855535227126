package git

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/sabry-awad97/autocommit/cli/internal/erruser"
)

// CommitInfo describes a commit just created.
type CommitInfo struct {
	Message      string
	Branch       string
	Hash         string
	ShortHash    string
	Author       string
	FilesChanged int
	Insertions   int
	Deletions    int
	// CommitCount is the number of commits reachable from HEAD.
	CommitCount int
}

var (
	filesRegex      = regexp.MustCompile(`(\d+) files? changed`)
	insertionsRegex = regexp.MustCompile(`(\d+) insertions?\(\+\)`)
	deletionsRegex  = regexp.MustCompile(`(\d+) deletions?\(-\)`)
)

// Commit records the index with message. When name and email are both set
// they are passed as --author. Returns an error matching ErrNothingToCommit
// when the index has no changes.
func (r *Repo) Commit(ctx context.Context, message, name, email string) (CommitInfo, error) {
	args := []string{"commit", "--file=-", "--cleanup=whitespace"}
	if name != "" && email != "" {
		args = append(args, "--author="+name+" <"+email+">")
	}
	if _, err := r.execInput(ctx, commitEnv(), message, args...); err != nil {
		if nothingToCommit(err) {
			err = errors.Join(ErrNothingToCommit, err)
		}
		return CommitInfo{}, erruser.New("Failed to commit. Have you committed these changes manually?", err)
	}
	return r.HeadInfo(ctx, message)
}

func nothingToCommit(err error) bool {
	var re *RepositoryError
	if !errors.As(err, &re) {
		return false
	}
	return strings.Contains(re.Stderr, "nothing to commit") ||
		strings.Contains(re.Stderr, "no changes added to commit") ||
		strings.Contains(re.Stderr, "nothing added to commit")
}

// HeadInfo collects the summary of HEAD; message is echoed into the result.
func (r *Repo) HeadInfo(ctx context.Context, message string) (CommitInfo, error) {
	info := CommitInfo{Message: message}
	var err error
	if info.Hash, err = r.RevParse(ctx, "HEAD"); err != nil {
		return info, err
	}
	if len(info.Hash) >= 7 {
		info.ShortHash = info.Hash[:7]
	}
	if info.Branch, err = r.CurrentBranch(ctx); err != nil {
		return info, err
	}
	out, err := r.query(ctx, "log", "-1", "--format=%an <%ae>", "HEAD")
	if err != nil {
		return info, erruser.New("Could not read the commit summary.", err)
	}
	info.Author = strings.TrimSpace(out)
	out, err = r.query(ctx, "show", "--shortstat", "--format=", "HEAD")
	if err != nil {
		return info, erruser.New("Could not read the commit summary.", err)
	}
	info.FilesChanged, info.Insertions, info.Deletions = parseShortstat(out)
	if info.CommitCount, err = r.CommitCount(ctx); err != nil {
		return info, err
	}
	return info, nil
}

// CommitCount returns the number of commits reachable from HEAD (0 on an unborn branch).
func (r *Repo) CommitCount(ctx context.Context) (int, error) {
	out, err := r.query(ctx, "rev-list", "--count", "HEAD")
	if err != nil {
		if _, verr := r.query(ctx, "rev-parse", "--verify", "--quiet", "HEAD"); verr != nil {
			return 0, nil
		}
		return 0, erruser.New("Could not count commits.", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, erruser.New("Could not count commits.", err)
	}
	return n, nil
}

// parseShortstat parses " 2 files changed, 3 insertions(+), 1 deletion(-)".
func parseShortstat(s string) (files, insertions, deletions int) {
	atoi := func(re *regexp.Regexp) int {
		m := re.FindStringSubmatch(s)
		if m == nil {
			return 0
		}
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return atoi(filesRegex), atoi(insertionsRegex), atoi(deletionsRegex)
}
