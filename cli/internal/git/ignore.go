package git

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/sabry-awad97/autocommit/cli/internal/diff"
	"github.com/sabry-awad97/autocommit/cli/internal/erruser"
)

// IgnoreFile lists paths autocommit never stages or reports, one glob per
// line; blank lines and lines starting with # are skipped.
const IgnoreFile = ".autoignore"

// LoadIgnore reads root/.autoignore. A missing file yields no patterns.
func LoadIgnore(root string) ([]string, error) {
	f, err := os.Open(filepath.Join(root, IgnoreFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, erruser.New("Could not read .autoignore.", err)
	}
	defer f.Close()
	var patterns []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := sc.Err(); err != nil {
		return nil, erruser.New("Could not read .autoignore.", err)
	}
	return patterns, nil
}

// Ignored reports whether path matches .autoignore.
func (r *Repo) Ignored(path string) bool {
	return len(r.ignore) > 0 && diff.MatchAny(path, r.ignore)
}

func (r *Repo) withoutIgnored(paths []string) []string {
	if len(r.ignore) == 0 {
		return paths
	}
	out := paths[:0:0]
	for _, p := range paths {
		if !r.Ignored(p) {
			out = append(out, p)
		}
	}
	return out
}
