package git

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/sabry-awad97/autocommit/cli/internal/erruser"
)

// Entry is one path from git status.
type Entry struct {
	Path string
	// Index and WorkTree are the porcelain status letters (e.g. 'M', 'A', '?', ' ').
	Index    byte
	WorkTree byte
}

// Staged reports whether the entry has changes in the index.
func (e Entry) Staged() bool {
	return e.Index != ' ' && e.Index != '?' && e.Index != '!'
}

// Changed reports whether the entry has unstaged or untracked changes.
func (e Entry) Changed() bool {
	return e.WorkTree != ' ' && e.WorkTree != '!'
}

// Status returns porcelain entries, untracked files expanded, .autoignore applied.
// Renames are reported as a deletion and an addition so both paths can be
// staged and diffed.
func (r *Repo) Status(ctx context.Context) ([]Entry, error) {
	out, err := r.query(ctx, "status", "--porcelain=v1", "-z", "--untracked-files=all", "--no-renames")
	if err != nil {
		return nil, erruser.New("Could not check working tree status.", err)
	}
	entries := parsePorcelain(out)
	kept := entries[:0]
	for _, e := range entries {
		if !r.Ignored(e.Path) {
			kept = append(kept, e)
		}
	}
	return kept, nil
}

// parsePorcelain parses `git status --porcelain=v1 -z`. Rename and copy
// records are followed by the original path, which is skipped.
func parsePorcelain(out string) []Entry {
	fields := strings.Split(out, "\x00")
	var entries []Entry
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if len(f) < 4 {
			continue
		}
		e := Entry{Index: f[0], WorkTree: f[1], Path: f[3:]}
		if e.Index == 'R' || e.Index == 'C' {
			i++
		}
		entries = append(entries, e)
	}
	return entries
}

// ChangedFiles returns paths with unstaged or untracked changes, sorted.
func (r *Repo) ChangedFiles(ctx context.Context) ([]string, error) {
	entries, err := r.Status(ctx)
	if err != nil {
		return nil, err
	}
	return collect(entries, Entry.Changed), nil
}

// StagedFiles returns paths with staged changes, sorted.
func (r *Repo) StagedFiles(ctx context.Context) ([]string, error) {
	entries, err := r.Status(ctx)
	if err != nil {
		return nil, err
	}
	return collect(entries, Entry.Staged), nil
}

func collect(entries []Entry, keep func(Entry) bool) []string {
	var out []string
	for _, e := range entries {
		if keep(e) {
			out = append(out, e.Path)
		}
	}
	sort.Strings(out)
	return out
}

// StatusSummary renders the working tree as a table of staged and unstaged paths.
func (r *Repo) StatusSummary(ctx context.Context) (string, error) {
	entries, err := r.Status(ctx)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "Working tree clean.\n", nil
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tCHANGE\tPATH")
	for _, e := range entries {
		if e.Staged() {
			fmt.Fprintf(tw, "staged\t%s\t%s\n", describe(e.Index), e.Path)
		}
		if e.Changed() {
			fmt.Fprintf(tw, "unstaged\t%s\t%s\n", describe(e.WorkTree), e.Path)
		}
	}
	if err := tw.Flush(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func describe(code byte) string {
	switch code {
	case 'M':
		return "modified"
	case 'A':
		return "added"
	case 'D':
		return "deleted"
	case 'R':
		return "renamed"
	case 'C':
		return "copied"
	case 'T':
		return "type changed"
	case 'U':
		return "unmerged"
	case '?':
		return "untracked"
	default:
		return string(code)
	}
}
