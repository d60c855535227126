// Package diff parses staged unified diffs and filters out files that add
// noise to a commit message prompt.
//
// # Excluded files
// By default, lock files, checksums, and minified assets are dropped from the
// text sent to the model: *.lock, package-lock.json, pnpm-lock.yaml, go.sum,
// *.min.js, *.min.css, and paths under vendor/. They remain staged and are
// committed; only the prompt leaves them out.
//
// # Binary files
// Binary sections ("Binary files ... differ") are kept; they are short and
// tell the model a binary asset changed.
package diff

import (
	"path/filepath"
	"strings"
)

// DefaultExcludePatterns are applied by Filter when patterns is nil.
var DefaultExcludePatterns = []string{
	"*.lock",
	"package-lock.json",
	"pnpm-lock.yaml",
	"go.sum",
	"*.min.js",
	"*.min.css",
	"vendor/",
}

// Result is a filtered diff.
type Result struct {
	Text     string
	Files    []File
	Excluded []string
}

// Filter parses text and drops file sections whose path matches patterns.
// A nil patterns slice means DefaultExcludePatterns; an empty one keeps all.
func Filter(text string, patterns []string) (Result, error) {
	if patterns == nil {
		patterns = DefaultExcludePatterns
	}
	files, err := Parse(text)
	if err != nil {
		return Result{}, err
	}
	var (
		res Result
		b   strings.Builder
	)
	for _, f := range files {
		if MatchAny(f.Path, patterns) {
			res.Excluded = append(res.Excluded, f.Path)
			continue
		}
		res.Files = append(res.Files, f)
		b.WriteString(f.Raw)
		if !strings.HasSuffix(f.Raw, "\n") {
			b.WriteString("\n")
		}
	}
	res.Text = b.String()
	return res, nil
}

// MatchAny reports whether path matches any pattern. Patterns are
// filepath.Match globs tried against the full slash path and the base name;
// a pattern ending in "/" (or "/*", "/**") matches everything under that directory.
// Malformed patterns never match.
func MatchAny(path string, patterns []string) bool {
	path = filepath.ToSlash(strings.TrimPrefix(path, "./"))
	for _, p := range patterns {
		p = strings.TrimSpace(filepath.ToSlash(p))
		if p == "" {
			continue
		}
		if dir, ok := dirPattern(p); ok {
			if path == dir || strings.HasPrefix(path, dir+"/") || strings.Contains(path, "/"+dir+"/") {
				return true
			}
			continue
		}
		if ok, err := filepath.Match(p, path); err == nil && ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, err := filepath.Match(p, filepath.Base(path)); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func dirPattern(p string) (string, bool) {
	for _, suffix := range []string{"/**/*", "/**", "/*", "/"} {
		if strings.HasSuffix(p, suffix) {
			dir := strings.TrimSuffix(p, suffix)
			if dir != "" && !strings.ContainsAny(dir, "*?[") {
				return strings.TrimPrefix(dir, "/"), true
			}
		}
	}
	return "", false
}

// Stats sums added and removed lines over files.
func Stats(files []File) (added, removed int) {
	for _, f := range files {
		added += f.Added
		removed += f.Removed
	}
	return added, removed
}
