// Package minify shrinks a staged diff before it is sent to the model by
// reducing whitespace inside hunks of files whose language ignores it.
// Sections for whitespace-sensitive files are kept byte for byte.
package minify

import (
	"path"
	"regexp"
	"strings"

	"github.com/sabry-awad97/autocommit/cli/internal/diff"
)

var hunkHeaderRegex = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+\d+(?:,\d+)? @@`)

// compactExts are extensions whose content may lose indentation and runs of
// spaces without changing what the change means to a reader.
var compactExts = map[string]bool{
	".go": true, ".rs": true, ".c": true, ".h": true, ".cc": true, ".cpp": true, ".hpp": true,
	".java": true, ".kt": true, ".swift": true, ".cs": true, ".php": true,
	".js": true, ".jsx": true, ".ts": true, ".tsx": true, ".mjs": true,
	".css": true, ".scss": true, ".json": true,
}

// Compactable reports whether the file at p tolerates whitespace reduction.
func Compactable(p string) bool {
	return compactExts[strings.ToLower(path.Ext(p))]
}

// Diff returns text with the hunks of every compactable file minified: each
// body line keeps its first column (space, -, +), loses leading whitespace,
// and has runs of spaces and tabs collapsed to one space.
func Diff(text string) (string, error) {
	files, err := diff.Parse(text)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return text, nil
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, f := range files {
		if f.Binary || !Compactable(f.Path) {
			b.WriteString(f.Raw)
			continue
		}
		b.WriteString(section(f.Raw))
	}
	return b.String(), nil
}

// section minifies the hunk bodies of one file section. Header lines before
// the first @@ and "\ No newline" markers are unchanged.
func section(raw string) string {
	lines := strings.Split(raw, "\n")
	inHunk := false
	for i, line := range lines {
		if hunkHeaderRegex.MatchString(line) {
			inHunk = true
			continue
		}
		if !inHunk || line == "" {
			continue
		}
		switch line[0] {
		case ' ', '+', '-':
			lines[i] = line[:1] + collapseSpaces(strings.TrimLeft(line[1:], " \t"))
		}
	}
	return strings.Join(lines, "\n")
}

// collapseSpaces replaces runs of spaces (and tabs) with a single space.
func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	wasSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
			continue
		}
		wasSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
