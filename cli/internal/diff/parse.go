package diff

import (
	"bufio"
	"regexp"
	"strings"
)

// binaryMarker is the prefix git uses when a file is binary.
const binaryMarker = "Binary files "

// hunkHeader matches @@ -oldStart,oldCount +newStart,newCount @@ optional
var hunkHeaderRegex = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+\d+(?:,\d+)? @@`)

// File is one file's section of a unified diff.
type File struct {
	Path    string // path relative to repo root (new side; old side for deletions)
	Raw     string // the full section, starting at "diff --git"
	Binary  bool
	Hunks   int
	Added   int
	Removed int
}

// Parse splits the output of `git diff --no-color` into per-file sections
// and counts added/removed lines. Empty diff produces nil.
func Parse(diffOutput string) ([]File, error) {
	if strings.TrimSpace(diffOutput) == "" {
		return nil, nil
	}
	var files []File
	for _, section := range splitByFileSections(diffOutput) {
		if strings.TrimSpace(section) == "" {
			continue
		}
		f, err := parseFileSection(section)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// splitByFileSections splits diff output by "diff --git " so each section
// is one file's diff (or one binary notice).
func splitByFileSections(out string) []string {
	const prefix = "diff --git "
	var sections []string
	start := 0
	for {
		i := strings.Index(out[start:], prefix)
		if i < 0 {
			if start < len(out) && strings.TrimSpace(out[start:]) != "" {
				sections = append(sections, out[start:])
			}
			break
		}
		pos := start + i
		if pos > start && strings.TrimSpace(out[start:pos]) != "" {
			sections = append(sections, out[start:pos])
		}
		start = pos
		next := strings.Index(out[start+len(prefix):], "\n"+prefix)
		if next < 0 {
			sections = append(sections, out[start:])
			break
		}
		end := start + len(prefix) + next + 1
		sections = append(sections, out[start:end])
		start = end
	}
	return sections
}

func parseFileSection(section string) (File, error) {
	f := File{Raw: section}
	scanner := bufio.NewScanner(strings.NewReader(section))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var (
		pathA, pathB string
		inHunk       bool
	)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "diff --git "):
			pathA, pathB = parseDiffGitLine(line)
		case !inHunk && strings.HasPrefix(line, "--- "):
			if p := parsePathLine(line, "--- "); p != "/dev/null" && pathA == "" {
				pathA = p
			}
		case !inHunk && strings.HasPrefix(line, "+++ "):
			if p := parsePathLine(line, "+++ "); p != "/dev/null" {
				pathB = p
			} else {
				// deletion: keep the old path
				pathB = pathA
			}
		case strings.HasPrefix(line, binaryMarker):
			f.Binary = true
		case hunkHeaderRegex.MatchString(line):
			inHunk = true
			f.Hunks++
		case inHunk && strings.HasPrefix(line, "+"):
			f.Added++
		case inHunk && strings.HasPrefix(line, "-"):
			f.Removed++
		}
	}
	if err := scanner.Err(); err != nil {
		return File{}, err
	}
	f.Path = pathB
	if f.Path == "" {
		f.Path = pathA
	}
	return f, nil
}

func parseDiffGitLine(line string) (a, b string) {
	// "diff --git a/path b/path"
	rest := strings.TrimPrefix(line, "diff --git ")
	parts := strings.Fields(rest)
	if len(parts) >= 2 {
		a = trimDiffPath(parts[0])
		b = trimDiffPath(parts[len(parts)-1])
	}
	return a, b
}

func trimDiffPath(s string) string {
	if len(s) >= 2 && (s[0] == 'a' || s[0] == 'b') && s[1] == '/' {
		return s[2:]
	}
	return s
}

func parsePathLine(line, prefix string) string {
	s := strings.TrimPrefix(line, prefix)
	// "/dev/null" or "a/path" or "b/path"
	if idx := strings.Index(s, "\t"); idx >= 0 {
		s = s[:idx]
	}
	return trimDiffPath(s)
}
