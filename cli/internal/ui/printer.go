package ui

import (
	"fmt"
	"io"
	"strings"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiDim    = "\x1b[2m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
	ansiGray   = "\x1b[90m"
)

type glyphs struct {
	barStart, bar, barEnd, step, success, warn, fail string
	boxTop, boxBottom, boxSide                      string
}

var (
	unicodeGlyphs = glyphs{
		barStart: "┌", bar: "│", barEnd: "└", step: "◇", success: "✔", warn: "▲", fail: "✖",
		boxTop: "╭", boxBottom: "╰", boxSide: "│",
	}
	asciiGlyphs = glyphs{
		barStart: "T", bar: "|", barEnd: "—", step: "o", success: "√", warn: "!", fail: "x",
		boxTop: "+", boxBottom: "+", boxSide: "|",
	}
)

// Printer writes user-facing output. The zero value is not usable; use New.
type Printer struct {
	w     io.Writer
	caps  Capabilities
	glyph glyphs
}

// New returns a Printer writing to w with the given capabilities.
func New(w io.Writer, caps Capabilities) *Printer {
	g := asciiGlyphs
	if caps.Unicode {
		g = unicodeGlyphs
	}
	return &Printer{w: w, caps: caps, glyph: g}
}

func (p *Printer) paint(code, s string) string {
	if !p.caps.Color || s == "" {
		return s
	}
	return code + s + ansiReset
}

// Intro opens a session block.
func (p *Printer) Intro(title string) {
	fmt.Fprintf(p.w, "%s  %s\n", p.paint(ansiGray, p.glyph.barStart), p.paint(ansiBold, title))
}

// Outro closes a session block.
func (p *Printer) Outro(message string) {
	fmt.Fprintf(p.w, "%s\n%s  %s\n", p.paint(ansiGray, p.glyph.bar), p.paint(ansiGray, p.glyph.barEnd), message)
}

// Step reports progress.
func (p *Printer) Step(format string, args ...interface{}) {
	p.line(ansiCyan, p.glyph.step, fmt.Sprintf(format, args...))
}

// Success reports a completed action.
func (p *Printer) Success(format string, args ...interface{}) {
	p.line(ansiGreen, p.glyph.success, fmt.Sprintf(format, args...))
}

// Warn reports a non-fatal problem.
func (p *Printer) Warn(format string, args ...interface{}) {
	p.line(ansiYellow, p.glyph.warn, fmt.Sprintf(format, args...))
}

// Error reports a failure. A "Details:" line is added when details is non-empty.
func (p *Printer) Error(message, details string) {
	p.line(ansiRed, p.glyph.fail, message)
	if details != "" {
		p.Block("Details", details)
	}
}

func (p *Printer) line(color, marker, msg string) {
	lines := strings.Split(msg, "\n")
	fmt.Fprintf(p.w, "%s\n%s  %s\n", p.paint(ansiGray, p.glyph.bar), p.paint(color, marker), lines[0])
	for _, l := range lines[1:] {
		fmt.Fprintf(p.w, "%s  %s\n", p.paint(ansiGray, p.glyph.bar), l)
	}
}

// Block prints text inside a labelled box, one line per text line.
func (p *Printer) Block(label, text string) {
	side := p.paint(ansiGray, p.glyph.boxSide)
	fmt.Fprintf(p.w, "%s %s\n", p.paint(ansiGray, p.glyph.boxTop), p.paint(ansiBold, label))
	for _, l := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintf(p.w, "%s %s\n", side, l)
	}
	fmt.Fprintf(p.w, "%s\n", p.paint(ansiGray, p.glyph.boxBottom))
}

// Message shows a proposed commit message.
func (p *Printer) Message(msg string) {
	p.Block("Commit message", msg)
}

// Text writes s verbatim (status tables and similar preformatted output).
func (p *Printer) Text(s string) {
	fmt.Fprint(p.w, s)
}

// Summary is what CommitSummary prints about a new commit.
type Summary struct {
	Branch       string
	ShortHash    string
	Author       string
	Subject      string
	FilesChanged int
	Insertions   int
	Deletions    int
	CommitCount  int
}

// CommitSummary prints the result of a commit.
func (p *Printer) CommitSummary(s Summary) {
	p.Success("Committed [%s %s] %s", s.Branch, s.ShortHash, s.Subject)
	stats := fmt.Sprintf("%d %s changed, %s, %s",
		s.FilesChanged, plural(s.FilesChanged, "file", "files"),
		p.paint(ansiGreen, fmt.Sprintf("%d %s(+)", s.Insertions, plural(s.Insertions, "insertion", "insertions"))),
		p.paint(ansiRed, fmt.Sprintf("%d %s(-)", s.Deletions, plural(s.Deletions, "deletion", "deletions"))))
	fmt.Fprintf(p.w, "%s  %s\n", p.paint(ansiGray, p.glyph.bar), stats)
	fmt.Fprintf(p.w, "%s  %s\n", p.paint(ansiGray, p.glyph.bar), p.paint(ansiDim, fmt.Sprintf("author %s, commit #%d on %s", s.Author, s.CommitCount, s.Branch)))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
