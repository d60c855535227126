// Package trace provides a small Tracer for writing internal step output to stderr
// when --trace is set. No-op when the writer is nil.
package trace

import (
	"fmt"
	"io"
	"strings"
)

const prefix = "[autocommit:trace]"

// Tracer writes sectioned trace output. When the underlying writer is nil, all methods no-op.
type Tracer struct {
	w       io.Writer
	session string
}

// New returns a Tracer that writes to w. If w is nil, all methods no-op.
func New(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// WithSession returns a Tracer whose section headers carry id, so output from
// one commit session can be told apart in a shared log.
func (t *Tracer) WithSession(id string) *Tracer {
	if t == nil {
		return nil
	}
	return &Tracer{w: t.w, session: id}
}

// Enabled returns true if the tracer has a non-nil writer.
func (t *Tracer) Enabled() bool {
	return t != nil && t.w != nil
}

// Section writes a section header: "\n[autocommit:trace] === name ===\n"
func (t *Tracer) Section(name string) {
	if !t.Enabled() {
		return
	}
	if t.session != "" {
		fmt.Fprintf(t.w, "\n%s %s === %s ===\n", prefix, t.session, name)
		return
	}
	fmt.Fprintf(t.w, "\n%s === %s ===\n", prefix, name)
}

// Printf writes to the trace writer when enabled. Format and args are as in fmt.Printf.
func (t *Tracer) Printf(format string, args ...interface{}) {
	if !t.Enabled() {
		return
	}
	fmt.Fprintf(t.w, format, args...)
}

// Block writes a labeled multi-line value, each line indented by two spaces.
func (t *Tracer) Block(label, text string) {
	if !t.Enabled() {
		return
	}
	fmt.Fprintf(t.w, "%s:\n", label)
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintf(t.w, "  %s\n", line)
	}
}
