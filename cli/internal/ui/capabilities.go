// Package ui prints the user-facing session output: intro and outro bars,
// step markers, warnings, error boxes, the proposed message and the commit
// summary. Colour and unicode support are detected once and passed by handle.
package ui

import (
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Capabilities describes what the output terminal can render.
type Capabilities struct {
	Color   bool
	Unicode bool
}

// LookupEnv matches os.LookupEnv; tests pass a map-backed func.
type LookupEnv func(key string) (string, bool)

// Detect inspects f and the environment. NO_COLOR disables colour,
// FORCE_COLOR enables it, otherwise colour needs a terminal and TERM != dumb.
func Detect(f *os.File, lookup LookupEnv) Capabilities {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	tty := f != nil && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	return detect(tty, runtime.GOOS, lookup)
}

func detect(tty bool, goos string, lookup LookupEnv) Capabilities {
	return Capabilities{Color: colorSupported(tty, lookup), Unicode: unicodeSupported(goos, lookup)}
}

func colorSupported(tty bool, lookup LookupEnv) bool {
	if _, ok := lookup("NO_COLOR"); ok {
		return false
	}
	if _, ok := lookup("FORCE_COLOR"); ok {
		return true
	}
	term, _ := lookup("TERM")
	return tty && term != "dumb"
}

func unicodeSupported(goos string, lookup LookupEnv) bool {
	term, _ := lookup("TERM")
	if goos != "windows" {
		return term != "linux"
	}
	for _, k := range []string{"CI", "WT_SESSION", "TERMINUS_SUBLIME"} {
		if _, ok := lookup(k); ok {
			return true
		}
	}
	if v, _ := lookup("ConEmuTask"); v == "{cmd::Cmder}" {
		return true
	}
	switch v, _ := lookup("TERM_PROGRAM"); v {
	case "Terminus-Sublime", "vscode":
		return true
	}
	if v, _ := lookup("TERMINAL_EMULATOR"); v == "JetBrains-JediTerm" {
		return true
	}
	return term == "xterm-256color" || term == "alacritty"
}

// Writer returns f wrapped so ANSI sequences render on Windows consoles.
// Without colour the sequences are never written, so f is returned as is.
func Writer(f *os.File, caps Capabilities) io.Writer {
	if !caps.Color {
		return f
	}
	return colorable.NewColorable(f)
}
