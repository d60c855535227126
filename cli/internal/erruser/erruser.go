// Package erruser provides errors whose Error() returns only a user-facing
// message; the cause stays reachable through Unwrap() so the CLI can print it
// on a separate "Details:" line.
package erruser

import (
	"errors"
	"fmt"
)

// Err pairs a one-line message meant for the person at the terminal with the
// technical cause (git stderr, HTTP status, parse error).
type Err struct {
	Msg string
	Err error
}

// Error returns the user-facing message only.
func (e *Err) Error() string {
	if e == nil {
		return ""
	}
	return e.Msg
}

// Unwrap returns the underlying cause. Safe on a nil receiver.
func (e *Err) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New returns an error with the given user-facing message. If err is non-nil
// it is wrapped; otherwise a plain error carrying msg is returned.
func New(msg string, err error) error {
	if err == nil {
		return errors.New(msg)
	}
	return &Err{Msg: msg, Err: err}
}

// Newf is New with a formatted message.
func Newf(err error, format string, args ...any) error {
	return New(fmt.Sprintf(format, args...), err)
}

// Details returns the text of the cause behind a user-facing error, or "" when
// err carries no cause or the cause repeats the message.
func Details(err error) string {
	if err == nil {
		return ""
	}
	u := errors.Unwrap(err)
	if u == nil {
		return ""
	}
	if d := u.Error(); d != err.Error() {
		return d
	}
	return ""
}
