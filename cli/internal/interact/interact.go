// Package interact asks the user questions during a commit session.
// Every prompt either yields a typed answer or ErrNoAnswer.
package interact

import (
	"errors"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrNoAnswer means the user gave no answer: interrupt, escape, an empty
// selection or empty text, or no terminal to ask on.
var ErrNoAnswer = errors.New("no answer")

// Prompter is the set of questions the commit workflow asks.
type Prompter interface {
	Confirm(message string, def bool) (bool, error)
	ChooseOne(message string, items []string) (int, error)
	ChooseMany(message string, items []string) ([]int, error)
	FreeText(message, def string) (string, error)
}

type askFunc func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error

// Survey prompts on a terminal.
type Survey struct {
	ask  askFunc
	opts []survey.AskOpt
}

// NewSurvey returns a terminal prompter reading and writing stdio.
func NewSurvey(stdio terminal.Stdio) *Survey {
	return &Survey{
		ask:  survey.AskOne,
		opts: []survey.AskOpt{survey.WithStdio(stdio.In, stdio.Out, stdio.Err)},
	}
}

// Confirm asks a yes/no question.
func (s *Survey) Confirm(message string, def bool) (bool, error) {
	var ok bool
	if err := s.run(&survey.Confirm{Message: message, Default: def}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ChooseOne asks for exactly one of items and returns its index.
func (s *Survey) ChooseOne(message string, items []string) (int, error) {
	if len(items) == 0 {
		return 0, ErrNoAnswer
	}
	var idx int
	if err := s.run(&survey.Select{Message: message, Options: items}, &idx); err != nil {
		return 0, err
	}
	return idx, nil
}

// ChooseMany asks for a subset of items and returns the chosen indexes in
// item order. An empty selection is ErrNoAnswer.
func (s *Survey) ChooseMany(message string, items []string) ([]int, error) {
	if len(items) == 0 {
		return nil, ErrNoAnswer
	}
	var idx []int
	if err := s.run(&survey.MultiSelect{Message: message, Options: items, PageSize: 15}, &idx); err != nil {
		return nil, err
	}
	if len(idx) == 0 {
		return nil, ErrNoAnswer
	}
	return idx, nil
}

// FreeText asks for a line of text prefilled with def. Blank input is ErrNoAnswer.
func (s *Survey) FreeText(message, def string) (string, error) {
	var text string
	if err := s.run(&survey.Input{Message: message, Default: def}, &text); err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoAnswer
	}
	return text, nil
}

func (s *Survey) run(p survey.Prompt, response interface{}) error {
	err := s.ask(p, response, s.opts...)
	if err == nil {
		return nil
	}
	if errors.Is(err, terminal.InterruptErr) || errors.Is(err, io.EOF) {
		return ErrNoAnswer
	}
	return err
}

// NonInteractive answers without a terminal: confirmations take their
// default, every other question is ErrNoAnswer.
type NonInteractive struct{}

// Confirm returns def.
func (NonInteractive) Confirm(_ string, def bool) (bool, error) { return def, nil }

// ChooseOne returns ErrNoAnswer.
func (NonInteractive) ChooseOne(string, []string) (int, error) { return 0, ErrNoAnswer }

// ChooseMany returns ErrNoAnswer.
func (NonInteractive) ChooseMany(string, []string) ([]int, error) { return nil, ErrNoAnswer }

// FreeText returns ErrNoAnswer.
func (NonInteractive) FreeText(string, string) (string, error) { return "", ErrNoAnswer }
