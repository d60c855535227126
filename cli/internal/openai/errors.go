package openai

import (
	"errors"
	"fmt"
)

// Kinds of GenerationError. Match with errors.Is.
var (
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrUnexpectedResponse = errors.New("unexpected response")
	ErrTransport          = errors.New("could not reach the completion endpoint")
	ErrNoCompletion       = errors.New("no message returned")
	ErrMissingAPIKey      = errors.New("OpenAI API key is not set")
)

// GenerationError is returned by Client.Generate. Kind is one of the sentinels
// above; Status and Body are set for HTTP-level failures.
type GenerationError struct {
	Kind   error
	Status int
	Body   string
	Err    error
}

func (e *GenerationError) Error() string {
	switch {
	case e.Status != 0 && e.Body != "":
		return fmt.Sprintf("%v: HTTP %d: %s", e.Kind, e.Status, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("%v: HTTP %d", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is reports whether target is this error's kind.
func (e *GenerationError) Is(target error) bool { return target == e.Kind }
