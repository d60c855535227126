package commitmsg

import (
	"context"

	"github.com/sabry-awad97/autocommit/cli/internal/openai"
	"github.com/sabry-awad97/autocommit/cli/internal/prompt"
	"github.com/sabry-awad97/autocommit/cli/internal/trace"
)

// Generator produces a completion for a message sequence.
type Generator interface {
	Generate(ctx context.Context, messages []prompt.Message) (string, error)
}

// Suggestion is one cleaned commit message and the budget of its request.
type Suggestion struct {
	Message string
	Budget  Budget
}

// Suggester asks a Generator for commit messages. Every call starts from a
// freshly composed context; earlier contexts are never reused.
type Suggester struct {
	composer *Composer
	gen      Generator
	tracer   *trace.Tracer
}

// NewSuggester returns a Suggester. tracer may be nil.
func NewSuggester(composer *Composer, gen Generator, tracer *trace.Tracer) *Suggester {
	return &Suggester{composer: composer, gen: gen, tracer: tracer}
}

// Suggest generates a first message for diff.
func (s *Suggester) Suggest(ctx context.Context, diff string) (Suggestion, error) {
	c, budget := s.composer.Initial(diff)
	return s.generate(ctx, c, budget)
}

// Regenerate asks for an alternative to previous.
func (s *Suggester) Regenerate(ctx context.Context, diff, previous string) (Suggestion, error) {
	c, budget := s.composer.Regenerate(diff, previous)
	return s.generate(ctx, c, budget)
}

func (s *Suggester) generate(ctx context.Context, c *prompt.Context, budget Budget) (Suggestion, error) {
	s.tracer.Printf("prompt: %d messages, ~%d tokens, truncated=%t\n", c.Len(), budget.Tokens, budget.Truncated)
	raw, err := s.gen.Generate(ctx, c.Messages())
	if err != nil {
		return Suggestion{Budget: budget}, err
	}
	msg := Clean(raw)
	if msg == "" {
		return Suggestion{Budget: budget}, &openai.GenerationError{Kind: openai.ErrNoCompletion}
	}
	return Suggestion{Message: msg, Budget: budget}, nil
}
