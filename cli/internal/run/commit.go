// Package run implements the commit workflow: the state machine that stages
// changes, asks the model for a message, commits and pushes, and the Commit
// entry point that wires it to git, the completion API and the terminal.
package run

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/sabry-awad97/autocommit/cli/internal/config"
	"github.com/sabry-awad97/autocommit/cli/internal/git"
	"github.com/sabry-awad97/autocommit/cli/internal/interact"
	"github.com/sabry-awad97/autocommit/cli/internal/openai"
	"github.com/sabry-awad97/autocommit/cli/internal/session"
	"github.com/sabry-awad97/autocommit/cli/internal/trace"
	"github.com/sabry-awad97/autocommit/cli/internal/ui"
)

// CommitOptions configures Commit.
type CommitOptions struct {
	// Dir is any directory inside the work tree.
	Dir    string
	Config *config.Config
	Flags  Flags
	// Prompter asks the questions; nil answers non-interactively.
	Prompter interact.Prompter
	Printer  *ui.Printer
	// HTTPClient is the base client for the completion API; nil uses a default.
	HTTPClient *http.Client
	// TraceOut, when non-nil, receives internal trace output (--trace).
	TraceOut io.Writer
}

// Commit runs one commit session in the repository containing opts.Dir.
// Only one session per repository runs at a time; a second gets an error
// matching session.ErrLocked.
func Commit(ctx context.Context, opts CommitOptions) (Result, error) {
	cfg := opts.Config
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	prompter := opts.Prompter
	if prompter == nil {
		prompter = interact.NonInteractive{}
	}
	id := uuid.NewString()
	tracer := trace.New(opts.TraceOut).WithSession(id[:8])

	repo, err := git.Open(ctx, opts.Dir, git.Options{Tracer: tracer})
	if err != nil {
		return Result{State: StateFailed, Err: err}, err
	}
	release, err := session.AcquireLock(session.StateDir(repo.GitDir()))
	if err != nil {
		return Result{State: StateFailed, Err: err}, err
	}
	defer release()

	client := openai.NewClient(openai.Options{
		BaseURL:          cfg.APIHost,
		APIKey:           cfg.OpenAIAPIKey,
		Model:            cfg.OpenAIModel,
		Timeout:          cfg.Timeout,
		RateLimitRetries: cfg.RateLimitRetries,
		HTTPClient:       opts.HTTPClient,
		Tracer:           tracer,
	})
	if opts.Printer != nil {
		opts.Printer.Intro("autocommit")
	}
	o := New(Options{
		Repo:         repo,
		Generator:    client,
		Prompter:     prompter,
		Printer:      opts.Printer,
		Preferences:  cfg.Preferences(),
		Flags:        opts.Flags,
		ContextLimit: cfg.ContextLimit,
		Tracer:       tracer,
	})
	res, err := o.Run(ctx)
	if opts.Printer != nil {
		switch res.State {
		case StateDone:
			opts.Printer.Outro(doneMessage(res))
		case StateCancelled:
			opts.Printer.Outro("Cancelled.")
		}
	}
	return res, err
}

func doneMessage(res Result) string {
	switch {
	case len(res.Commits) == 0:
		return "Nothing to commit."
	case res.Pushes > 0:
		return "Committed and pushed."
	default:
		return "Committed."
	}
}
