package run

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sabry-awad97/autocommit/cli/internal/commitmsg"
	"github.com/sabry-awad97/autocommit/cli/internal/config"
	"github.com/sabry-awad97/autocommit/cli/internal/erruser"
	"github.com/sabry-awad97/autocommit/cli/internal/git"
	"github.com/sabry-awad97/autocommit/cli/internal/interact"
	"github.com/sabry-awad97/autocommit/cli/internal/prompt"
	"github.com/sabry-awad97/autocommit/cli/internal/trace"
	"github.com/sabry-awad97/autocommit/cli/internal/ui"
)

// Repository is the git surface the workflow drives. *git.Repo implements it.
type Repository interface {
	ChangedFiles(ctx context.Context) ([]string, error)
	StagedFiles(ctx context.Context) ([]string, error)
	Stage(ctx context.Context, paths []string) error
	StageAll(ctx context.Context) error
	StagedDiff(ctx context.Context, paths []string) (git.StagedDiff, error)
	Commit(ctx context.Context, message, name, email string) (git.CommitInfo, error)
	Push(ctx context.Context, remote, branch string) error
	Pull(ctx context.Context, remote string) error
	Remotes(ctx context.Context) ([]string, error)
	StatusSummary(ctx context.Context) (string, error)
}

// Flags are the per-invocation switches of the commit command.
type Flags struct {
	StageAll               bool
	BranchName             string
	SkipChatbot            bool
	SkipPushConfirmation   bool
	SkipCommitConfirmation bool
}

// Options configures an Orchestrator. Repo, Generator and Prompter are required.
type Options struct {
	Repo      Repository
	Generator commitmsg.Generator
	Prompter  interact.Prompter
	// Printer receives user-facing output; nil discards it.
	Printer     *ui.Printer
	Preferences config.Preferences
	Flags       Flags
	// ContextLimit is the model window in tokens; 0 disables diff fitting.
	ContextLimit int
	// Builder assembles prompts; nil uses the default catalog.
	Builder *prompt.Builder
	Tracer  *trace.Tracer
}

// Result is the outcome of one workflow run.
type Result struct {
	State   State
	Commits []git.CommitInfo
	// Pushes counts successful pushes.
	Pushes int
	// Err is set when State is StateFailed.
	Err error
}

// Review choices offered in ReviewingMessage.
const (
	choiceCommit     = "Commit"
	choiceRegenerate = "Regenerate message"
	choiceEdit       = "Edit message"
	choiceCancel     = "Cancel"
)

// Orchestrator sequences staging, message generation, review, commit and
// push as an explicit state machine. Not safe for concurrent use; one
// Orchestrator serves one session.
type Orchestrator struct {
	repo      Repository
	suggester *commitmsg.Suggester
	prompter  interact.Prompter
	printer   *ui.Printer
	prefs     config.Preferences
	flags     Flags
	tracer    *trace.Tracer

	stageAll  bool
	toStage   []string // nil stages every changed file
	staged    []string
	diff      git.StagedDiff
	message   string
	generated bool
	regen     bool
	remote    string
	result    Result
}

// New returns an Orchestrator in StateIdle.
func New(opts Options) *Orchestrator {
	builder := opts.Builder
	if builder == nil {
		builder = prompt.NewBuilder(nil)
	}
	composer := commitmsg.NewComposer(builder, opts.Preferences, opts.ContextLimit)
	return &Orchestrator{
		repo:      opts.Repo,
		suggester: commitmsg.NewSuggester(composer, opts.Generator, opts.Tracer),
		prompter:  opts.Prompter,
		printer:   opts.Printer,
		prefs:     opts.Preferences,
		flags:     opts.Flags,
		tracer:    opts.Tracer,
		stageAll:  opts.Flags.StageAll,
	}
}

// Run drives the workflow to a terminal state. The returned error is
// Result.Err: non-nil only when the run ends in StateFailed.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	o.tracer.Section("commit session")
	state := StateCheckingChanges
	for !state.Terminal() {
		next, err := o.step(ctx, state)
		if err != nil {
			o.result.Err = err
			next = StateFailed
		}
		o.tracer.Printf("%s -> %s\n", state, next)
		state = next
	}
	o.result.State = state
	return o.result, o.result.Err
}

func (o *Orchestrator) step(ctx context.Context, s State) (State, error) {
	switch s {
	case StateCheckingChanges:
		return o.checkChanges(ctx)
	case StateStagingDecision:
		return o.decideStaging(ctx)
	case StateStaging:
		return o.stage(ctx)
	case StateCounting:
		return o.count(ctx)
	case StateGenerating:
		return o.generate(ctx)
	case StateReviewingMessage:
		return o.review()
	case StateCommitting:
		return o.commit(ctx)
	case StatePushDecision:
		return o.decidePush()
	case StateRemoteSelection:
		return o.selectRemote(ctx)
	case StatePulling:
		return o.pull(ctx)
	case StatePushing:
		return o.push(ctx)
	case StateLoopDecision:
		return o.decideLoop()
	}
	return StateFailed, fmt.Errorf("commit workflow: unexpected state %s", s)
}

func (o *Orchestrator) checkChanges(ctx context.Context) (State, error) {
	changed, err := o.repo.ChangedFiles(ctx)
	if err != nil {
		return StateFailed, err
	}
	staged, err := o.repo.StagedFiles(ctx)
	if err != nil {
		return StateFailed, err
	}
	if len(changed) == 0 && len(staged) == 0 {
		o.info(func(p *ui.Printer) { p.Step("No changes detected. Write some code and run again.") })
		return StateDone, nil
	}
	if summary, err := o.repo.StatusSummary(ctx); err == nil {
		o.info(func(p *ui.Printer) { p.Text(summary) })
	}
	o.staged = staged
	o.toStage = nil
	return StateStagingDecision, nil
}

func (o *Orchestrator) decideStaging(ctx context.Context) (State, error) {
	if o.stageAll {
		o.toStage = nil
		return StateStaging, nil
	}
	changed, err := o.repo.ChangedFiles(ctx)
	if err != nil {
		return StateFailed, err
	}
	if len(changed) == 0 {
		if len(o.staged) == 0 {
			return StateCancelled, nil
		}
		return StateCounting, nil
	}
	question := fmt.Sprintf("Stage all %d changed %s?", len(changed), plural(len(changed), "file", "files"))
	all, err := o.confirm(question, false)
	if err != nil {
		return StateFailed, err
	}
	if all {
		o.toStage = nil
		return StateStaging, nil
	}
	picked, err := o.prompter.ChooseMany("Select the files to add to the commit:", changed)
	if errors.Is(err, interact.ErrNoAnswer) {
		if len(o.staged) > 0 {
			return StateCounting, nil
		}
		o.info(func(p *ui.Printer) { p.Warn("No files selected.") })
		return StateCancelled, nil
	}
	if err != nil {
		return StateFailed, err
	}
	o.toStage = make([]string, 0, len(picked))
	for _, i := range picked {
		if i >= 0 && i < len(changed) {
			o.toStage = append(o.toStage, changed[i])
		}
	}
	return StateStaging, nil
}

func (o *Orchestrator) stage(ctx context.Context) (State, error) {
	var err error
	if o.toStage == nil {
		err = o.repo.StageAll(ctx)
	} else {
		err = o.repo.Stage(ctx, o.toStage)
	}
	if err != nil {
		return StateFailed, err
	}
	return StateCounting, nil
}

func (o *Orchestrator) count(ctx context.Context) (State, error) {
	staged, err := o.repo.StagedFiles(ctx)
	if err != nil {
		return StateFailed, err
	}
	o.staged = staged
	if len(staged) == 0 {
		o.stageAll = false
		o.info(func(p *ui.Printer) { p.Warn("Nothing is staged.") })
		return StateStagingDecision, nil
	}
	o.info(func(p *ui.Printer) {
		p.Step("%d staged %s:\n%s", len(staged), plural(len(staged), "file", "files"), strings.Join(staged, "\n"))
	})
	o.regen = false
	o.message = ""
	return StateGenerating, nil
}

func (o *Orchestrator) generate(ctx context.Context) (State, error) {
	if len(o.staged) == 0 {
		return StateStagingDecision, nil
	}
	if msg := strings.TrimSpace(o.prefs.DefaultCommitMessage); msg != "" {
		o.message, o.generated = msg, false
		return StateReviewingMessage, nil
	}
	if o.flags.SkipChatbot {
		msg, err := o.prompter.FreeText("Enter the commit message:", "")
		if errors.Is(err, interact.ErrNoAnswer) {
			return StateCancelled, nil
		}
		if err != nil {
			return StateFailed, err
		}
		o.message, o.generated = msg, false
		return StateReviewingMessage, nil
	}
	if !o.regen || o.diff.Text == "" {
		d, err := o.repo.StagedDiff(ctx, o.staged)
		if err != nil {
			return StateFailed, err
		}
		o.diff = d
		if len(d.Excluded) > 0 {
			o.info(func(p *ui.Printer) {
				p.Warn("Left out of the prompt: %s", strings.Join(d.Excluded, ", "))
			})
		}
	}
	o.info(func(p *ui.Printer) {
		p.Step("Generating the commit message (+%d -%d)", o.diff.Added, o.diff.Removed)
	})
	var (
		s   commitmsg.Suggestion
		err error
	)
	if o.regen && o.message != "" {
		s, err = o.suggester.Regenerate(ctx, o.diff.Text, o.message)
	} else {
		s, err = o.suggester.Suggest(ctx, o.diff.Text)
	}
	if s.Budget.Warning != "" {
		o.info(func(p *ui.Printer) { p.Warn("%s", s.Budget.Warning) })
	}
	if err != nil {
		return StateFailed, erruser.New("Could not generate a commit message.", err)
	}
	if s.Budget.Compacted {
		o.info(func(p *ui.Printer) { p.Warn("Whitespace in the diff was compacted to fit the model context.") })
	}
	if s.Budget.Truncated {
		o.info(func(p *ui.Printer) { p.Warn("The diff was truncated to fit the model context.") })
	}
	o.message, o.generated = s.Message, true
	return StateReviewingMessage, nil
}

func (o *Orchestrator) review() (State, error) {
	o.info(func(p *ui.Printer) { p.Message(o.message) })
	if o.flags.SkipCommitConfirmation {
		switch o.prefs.DefaultCommitBehavior {
		case config.BehaviorYes:
			return StateCommitting, nil
		case config.BehaviorNo:
			return StateCancelled, nil
		}
	}
	choices := []string{choiceCommit}
	if o.generated {
		choices = append(choices, choiceRegenerate)
	}
	choices = append(choices, choiceEdit, choiceCancel)
	i, err := o.prompter.ChooseOne("What would you like to do with this message?", choices)
	if errors.Is(err, interact.ErrNoAnswer) {
		return StateCancelled, nil
	}
	if err != nil {
		return StateFailed, err
	}
	if i < 0 || i >= len(choices) {
		return StateCancelled, nil
	}
	switch choices[i] {
	case choiceCommit:
		return StateCommitting, nil
	case choiceRegenerate:
		o.regen = true
		return StateGenerating, nil
	case choiceEdit:
		edited, err := o.prompter.FreeText("Edit the commit message:", o.message)
		if err != nil && !errors.Is(err, interact.ErrNoAnswer) {
			return StateFailed, err
		}
		if err == nil {
			o.message = strings.TrimSpace(edited)
		}
		return StateReviewingMessage, nil
	}
	return StateCancelled, nil
}

func (o *Orchestrator) commit(ctx context.Context) (State, error) {
	o.info(func(p *ui.Printer) { p.Step("Committing changes") })
	info, err := o.repo.Commit(ctx, o.message, o.prefs.AuthorName, o.prefs.AuthorEmail)
	if err != nil {
		return StateFailed, err
	}
	o.result.Commits = append(o.result.Commits, info)
	o.info(func(p *ui.Printer) {
		p.CommitSummary(ui.Summary{
			Branch:       info.Branch,
			ShortHash:    info.ShortHash,
			Author:       info.Author,
			Subject:      subject(info.Message),
			FilesChanged: info.FilesChanged,
			Insertions:   info.Insertions,
			Deletions:    info.Deletions,
			CommitCount:  info.CommitCount,
		})
	})
	return StatePushDecision, nil
}

func (o *Orchestrator) decidePush() (State, error) {
	if o.flags.SkipPushConfirmation || o.prefs.DefaultPushBehavior == config.BehaviorYes {
		return StateRemoteSelection, nil
	}
	if o.prefs.DefaultPushBehavior == config.BehaviorNo {
		return StateLoopDecision, nil
	}
	ok, err := o.confirm("Do you want to push this commit?", true)
	if err != nil {
		return StateFailed, err
	}
	if !ok {
		return StateLoopDecision, nil
	}
	return StateRemoteSelection, nil
}

func (o *Orchestrator) selectRemote(ctx context.Context) (State, error) {
	remotes, err := o.repo.Remotes(ctx)
	if err != nil {
		return StateFailed, err
	}
	switch len(remotes) {
	case 0:
		o.info(func(p *ui.Printer) { p.Warn("No remote repository found; skipping push.") })
		return StateLoopDecision, nil
	case 1:
		o.remote = remotes[0]
		return StatePulling, nil
	}
	i, err := o.prompter.ChooseOne("Select the remote repository to push to:", remotes)
	if errors.Is(err, interact.ErrNoAnswer) || (err == nil && (i < 0 || i >= len(remotes))) {
		o.info(func(p *ui.Printer) { p.Warn("No remote repository selected; skipping push.") })
		return StateLoopDecision, nil
	}
	if err != nil {
		return StateFailed, err
	}
	o.remote = remotes[i]
	return StatePulling, nil
}

func (o *Orchestrator) pull(ctx context.Context) (State, error) {
	if o.flags.SkipPushConfirmation {
		return StatePushing, nil
	}
	ok, err := o.confirm(fmt.Sprintf("Pull from %s before pushing?", o.remote), false)
	if err != nil {
		return StateFailed, err
	}
	if !ok {
		return StatePushing, nil
	}
	o.info(func(p *ui.Printer) { p.Step("Pulling from %s", o.remote) })
	if err := o.repo.Pull(ctx, o.remote); err != nil {
		return StateFailed, err
	}
	return StatePushing, nil
}

func (o *Orchestrator) push(ctx context.Context) (State, error) {
	o.info(func(p *ui.Printer) { p.Step("Pushing to %s", o.remote) })
	if err := o.repo.Push(ctx, o.remote, o.flags.BranchName); err != nil {
		return StateFailed, err
	}
	o.result.Pushes++
	o.info(func(p *ui.Printer) { p.Success("Changes pushed to %s", o.remote) })
	return StateLoopDecision, nil
}

func (o *Orchestrator) decideLoop() (State, error) {
	ok, err := o.confirm("Do you want to continue?", false)
	if err != nil {
		return StateFailed, err
	}
	if !ok {
		return StateDone, nil
	}
	o.stageAll = false
	return StateCheckingChanges, nil
}

// confirm maps ErrNoAnswer to "no".
func (o *Orchestrator) confirm(question string, def bool) (bool, error) {
	ok, err := o.prompter.Confirm(question, def)
	if errors.Is(err, interact.ErrNoAnswer) {
		return false, nil
	}
	return ok, err
}

func (o *Orchestrator) info(f func(p *ui.Printer)) {
	if o.printer != nil {
		f(o.printer)
	}
}

func subject(msg string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(msg), "\n")
	return line
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
