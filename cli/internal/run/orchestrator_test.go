package run

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabry-awad97/autocommit/cli/internal/config"
	"github.com/sabry-awad97/autocommit/cli/internal/git"
	"github.com/sabry-awad97/autocommit/cli/internal/openai"
	"github.com/sabry-awad97/autocommit/cli/internal/prompt"
	"github.com/sabry-awad97/autocommit/cli/internal/ui"
)

func basePrefs() config.Preferences {
	return config.Preferences{
		Locale:                "english",
		AuthorName:            "Ada",
		AuthorEmail:           "ada@example.com",
		DefaultCommitBehavior: config.BehaviorAsk,
		DefaultPushBehavior:   config.BehaviorNo,
	}
}

func newTestOrchestrator(repo *fakeRepo, gen *fakeGenerator, p *scriptedPrompter, prefs config.Preferences, flags Flags) *Orchestrator {
	return New(Options{Repo: repo, Generator: gen, Prompter: p, Preferences: prefs, Flags: flags})
}

func TestRun_noChangesIsDone(t *testing.T) {
	repo := &fakeRepo{}
	gen := &fakeGenerator{replies: []string{"unused"}}
	p := script(t)

	res, err := newTestOrchestrator(repo, gen, p, basePrefs(), Flags{}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.Empty(t, res.Commits)
	assert.Empty(t, gen.calls)
	assert.Empty(t, p.asked)
}

func TestRun_defaultMessageSkipsGeneration(t *testing.T) {
	repo := &fakeRepo{staged: []string{"README.md"}}
	gen := &fakeGenerator{replies: []string{"unused"}}
	p := script(t, no()) // continue?
	prefs := basePrefs()
	prefs.DefaultCommitMessage = "Fix typo"
	prefs.DefaultCommitBehavior = config.BehaviorYes

	res, err := newTestOrchestrator(repo, gen, p, prefs, Flags{SkipChatbot: true, SkipCommitConfirmation: true}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, []string{"Fix typo"}, repo.commits)
	assert.Empty(t, gen.calls, "no network call with a default message")
	assert.Zero(t, repo.diffCalls)
	require.Len(t, res.Commits, 1)
	p.done()
}

func TestRun_rateLimitedFails(t *testing.T) {
	repo := &fakeRepo{staged: []string{"main.go"}}
	gen := &fakeGenerator{err: &openai.GenerationError{Kind: openai.ErrRateLimited, Status: 429}}
	p := script(t)

	res, err := newTestOrchestrator(repo, gen, p, basePrefs(), Flags{}).Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, openai.ErrRateLimited)
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, err, res.Err)
	assert.Empty(t, repo.commits)
	assert.Len(t, gen.calls, 1)
}

func TestRun_regenerateBuildsFreshContexts(t *testing.T) {
	repo := &fakeRepo{staged: []string{"main.go"}}
	gen := &fakeGenerator{replies: []string{"feat: one", "feat: two", "feat: three", "feat: four"}}
	p := script(t, pick(1), pick(1), pick(1), pick(0), no())

	res, err := newTestOrchestrator(repo, gen, p, basePrefs(), Flags{}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	require.Len(t, gen.calls, 4)
	assert.Equal(t, []string{"feat: four"}, repo.commits)
	assert.Equal(t, 1, repo.diffCalls, "the diff is read once per staged set")

	initial := gen.calls[0]
	for i := 1; i < 4; i++ {
		call := gen.calls[i]
		require.Len(t, call, len(initial)+2, "regeneration %d must not grow the context", i)
		assert.Equal(t, initial, call[:len(initial)])
		assert.Equal(t, prompt.RoleAssistant, call[len(call)-2].Role)
		assert.Equal(t, gen.replies[i-1], call[len(call)-2].Content)
		assert.Equal(t, prompt.RegenerateInstruction, call[len(call)-1].Content)
	}
	assert.Equal(t, []string{choiceCommit, choiceRegenerate, choiceEdit, choiceCancel}, p.items[0])
	p.done()
}

func TestRun_pushToSelectedRemoteWithoutPull(t *testing.T) {
	repo := &fakeRepo{staged: []string{"main.go"}, remotes: []string{"origin", "backup"}}
	gen := &fakeGenerator{replies: []string{"fix: guard nil"}}
	prefs := basePrefs()
	prefs.DefaultPushBehavior = config.BehaviorAsk
	p := script(t,
		pick(0), // commit
		yes(),   // push?
		pick(1), // backup
		no(),    // pull first?
		no(),    // continue?
	)

	res, err := newTestOrchestrator(repo, gen, p, prefs, Flags{}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.Empty(t, repo.pulls)
	assert.Equal(t, []pushCall{{remote: "backup"}}, repo.pushes)
	assert.Equal(t, 1, res.Pushes)
	assert.Equal(t, []string{"origin", "backup"}, p.items[2])
	p.done()
}

func TestRun_emptyStagingNeverGenerates(t *testing.T) {
	repo := &fakeRepo{changed: []string{"a.go"}, stageNoop: true}
	gen := &fakeGenerator{replies: []string{"unused"}}
	p := script(t,
		no(),       // stage all? (after stage-all staged nothing)
		noAnswer(), // file selection
	)

	res, err := newTestOrchestrator(repo, gen, p, basePrefs(), Flags{StageAll: true}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateCancelled, res.State)
	assert.Equal(t, 1, repo.stageAllCalls)
	assert.Empty(t, gen.calls)
	assert.Zero(t, repo.diffCalls)
	p.done()
}

func TestRun_noCommitWithoutAccept(t *testing.T) {
	tests := []struct {
		name   string
		answer answer
	}{
		{"cancel", pick(3)},
		{"no answer", noAnswer()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{staged: []string{"main.go"}}
			gen := &fakeGenerator{replies: []string{"feat: x"}}
			p := script(t, tt.answer)
			res, err := newTestOrchestrator(repo, gen, p, basePrefs(), Flags{}).Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, StateCancelled, res.State)
			assert.Empty(t, repo.commits)
		})
	}
}

func TestRun_skipCommitConfirmation(t *testing.T) {
	t.Run("behavior no cancels", func(t *testing.T) {
		repo := &fakeRepo{staged: []string{"main.go"}}
		prefs := basePrefs()
		prefs.DefaultCommitBehavior = config.BehaviorNo
		p := script(t)
		res, err := newTestOrchestrator(repo, &fakeGenerator{replies: []string{"feat: x"}}, p, prefs, Flags{SkipCommitConfirmation: true}).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, StateCancelled, res.State)
		assert.Empty(t, repo.commits)
		assert.Empty(t, p.asked)
	})
	t.Run("behavior ask prompts", func(t *testing.T) {
		repo := &fakeRepo{staged: []string{"main.go"}}
		p := script(t, pick(0), no())
		res, err := newTestOrchestrator(repo, &fakeGenerator{replies: []string{"feat: x"}}, p, basePrefs(), Flags{SkipCommitConfirmation: true}).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, StateDone, res.State)
		assert.Equal(t, []string{"feat: x"}, repo.commits)
		p.done()
	})
}

func TestRun_editMessage(t *testing.T) {
	repo := &fakeRepo{staged: []string{"main.go"}}
	gen := &fakeGenerator{replies: []string{"feat: x"}}
	p := script(t, pick(2), text("  feat: edited  "), pick(0), no())

	_, err := newTestOrchestrator(repo, gen, p, basePrefs(), Flags{}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"feat: edited"}, repo.commits)
	p.done()
}

func TestRun_selectFilesToStage(t *testing.T) {
	repo := &fakeRepo{changed: []string{"a.go", "b.go", "c.go"}}
	gen := &fakeGenerator{replies: []string{"feat: a and c"}}
	p := script(t, no(), picks(0, 2), pick(0), no())

	res, err := newTestOrchestrator(repo, gen, p, basePrefs(), Flags{}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, [][]string{{"a.go", "c.go"}}, repo.stageCalls)
	assert.Equal(t, []string{"b.go"}, repo.changed)
	assert.Equal(t, []string{"a.go", "b.go", "c.go"}, p.items[1])
	p.done()
}

func TestRun_noSelectionWithNothingStagedCancels(t *testing.T) {
	repo := &fakeRepo{changed: []string{"a.go"}}
	p := script(t, no(), noAnswer())
	res, err := newTestOrchestrator(repo, &fakeGenerator{replies: []string{"x"}}, p, basePrefs(), Flags{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, res.State)
	assert.Empty(t, repo.stageCalls)
}

func TestRun_noSelectionKeepsExistingStagedSet(t *testing.T) {
	repo := &fakeRepo{changed: []string{"a.go"}, staged: []string{"b.go"}}
	gen := &fakeGenerator{replies: []string{"feat: b"}}
	p := script(t, no(), noAnswer(), pick(0), no())
	res, err := newTestOrchestrator(repo, gen, p, basePrefs(), Flags{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, []string{"feat: b"}, repo.commits)
	assert.Empty(t, repo.stageCalls)
}

func TestRun_pullFailureAbortsPush(t *testing.T) {
	repo := &fakeRepo{staged: []string{"main.go"}, remotes: []string{"origin"}, pullErr: errors.New("merge conflict")}
	prefs := basePrefs()
	prefs.DefaultPushBehavior = config.BehaviorYes
	p := script(t, pick(0), yes())

	res, err := newTestOrchestrator(repo, &fakeGenerator{replies: []string{"fix: x"}}, p, prefs, Flags{}).Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, []string{"origin"}, repo.pulls)
	assert.Empty(t, repo.pushes)
	assert.Len(t, res.Commits, 1)
	p.done()
}

func TestRun_skipPushConfirmationPushesWithoutPull(t *testing.T) {
	repo := &fakeRepo{staged: []string{"main.go"}, remotes: []string{"origin"}}
	p := script(t, pick(0), no())

	res, err := newTestOrchestrator(repo, &fakeGenerator{replies: []string{"fix: x"}}, p, basePrefs(),
		Flags{SkipPushConfirmation: true, BranchName: "release"}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.Empty(t, repo.pulls)
	assert.Equal(t, []pushCall{{"origin", "release"}}, repo.pushes)
	p.done()
}

func TestRun_noRemotesSkipsPush(t *testing.T) {
	repo := &fakeRepo{staged: []string{"main.go"}}
	prefs := basePrefs()
	prefs.DefaultPushBehavior = config.BehaviorYes
	p := script(t, pick(0), no())
	res, err := newTestOrchestrator(repo, &fakeGenerator{replies: []string{"fix: x"}}, p, prefs, Flags{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.Empty(t, repo.pushes)
	p.done()
}

func TestRun_pushFailure(t *testing.T) {
	repo := &fakeRepo{staged: []string{"main.go"}, remotes: []string{"origin"}, pushErr: errors.New("rejected")}
	p := script(t, pick(0))
	res, err := newTestOrchestrator(repo, &fakeGenerator{replies: []string{"fix: x"}}, p, basePrefs(), Flags{SkipPushConfirmation: true}).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateFailed, res.State)
	assert.Zero(t, res.Pushes)
}

func TestRun_loopResetsStageAll(t *testing.T) {
	repo := &fakeRepo{changed: []string{"a.go"}, pending: []string{"b.go"}}
	gen := &fakeGenerator{replies: []string{"feat: a", "feat: b"}}
	p := script(t,
		pick(0), // commit a
		yes(),   // continue?
		yes(),   // stage all? asked because the flag was reset
		pick(0), // commit b
		no(),    // continue?
	)

	res, err := newTestOrchestrator(repo, gen, p, basePrefs(), Flags{StageAll: true}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, []string{"feat: a", "feat: b"}, repo.commits)
	assert.Equal(t, 2, repo.stageAllCalls)
	assert.Len(t, res.Commits, 2)
	p.done()
}

func TestRun_skipChatbotAsksForMessage(t *testing.T) {
	repo := &fakeRepo{staged: []string{"main.go"}}
	gen := &fakeGenerator{replies: []string{"unused"}}
	p := script(t, text("chore: manual"), pick(0), no())

	_, err := newTestOrchestrator(repo, gen, p, basePrefs(), Flags{SkipChatbot: true}).Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, gen.calls)
	assert.Equal(t, []string{"chore: manual"}, repo.commits)
	assert.Equal(t, []string{choiceCommit, choiceEdit, choiceCancel}, p.items[1], "typed messages cannot be regenerated")
	p.done()
}

func TestRun_skipChatbotWithoutAnswerCancels(t *testing.T) {
	repo := &fakeRepo{staged: []string{"main.go"}}
	p := script(t, noAnswer())
	res, err := newTestOrchestrator(repo, &fakeGenerator{replies: []string{"x"}}, p, basePrefs(), Flags{SkipChatbot: true}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, res.State)
}

func TestRun_commitFailure(t *testing.T) {
	repo := &fakeRepo{staged: []string{"main.go"}, commitErr: errors.Join(git.ErrNothingToCommit, errors.New("clean"))}
	p := script(t, pick(0))
	res, err := newTestOrchestrator(repo, &fakeGenerator{replies: []string{"x"}}, p, basePrefs(), Flags{}).Run(context.Background())
	assert.ErrorIs(t, err, git.ErrNothingToCommit)
	assert.Equal(t, StateFailed, res.State)
}

func TestRun_stagingFailure(t *testing.T) {
	repo := &fakeRepo{changed: []string{"a.go"}, stageErr: errors.New("index.lock exists")}
	res, err := newTestOrchestrator(repo, &fakeGenerator{replies: []string{"x"}}, script(t), basePrefs(), Flags{StageAll: true}).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateFailed, res.State)
}

func TestRun_promptErrorFails(t *testing.T) {
	repo := &fakeRepo{changed: []string{"a.go"}}
	boom := errors.New("terminal closed")
	res, err := newTestOrchestrator(repo, &fakeGenerator{replies: []string{"x"}}, script(t, failWith(boom)), basePrefs(), Flags{}).Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailed, res.State)
}

func TestRun_printsExcludedFiles(t *testing.T) {
	var out bytes.Buffer
	repo := &fakeRepo{staged: []string{"main.go", "go.sum"}, excluded: []string{"go.sum"}}
	o := New(Options{
		Repo:        repo,
		Generator:   &fakeGenerator{replies: []string{"feat: x"}},
		Prompter:    script(t, pick(0), no()),
		Printer:     ui.New(&out, ui.Capabilities{}),
		Preferences: basePrefs(),
	})
	_, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Left out of the prompt: go.sum")
	assert.Contains(t, out.String(), "Generating the commit message (+2 -0)")
	assert.Contains(t, out.String(), "| feat: x")
	assert.Contains(t, out.String(), "Committed [main abc1234] feat: x")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "ReviewingMessage", StateReviewingMessage.String())
	assert.Equal(t, "Failed", StateFailed.String())
	assert.Equal(t, "Unknown", State(99).String())
	assert.True(t, StateCancelled.Terminal())
	assert.False(t, StatePushing.Terminal())
}
