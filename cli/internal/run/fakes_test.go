package run

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sabry-awad97/autocommit/cli/internal/git"
	"github.com/sabry-awad97/autocommit/cli/internal/interact"
	"github.com/sabry-awad97/autocommit/cli/internal/prompt"
)

type pushCall struct{ remote, branch string }

// fakeRepo is an in-memory Repository: staging moves paths from changed to
// staged, committing clears staged.
type fakeRepo struct {
	changed []string
	staged  []string
	remotes []string
	// pending becomes the changed set after the first commit.
	pending []string
	// stageNoop makes Stage and StageAll succeed without staging anything.
	stageNoop bool
	excluded  []string

	stageErr, commitErr, pushErr, pullErr error

	stageCalls    [][]string
	stageAllCalls int
	diffCalls     int
	commits       []string
	pushes        []pushCall
	pulls         []string
}

func (r *fakeRepo) ChangedFiles(context.Context) ([]string, error) {
	return append([]string(nil), r.changed...), nil
}

func (r *fakeRepo) StagedFiles(context.Context) ([]string, error) {
	return append([]string(nil), r.staged...), nil
}

func (r *fakeRepo) Stage(_ context.Context, paths []string) error {
	r.stageCalls = append(r.stageCalls, paths)
	if r.stageErr != nil {
		return r.stageErr
	}
	if r.stageNoop {
		return nil
	}
	for _, p := range paths {
		r.move(p)
	}
	return nil
}

func (r *fakeRepo) StageAll(context.Context) error {
	r.stageAllCalls++
	if r.stageErr != nil {
		return r.stageErr
	}
	if r.stageNoop {
		return nil
	}
	for _, p := range append([]string(nil), r.changed...) {
		r.move(p)
	}
	return nil
}

func (r *fakeRepo) move(path string) {
	for i, c := range r.changed {
		if c == path {
			r.changed = append(r.changed[:i], r.changed[i+1:]...)
			r.staged = append(r.staged, path)
			return
		}
	}
}

func (r *fakeRepo) StagedDiff(_ context.Context, paths []string) (git.StagedDiff, error) {
	r.diffCalls++
	var b strings.Builder
	for _, p := range paths {
		b.WriteString("diff --git a/" + p + " b/" + p + "\n+change\n")
	}
	return git.StagedDiff{Text: b.String(), Excluded: r.excluded, Added: len(paths)}, nil
}

func (r *fakeRepo) Commit(_ context.Context, message, _, _ string) (git.CommitInfo, error) {
	if r.commitErr != nil {
		return git.CommitInfo{}, r.commitErr
	}
	if len(r.staged) == 0 {
		return git.CommitInfo{}, errors.Join(git.ErrNothingToCommit, errors.New("nothing to commit"))
	}
	r.commits = append(r.commits, message)
	info := git.CommitInfo{Message: message, Branch: "main", ShortHash: "abc1234", FilesChanged: len(r.staged), CommitCount: len(r.commits)}
	r.staged = nil
	if len(r.commits) == 1 && r.pending != nil {
		r.changed = append(r.changed, r.pending...)
	}
	return info, nil
}

func (r *fakeRepo) Push(_ context.Context, remote, branch string) error {
	if r.pushErr != nil {
		return r.pushErr
	}
	r.pushes = append(r.pushes, pushCall{remote, branch})
	return nil
}

func (r *fakeRepo) Pull(_ context.Context, remote string) error {
	r.pulls = append(r.pulls, remote)
	return r.pullErr
}

func (r *fakeRepo) Remotes(context.Context) ([]string, error) { return r.remotes, nil }

func (r *fakeRepo) StatusSummary(context.Context) (string, error) { return "", nil }

// fakeGenerator returns replies in order and records every request.
type fakeGenerator struct {
	replies []string
	err     error
	calls   [][]prompt.Message
}

func (g *fakeGenerator) Generate(_ context.Context, msgs []prompt.Message) (string, error) {
	g.calls = append(g.calls, msgs)
	if g.err != nil {
		return "", g.err
	}
	i := len(g.calls) - 1
	if i >= len(g.replies) {
		i = len(g.replies) - 1
	}
	return g.replies[i], nil
}

type answer struct {
	yes     bool
	index   int
	indexes []int
	text    string
	err     error
}

func yes() answer { return answer{yes: true} }
func no() answer { return answer{} }
func pick(i int) answer { return answer{index: i} }
func picks(i ...int) answer { return answer{indexes: i} }
func text(s string) answer { return answer{text: s} }
func noAnswer() answer { return answer{err: interact.ErrNoAnswer} }
func failWith(e error) answer { return answer{err: e} }

// scriptedPrompter replays answers in order and records what was asked.
type scriptedPrompter struct {
	t       *testing.T
	answers []answer
	asked   []string
	items   [][]string
}

func script(t *testing.T, answers ...answer) *scriptedPrompter {
	return &scriptedPrompter{t: t, answers: answers}
}

func (p *scriptedPrompter) next(q string, items []string) answer {
	p.asked = append(p.asked, q)
	p.items = append(p.items, items)
	if len(p.answers) == 0 {
		p.t.Errorf("unexpected prompt %q", q)
		return answer{err: interact.ErrNoAnswer}
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a
}

func (p *scriptedPrompter) Confirm(q string, _ bool) (bool, error) {
	a := p.next(q, nil)
	return a.yes, a.err
}

func (p *scriptedPrompter) ChooseOne(q string, items []string) (int, error) {
	a := p.next(q, items)
	return a.index, a.err
}

func (p *scriptedPrompter) ChooseMany(q string, items []string) ([]int, error) {
	a := p.next(q, items)
	return a.indexes, a.err
}

func (p *scriptedPrompter) FreeText(q, _ string) (string, error) {
	a := p.next(q, nil)
	return a.text, a.err
}

func (p *scriptedPrompter) done() {
	p.t.Helper()
	if len(p.answers) > 0 {
		p.t.Errorf("%d scripted answers left unused", len(p.answers))
	}
}
