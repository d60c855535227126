package git

import (
	"context"
	"reflect"
	"testing"
)

func initBare(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	gitCmd(t, dir, "git", "init", "--bare")
	return dir
}

func TestRemotes(t *testing.T) {
	t.Parallel()
	repo := initRepo(t)
	r := openRepo(t, repo)
	got, err := r.Remotes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Remotes = %v, want none", got)
	}
	gitCmd(t, repo, "git", "remote", "add", "origin", initBare(t))
	gitCmd(t, repo, "git", "remote", "add", "backup", initBare(t))
	got, _ = r.Remotes(context.Background())
	if !reflect.DeepEqual(got, []string{"backup", "origin"}) {
		t.Errorf("Remotes = %v, want [backup origin]", got)
	}
}

func TestPush_currentBranch(t *testing.T) {
	t.Parallel()
	repo := initRepo(t)
	bare := initBare(t)
	gitCmd(t, repo, "git", "remote", "add", "origin", bare)
	ctx := context.Background()
	r := openRepo(t, repo)
	branch, err := r.CurrentBranch(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Push(ctx, "origin", ""); err != nil {
		t.Fatalf("Push: %v", err)
	}
	want := runOut(t, repo, "git", "rev-parse", "HEAD")
	if got := runOut(t, bare, "git", "rev-parse", "refs/heads/"+branch); got != want {
		t.Errorf("remote %s = %s, want %s", branch, got, want)
	}
}

func TestPush_namedBranch(t *testing.T) {
	t.Parallel()
	repo := initRepo(t)
	bare := initBare(t)
	gitCmd(t, repo, "git", "remote", "add", "origin", bare)
	ctx := context.Background()
	if err := openRepo(t, repo).Push(ctx, "origin", "release/1.0"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	want := runOut(t, repo, "git", "rev-parse", "HEAD")
	if got := runOut(t, bare, "git", "rev-parse", "refs/heads/release/1.0"); got != want {
		t.Errorf("remote release/1.0 = %s, want %s", got, want)
	}
}

func TestPush_unknownRemote(t *testing.T) {
	t.Parallel()
	r := openRepo(t, initRepo(t))
	if err := r.Push(context.Background(), "nowhere", ""); err == nil {
		t.Fatal("Push to unknown remote: want error")
	}
}

func TestPull(t *testing.T) {
	t.Parallel()
	repo := initRepo(t)
	bare := initBare(t)
	gitCmd(t, repo, "git", "remote", "add", "origin", bare)
	ctx := context.Background()
	r := openRepo(t, repo)

	// Branch not on the remote yet: nothing to pull.
	if err := r.Pull(ctx, "origin"); err != nil {
		t.Fatalf("Pull before first push: %v", err)
	}
	if err := r.Push(ctx, "origin", ""); err != nil {
		t.Fatal(err)
	}

	// Another clone pushes a commit; Pull brings it in.
	other := t.TempDir()
	gitCmd(t, other, "git", "clone", "-q", bare, ".")
	gitCmd(t, other, "git", "config", "user.email", "other@autocommit.local")
	gitCmd(t, other, "git", "config", "user.name", "Other")
	gitCmd(t, other, "git", "config", "commit.gpgsign", "false")
	writeFile(t, other, "remote.txt", "r\n")
	gitCmd(t, other, "git", "add", "remote.txt")
	gitCmd(t, other, "git", "commit", "-m", "remote change")
	branch := runOut(t, repo, "git", "rev-parse", "--abbrev-ref", "HEAD")
	gitCmd(t, other, "git", "push", "-q", "origin", "HEAD:"+branch)

	if err := r.Pull(ctx, "origin"); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if got, want := runOut(t, repo, "git", "rev-parse", "HEAD"), runOut(t, other, "git", "rev-parse", "HEAD"); got != want {
		t.Errorf("HEAD after pull = %s, want %s", got, want)
	}
}

func TestPull_unknownRemote(t *testing.T) {
	t.Parallel()
	r := openRepo(t, initRepo(t))
	if err := r.Pull(context.Background(), "nowhere"); err == nil {
		t.Fatal("Pull from unknown remote: want error")
	}
}
