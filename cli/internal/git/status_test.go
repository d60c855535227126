package git

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParsePorcelain(t *testing.T) {
	t.Parallel()
	out := "M  staged.go\x00 M unstaged.go\x00MM both.go\x00?? new.txt\x00R  renamed.go\x00old.go\x00 D gone.txt\x00"
	got := parsePorcelain(out)
	want := []Entry{
		{Path: "staged.go", Index: 'M', WorkTree: ' '},
		{Path: "unstaged.go", Index: ' ', WorkTree: 'M'},
		{Path: "both.go", Index: 'M', WorkTree: 'M'},
		{Path: "new.txt", Index: '?', WorkTree: '?'},
		{Path: "renamed.go", Index: 'R', WorkTree: ' '},
		{Path: "gone.txt", Index: ' ', WorkTree: 'D'},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parsePorcelain =\n%+v\nwant\n%+v", got, want)
	}
	staged := collect(got, Entry.Staged)
	if !reflect.DeepEqual(staged, []string{"both.go", "renamed.go", "staged.go"}) {
		t.Errorf("staged = %v", staged)
	}
	changed := collect(got, Entry.Changed)
	if !reflect.DeepEqual(changed, []string{"both.go", "gone.txt", "new.txt", "unstaged.go"}) {
		t.Errorf("changed = %v", changed)
	}
}

func TestChangedAndStagedFiles(t *testing.T) {
	t.Parallel()
	repo := initRepo(t)
	ctx := context.Background()
	r := openRepo(t, repo)

	changed, err := r.ChangedFiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	staged, err := r.StagedFiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(changed) != 0 || len(staged) != 0 {
		t.Fatalf("clean repo: changed=%v staged=%v", changed, staged)
	}

	writeFile(t, repo, "f1.txt", "changed\n")
	writeFile(t, repo, "dir/new.txt", "new\n")
	writeFile(t, repo, "f2.txt", "staged\n")
	gitCmd(t, repo, "git", "add", "f2.txt")

	changed, _ = r.ChangedFiles(ctx)
	staged, _ = r.StagedFiles(ctx)
	if !reflect.DeepEqual(changed, []string{"dir/new.txt", "f1.txt"}) {
		t.Errorf("changed = %v", changed)
	}
	if !reflect.DeepEqual(staged, []string{"f2.txt"}) {
		t.Errorf("staged = %v", staged)
	}
}

func TestAutoignore(t *testing.T) {
	t.Parallel()
	repo := initRepo(t)
	writeFile(t, repo, ".autoignore", "# generated\n*.log\n\nbuild/\n")
	gitCmd(t, repo, "git", "add", ".autoignore")
	gitCmd(t, repo, "git", "commit", "-m", "ignore")
	writeFile(t, repo, "debug.log", "x\n")
	writeFile(t, repo, "build/out.bin", "x\n")
	writeFile(t, repo, "keep.go", "package keep\n")

	ctx := context.Background()
	r := openRepo(t, repo)
	changed, err := r.ChangedFiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(changed, []string{"keep.go"}) {
		t.Errorf("changed = %v, want [keep.go]", changed)
	}
	if err := r.StageAll(ctx); err != nil {
		t.Fatal(err)
	}
	staged, _ := r.StagedFiles(ctx)
	if !reflect.DeepEqual(staged, []string{"keep.go"}) {
		t.Errorf("staged = %v, want [keep.go]", staged)
	}
	if err := r.Stage(ctx, []string{"debug.log"}); err != nil {
		t.Fatal(err)
	}
	if out := runOut(t, repo, "git", "diff", "--cached", "--name-only"); strings.Contains(out, "debug.log") {
		t.Errorf("ignored file was staged: %q", out)
	}
}

func TestStage_subsetAndDeletion(t *testing.T) {
	t.Parallel()
	repo := initRepo(t)
	ctx := context.Background()
	r := openRepo(t, repo)
	writeFile(t, repo, "a.txt", "a\n")
	writeFile(t, repo, "b.txt", "b\n")
	if err := os.Remove(filepath.Join(repo, "f1.txt")); err != nil {
		t.Fatal(err)
	}

	if err := r.Stage(ctx, []string{"a.txt", "f1.txt"}); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	staged, _ := r.StagedFiles(ctx)
	if !reflect.DeepEqual(staged, []string{"a.txt", "f1.txt"}) {
		t.Errorf("staged = %v, want [a.txt f1.txt]", staged)
	}
	changed, _ := r.ChangedFiles(ctx)
	if !reflect.DeepEqual(changed, []string{"b.txt"}) {
		t.Errorf("changed = %v, want [b.txt]", changed)
	}
}

func TestStagedFiles_renameListsBothPaths(t *testing.T) {
	t.Parallel()
	repo := initRepo(t)
	ctx := context.Background()
	r := openRepo(t, repo)
	gitCmd(t, repo, "git", "mv", "f1.txt", "moved.txt")

	staged, err := r.StagedFiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(staged, []string{"f1.txt", "moved.txt"}) {
		t.Fatalf("staged = %v, want [f1.txt moved.txt]", staged)
	}
	got, err := r.StagedDiff(ctx, staged)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"deleted file mode", "--- a/f1.txt", "new file mode", "+++ b/moved.txt"} {
		if !strings.Contains(got.Text, want) {
			t.Errorf("diff missing %q:\n%s", want, got.Text)
		}
	}
	if got.Added != got.Removed || got.Added == 0 {
		t.Errorf("Added = %d, Removed = %d; want equal and non-zero", got.Added, got.Removed)
	}
}

func TestStatusSummary(t *testing.T) {
	t.Parallel()
	repo := initRepo(t)
	ctx := context.Background()
	r := openRepo(t, repo)
	got, err := r.StatusSummary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Working tree clean.\n" {
		t.Errorf("clean summary = %q", got)
	}
	writeFile(t, repo, "f1.txt", "x\n")
	writeFile(t, repo, "n.txt", "x\n")
	gitCmd(t, repo, "git", "add", "n.txt")
	got, _ = r.StatusSummary(ctx)
	for _, want := range []string{"STATE", "staged", "added", "n.txt", "unstaged", "modified", "f1.txt"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}
