package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// run executes git in dir and returns stdout. On failure the error is a
// *RepositoryError carrying stderr (or stdout when stderr is empty; git
// commit reports "nothing to commit" on stdout).
func run(ctx context.Context, dir string, env []string, args ...string) (string, error) {
	return runInput(ctx, dir, env, "", args...)
}

// runInput is run with stdin fed from input (empty means no stdin).
func runInput(ctx context.Context, dir string, env []string, input string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Env = env
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		op := ""
		if len(args) > 0 {
			op = args[0]
		}
		return stdout.String(), &RepositoryError{Op: op, Args: args, Stderr: msg, Err: err}
	}
	return stdout.String(), nil
}

// minimalEnv returns a minimal environment for read-only git queries so that
// user config (e.g. GIT_DIR, pager) does not affect output.
func minimalEnv() []string {
	env := []string{
		"PATH=" + os.Getenv("PATH"),
		"GIT_TERMINAL_PROMPT=0",
		"GIT_PAGER=cat", // prevent pager; subprocess output is captured
		"LC_ALL=C",      // stable messages for parsing
	}
	if home := os.Getenv("HOME"); home != "" {
		env = append(env, "HOME="+home)
	} else if runtime.GOOS == "windows" {
		if profile := os.Getenv("USERPROFILE"); profile != "" {
			env = append(env, "HOME="+profile)
		}
	}
	return env
}

// MinimalEnv returns the environment used for read-only git queries.
func MinimalEnv() []string {
	return minimalEnv()
}

// userEnv is the full process environment for commands that need credentials,
// signing keys, or hooks (commit, push, pull). Terminal prompts stay disabled
// so a missing credential fails instead of blocking on captured stdin.
func userEnv() []string {
	return append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "GIT_PAGER=cat")
}

// commitEnv is userEnv with messages pinned to the C locale so commit
// failures can be classified from their text.
func commitEnv() []string {
	return append(userEnv(), "LC_ALL=C")
}
