package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/sabry-awad97/autocommit/cli/internal/config"
	"github.com/sabry-awad97/autocommit/cli/internal/erruser"
	"github.com/sabry-awad97/autocommit/cli/internal/git"
	"github.com/sabry-awad97/autocommit/cli/internal/interact"
	"github.com/sabry-awad97/autocommit/cli/internal/run"
	"github.com/sabry-awad97/autocommit/cli/internal/session"
	"github.com/sabry-awad97/autocommit/cli/internal/ui"
	"github.com/sabry-awad97/autocommit/cli/internal/version"
)

// errExit is an error that carries an exit code for the CLI. Use errors.As to detect it.
type errExit int

func (e errExit) Error() string {
	return "exit " + strconv.Itoa(int(e))
}

// errOut receives error messages and hints. Tests may replace it to capture output.
var errOut io.Writer = os.Stderr

// getEnv lists the environment seen by config loading. Tests may replace it.
var getEnv = os.Environ

func main() {
	os.Exit(Run())
}

// Run is the entry point for the CLI. It is exported for testing.
func Run() int {
	return runCLI(os.Args[1:])
}

func runCLI(args []string) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		var exitErr errExit
		if errors.As(err, &exitErr) {
			return int(exitErr)
		}
		fmt.Fprintln(errOut, err)
		if d := erruser.Details(err); d != "" {
			fmt.Fprintf(errOut, "Details: %s\n", d)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "autocommit",
		Short:   "Generate commit messages for staged changes with an OpenAI model",
		Version: version.String(),
	}
	rootCmd.PersistentFlags().String("config-path", "", "Configuration file (default ~/.autocommit)")
	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	return rootCmd
}

func newCommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Stage, describe, commit and optionally push changes",
		Args:  cobra.NoArgs,
		RunE:  runCommit,
	}
	cmd.Flags().BoolP("stage-all", "a", false, "Stage every changed file without asking")
	cmd.Flags().String("branch-name", "", "Push HEAD to this remote branch instead of the current branch name")
	cmd.Flags().Bool("skip-chatbot", false, "Do not call the model; use default_commit_message or ask for a message")
	cmd.Flags().Bool("skip-push-confirmation", false, "Push without asking (and without pulling first)")
	cmd.Flags().Bool("skip-commit-confirmation", false, "Apply default_commit_behavior instead of asking before committing")
	cmd.Flags().Bool("trace", false, "Print internal steps to stderr (git commands, state transitions, requests)")
	return cmd
}

// commitFlags reads the commit flag set.
func commitFlags(fs *pflag.FlagSet) run.Flags {
	var f run.Flags
	f.StageAll, _ = fs.GetBool("stage-all")
	f.BranchName, _ = fs.GetString("branch-name")
	f.SkipChatbot, _ = fs.GetBool("skip-chatbot")
	f.SkipPushConfirmation, _ = fs.GetBool("skip-push-confirmation")
	f.SkipCommitConfirmation, _ = fs.GetBool("skip-commit-confirmation")
	f.BranchName = strings.TrimSpace(f.BranchName)
	return f
}

func runCommit(cmd *cobra.Command, _ []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return erruser.New("Could not determine current directory.", err)
	}
	cfg, err := loadConfig(cmd, config.LoadOptions{CreateIfMissing: true}, cwd)
	if err != nil {
		return err
	}
	var traceOut io.Writer
	if on, _ := cmd.Flags().GetBool("trace"); on {
		traceOut = os.Stderr
	}
	caps := ui.Detect(os.Stdout, nil)
	printer := ui.New(ui.Writer(os.Stdout, caps), caps)

	var prompter interact.Prompter = interact.NonInteractive{}
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		prompter = interact.NewSurvey(terminal.Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	_, err = run.Commit(ctx, run.CommitOptions{
		Dir:      cwd,
		Config:   cfg,
		Flags:    commitFlags(cmd.Flags()),
		Prompter: prompter,
		Printer:  printer,
		TraceOut: traceOut,
	})
	if errors.Is(err, session.ErrLocked) {
		var le *session.LockedError
		if errors.As(err, &le) && le.PID > 0 {
			fmt.Fprintf(errOut, "Another autocommit session (pid %d) is running in this repository.\n", le.PID)
		} else {
			fmt.Fprintln(errOut, "Another autocommit session is running in this repository.")
		}
		fmt.Fprintln(errOut, "Hint: finish or cancel it, then run 'autocommit commit' again.")
		return errExit(1)
	}
	if err != nil {
		printer.Error(err.Error(), erruser.Details(err))
		return errExit(1)
	}
	return nil
}

// loadConfig loads the file named by --config-path. Author identity for a
// new file comes from git config in dir.
func loadConfig(cmd *cobra.Command, opts config.LoadOptions, dir string) (*config.Config, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, err
	}
	opts.Path = path
	opts.Env = getEnv()
	opts.Identity = func() (string, string) { return git.Identity(dir) }
	return config.Load(cmd.Context(), opts)
}

func configPath(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("config-path")
	if path != "" {
		return path, nil
	}
	return config.DefaultPath()
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and change configuration",
	}
	get := &cobra.Command{
		Use:   "get [key...]",
		Short: "Print configuration values (all keys when none are given)",
		RunE:  runConfigGet,
	}
	get.Flags().String("format", "text", "Output format: text or yaml")
	get.Flags().Bool("reveal", false, "Print secrets unmasked")
	set := &cobra.Command{
		Use:   "set key=value...",
		Short: "Set configuration values; nothing is written if any value is invalid",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runConfigSet,
	}
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore default configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfigReset,
	}
	env := &cobra.Command{
		Use:   "env",
		Short: "Print configuration as environment variable assignments",
		Args:  cobra.NoArgs,
		RunE:  runConfigEnv,
	}
	env.Flags().String("shell", "", "Shell syntax: "+strings.Join(config.Shells, ", ")+" (default NAME=value lines)")
	cmd.AddCommand(get, set, reset, env)
	return cmd
}

func cwdOrDot() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "yaml" {
		return errors.New("Invalid output format; use text or yaml.")
	}
	reveal, _ := cmd.Flags().GetBool("reveal")
	keys := config.Keys()
	if len(args) > 0 {
		keys = keys[:0]
		for _, a := range args {
			k, err := config.ParseKey(a)
			if err != nil {
				return erruser.New(fmt.Sprintf("Unknown configuration key %q.", a), err)
			}
			keys = append(keys, k)
		}
	}
	cfg, err := loadConfig(cmd, config.LoadOptions{}, cwdOrDot())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if format == "yaml" {
		doc := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range keys {
			v, err := cfg.Display(k, reveal)
			if err != nil {
				return err
			}
			doc.Content = append(doc.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: string(k)},
				&yaml.Node{Kind: yaml.ScalarNode, Value: v, Style: yamlStyle(v)})
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return erruser.New("Could not write configuration.", err)
		}
		return enc.Close()
	}
	for _, k := range keys {
		v, err := cfg.Display(k, reveal)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s=%s\n", k, v)
	}
	return nil
}

// yamlStyle quotes empty values so they read as empty strings, not null.
func yamlStyle(v string) yaml.Style {
	if v == "" {
		return yaml.DoubleQuotedStyle
	}
	return 0
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	pairs := make(map[config.Key]string, len(args))
	for _, a := range args {
		name, value, ok := strings.Cut(a, "=")
		if !ok {
			return fmt.Errorf("Invalid argument %q; use key=value.", a)
		}
		k, err := config.ParseKey(name)
		if err != nil {
			return erruser.New(fmt.Sprintf("Unknown configuration key %q.", name), err)
		}
		pairs[k] = value
	}
	path, err := configPath(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, config.LoadOptions{IgnoreEnv: true}, cwdOrDot())
	if err != nil {
		return err
	}
	if err := cfg.SetAll(pairs); err != nil {
		return erruser.New("Configuration not changed.", err)
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s in %s\n", strings.Join(keys, ", "), path)
	return nil
}

func runConfigReset(cmd *cobra.Command, _ []string) error {
	path, err := configPath(cmd)
	if err != nil {
		return err
	}
	dir := cwdOrDot()
	cfg := config.Reset(func() (string, string) { return git.Identity(dir) })
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration reset to defaults in %s\n", path)
	return nil
}

func runConfigEnv(cmd *cobra.Command, _ []string) error {
	shell, _ := cmd.Flags().GetString("shell")
	cfg, err := loadConfig(cmd, config.LoadOptions{IgnoreEnv: true}, cwdOrDot())
	if err != nil {
		return err
	}
	lines, err := cfg.EnvLines(shell)
	if err != nil {
		return erruser.New(fmt.Sprintf("Unsupported shell %q.", shell), err)
	}
	out := cmd.OutOrStdout()
	for _, l := range lines {
		fmt.Fprintln(out, l)
	}
	return nil
}
