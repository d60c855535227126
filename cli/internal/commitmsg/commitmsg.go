// Package commitmsg prepares model input for a staged diff (fitting the diff
// into the context window) and cleans model output into a commit message.
package commitmsg

import (
	"strings"
	"unicode/utf8"

	"github.com/sabry-awad97/autocommit/cli/internal/config"
	"github.com/sabry-awad97/autocommit/cli/internal/minify"
	"github.com/sabry-awad97/autocommit/cli/internal/prompt"
	"github.com/sabry-awad97/autocommit/cli/internal/tokens"
)

// maxDiffChars caps the diff when no context limit is configured.
const maxDiffChars = 32 * 1024

// minDiffChars is kept even when the base prompt alone nearly fills the window.
const minDiffChars = 1024

// TruncatedMarker is appended to a diff cut to fit the context window.
const TruncatedMarker = "\n\n[truncated for context]"

// Budget describes how a diff was fitted into one request.
type Budget struct {
	// Tokens is the estimated prompt size of the full request.
	Tokens int
	// Compacted is set when hunk whitespace was reduced to save space.
	Compacted bool
	Truncated bool
	// Warning is non-empty when the request is close to the context limit.
	Warning string
}

// Composer builds a fresh chat context for every generation attempt.
type Composer struct {
	builder      *prompt.Builder
	prefs        config.Preferences
	contextLimit int
	reserve      int
}

// NewComposer returns a Composer for one session's preferences. contextLimit
// is the model window in tokens; 0 disables fitting and warnings.
func NewComposer(builder *prompt.Builder, prefs config.Preferences, contextLimit int) *Composer {
	if builder == nil {
		builder = prompt.NewBuilder(nil)
	}
	return &Composer{
		builder:      builder,
		prefs:        prefs,
		contextLimit: contextLimit,
		reserve:      tokens.DefaultResponseReserve,
	}
}

// Initial returns the first-attempt context for diff.
func (c *Composer) Initial(diff string) (*prompt.Context, Budget) {
	base := c.builder.Build(c.prefs)
	fitted, b := c.fit(diff, tokens.Estimate(base.Text()))
	ctx := c.builder.ForDiff(c.prefs, fitted)
	return ctx, c.budget(ctx, b)
}

// Regenerate returns a new context asking for an alternative to previous.
func (c *Composer) Regenerate(diff, previous string) (*prompt.Context, Budget) {
	overhead := tokens.Estimate(c.builder.Build(c.prefs).Text()) +
		tokens.Estimate(previous) + tokens.Estimate(prompt.RegenerateInstruction)
	fitted, b := c.fit(diff, overhead)
	ctx := c.builder.ForRegeneration(c.prefs, fitted, previous)
	return ctx, c.budget(ctx, b)
}

// fit shrinks diff to the space left after overheadTokens: first by
// compacting whitespace, then by truncating.
func (c *Composer) fit(diff string, overheadTokens int) (string, Budget) {
	limit := maxDiffChars
	if left := tokens.Remaining(c.contextLimit, overheadTokens, c.reserve); left >= 0 {
		limit = tokens.BytesFor(left) - len(TruncatedMarker)
	}
	if limit < minDiffChars {
		limit = minDiffChars
	}
	var b Budget
	if len(diff) > limit {
		if m, err := minify.Diff(diff); err == nil && len(m) < len(diff) {
			diff, b.Compacted = m, true
		}
	}
	diff, b.Truncated = FitDiff(diff, limit)
	return diff, b
}

func (c *Composer) budget(ctx *prompt.Context, b Budget) Budget {
	b.Tokens = tokens.Estimate(ctx.Text())
	b.Warning = tokens.WarnIfOver(b.Tokens, c.reserve, c.contextLimit, tokens.DefaultWarnThreshold)
	return b
}

// FitDiff cuts diff to at most maxBytes (on a rune boundary) and appends
// TruncatedMarker. Reports whether it cut.
func FitDiff(diff string, maxBytes int) (string, bool) {
	if len(diff) <= maxBytes {
		return diff, false
	}
	return truncateUTF8(diff, maxBytes) + TruncatedMarker, true
}

// truncateUTF8 returns at most n bytes of s without splitting a rune.
func truncateUTF8(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Clean turns a raw completion into a commit message: surrounding code
// fences and quotes are dropped, trailing spaces trimmed per line.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		} else {
			s = ""
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	return strings.Join(lines, "\n")
}
