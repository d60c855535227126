// Package prompt builds the chat context sent to the commit message model:
// system instructions, a fixed few-shot exemplar, then the staged diff.
// Building is a pure function of the preferences; it performs no I/O.
package prompt

import (
	"fmt"
	"strings"

	"github.com/sabry-awad97/autocommit/cli/internal/config"
	"github.com/sabry-awad97/autocommit/cli/internal/i18n"
)

// Role tags a message for the remote service.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry of a chat context.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Context is an append-only, ordered message sequence. A new Context is built
// for every generation attempt; contexts are never shared between attempts.
type Context struct {
	messages []Message
}

// Append adds a message at the end.
func (c *Context) Append(role Role, content string) {
	c.messages = append(c.messages, Message{Role: role, Content: content})
}

// Messages returns a copy of the sequence.
func (c *Context) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Context) Len() int { return len(c.messages) }

// Text returns every message content joined, for token estimation.
func (c *Context) Text() string {
	var b strings.Builder
	for _, m := range c.messages {
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// RegenerateInstruction precedes the diff when the user asks for another message.
const RegenerateInstruction = "Suggest a different professional git commit message for the same changes. Do not repeat the previous suggestion."

// Builder assembles chat contexts using a translation catalog.
type Builder struct {
	catalog *i18n.Catalog
}

// NewBuilder returns a Builder. A nil catalog uses i18n.Default().
func NewBuilder(catalog *i18n.Catalog) *Builder {
	if catalog == nil {
		catalog = i18n.Default()
	}
	return &Builder{catalog: catalog}
}

// Build returns the initial context: system message, exemplar user diff, and
// exemplar assistant reply. Equal preferences yield identical contexts.
func (b *Builder) Build(p config.Preferences) *Context {
	tr := b.catalog.Get(p.Locale)
	ctx := &Context{}
	ctx.Append(RoleSystem, SystemPrompt(p, tr))
	ctx.Append(RoleUser, ExemplarDiff)
	ctx.Append(RoleAssistant, exemplarReply(p, tr))
	return ctx
}

// ForDiff is Build followed by the staged diff as the final user message.
func (b *Builder) ForDiff(p config.Preferences, diff string) *Context {
	ctx := b.Build(p)
	ctx.Append(RoleUser, diff)
	return ctx
}

// ForRegeneration builds a fresh context asking for an alternative to previous.
// Only the last rejected suggestion is carried, so the context size does not
// grow with the number of regenerations.
func (b *Builder) ForRegeneration(p config.Preferences, diff, previous string) *Context {
	ctx := b.ForDiff(p, diff)
	if previous != "" {
		ctx.Append(RoleAssistant, previous)
	}
	ctx.Append(RoleUser, RegenerateInstruction)
	return ctx
}

const (
	roleFraming = "You are a software developer and need to create a commit message for a git repository."
	imperative  = "Write a clear and concise git commit message that follows the imperative mood and starts with a specific action verb that clearly conveys the changes made (e.g. 'Implement', 'Refactor', 'Optimize', 'Fix', 'Add', 'Remove')."
	summaryLine = "The first line should provide a brief summary of the changes in present tense."
	noJargon    = "Avoid using technical jargon or acronyms that may be unfamiliar to other developers."
	splitWork   = "Multiple changes should be broken down into separate commits with individual messages."
	consistent  = "Be consistent with the formatting and structure of the commit message throughout the commit history."
	rawOutput   = "Exclude anything unnecessary such as the original translation; your entire response will be passed directly into git commit."
	heed        = "Carefully heed the user's instructions."
	noDesc      = "Don't add any descriptions to the commit, only commit message."
)

var emojiClauses = []string{
	"Use GitMoji convention to preface the commit.",
	"Look up the GitMoji convention to choose an appropriate emoji for the type of changes being made (e.g. 🐛 for bug fixes, ✨ for new features, etc.).",
}

var descriptionClauses = []string{
	"You should also provide a detailed explanation in the commit description, including any relevant context or reasoning behind the change. Specifically, you should:",
	"Include a brief, descriptive summary of the changes made in the commit message.",
	"Separate the summary from the description with a blank line.",
	"Start the commit description with a brief summary of the changes made, similar to the summary in the commit message.",
	"Provide additional context or background information that might be helpful for other developers to understand why the changes were necessary.",
	"If the changes fix a bug or issue, describe the symptoms of the bug and the steps taken to fix it.",
	"If the changes are related to a feature enhancement, describe what the new feature does and why it was added.",
	"If there were any particular challenges or obstacles that needed to be overcome to make these changes, mention them in the commit description.",
	"The commit message should be under 72 characters and focused on a single change or set of related changes.",
}

var typeClauses = []string{
	"If the change fixes a bug or issue, the type of change is a 'fix'.",
	"If the change adds a new feature or enhancement, the type of change is a 'feat'.",
	"If the change modifies existing functionality, the type of change can be a 'refactor'.",
	"If the change modifies documentation, updates tests, or makes other minor changes, the type of change is a 'chore'.",
	"Use active voice and start with the type of change, such as fix, feat, refactor, etc.",
}

// SystemPrompt returns the system instructions for p, fragments separated by blank lines.
func SystemPrompt(p config.Preferences, tr i18n.Translation) string {
	parts := []string{roleFraming, imperative, summaryLine, noJargon, splitWork}
	if p.EmojiEnabled {
		parts = append(parts, emojiClauses...)
	}
	if p.DescriptionEnabled {
		parts = append(parts, descriptionClauses...)
	} else {
		parts = append(parts, noDesc)
	}
	parts = append(parts, typeClauses...)
	parts = append(parts, fmt.Sprintf("Use %s to answer.", tr.Language))
	parts = append(parts, consistent)
	if line := signedOffBy(p); line != "" {
		parts = append(parts, fmt.Sprintf("Include a '%s' line indicating the author of the commit.", line))
	}
	parts = append(parts, rawOutput, heed)
	return strings.Join(parts, "\n\n")
}

// exemplarReply mirrors the system rules: glyphs only with emoji, a description
// block only with description, and the sign-off line last.
func exemplarReply(p config.Preferences, tr i18n.Translation) string {
	var b strings.Builder
	if p.EmojiEnabled {
		fmt.Fprintf(&b, "🐛 %s\n✨ %s\n", tr.CommitFix, tr.CommitFeat)
	} else {
		fmt.Fprintf(&b, "%s\n%s\n", tr.CommitFix, tr.CommitFeat)
	}
	if p.DescriptionEnabled {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(tr.CommitDescription, "\n"))
		b.WriteString("\n")
	}
	if line := signedOffBy(p); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
	}
	return strings.TrimRight(b.String(), "\n")
}

func signedOffBy(p config.Preferences) string {
	if p.AuthorName == "" && p.AuthorEmail == "" {
		return ""
	}
	return fmt.Sprintf("Signed-off-by: %s <%s>", p.AuthorName, p.AuthorEmail)
}
