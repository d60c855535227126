package config

// Preferences is the read-only view of configuration consumed by the prompt
// builder and the commit orchestrator.
type Preferences struct {
	EmojiEnabled          bool
	DescriptionEnabled    bool
	Locale                string
	AuthorName            string
	AuthorEmail           string
	DefaultCommitMessage  string
	DefaultCommitBehavior Behavior
	DefaultPushBehavior   Behavior
}

// Preferences returns the generation and workflow preferences held by c.
func (c Config) Preferences() Preferences {
	return Preferences{
		EmojiEnabled:          c.Emoji,
		DescriptionEnabled:    c.Description,
		Locale:                c.Language,
		AuthorName:            c.Name,
		AuthorEmail:           c.Email,
		DefaultCommitMessage:  c.DefaultCommitMessage,
		DefaultCommitBehavior: c.DefaultCommitBehavior,
		DefaultPushBehavior:   c.DefaultPushBehavior,
	}
}
