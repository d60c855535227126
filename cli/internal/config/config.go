// Package config provides autocommit configuration with a defined load order:
// environment variables > config file > defaults.
//
// The file is TOML with a single [config] table, by default at ~/.autocommit.
// Every key can be overridden per process with AUTOCOMMIT_<KEY> (upper-cased),
// e.g. AUTOCOMMIT_OPEN_AI_API_KEY or AUTOCOMMIT_DEFAULT_PUSH_BEHAVIOR. The
// environment overlay is applied when loading only; it is never written back.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sabry-awad97/autocommit/cli/internal/erruser"
)

const (
	_defaultAPIHost      = "https://api.openai.com"
	_defaultModel        = "gpt-3.5-turbo"
	_defaultLanguage     = "english"
	_defaultTimeout      = 60 * time.Second
	_defaultContextLimit = 16385
	_fileName            = ".autocommit"
)

// Config holds all autocommit configuration. Empty strings mean "not set".
type Config struct {
	OpenAIAPIKey          string
	APIHost               string
	OpenAIModel           string
	Description           bool
	Emoji                 bool
	Language              string
	Name                  string
	Email                 string
	DefaultCommitMessage  string
	DefaultPushBehavior   Behavior
	DefaultCommitBehavior Behavior
	Timeout               time.Duration
	// RateLimitRetries is how many times a rate-limited request is retried (0 = fail immediately).
	RateLimitRetries int
	// ContextLimit is the model context window in tokens, used for diff truncation and warnings.
	ContextLimit int
}

// IdentityFunc supplies default commit author values (normally from git config).
type IdentityFunc func() (name, email string)

// LoadOptions configures Load. Env is for tests; nil means os.Environ().
type LoadOptions struct {
	// Path is the config file; empty means DefaultPath().
	Path string
	Env  []string
	// IgnoreEnv skips the AUTOCOMMIT_* overlay (used by config set/reset so env values are not persisted).
	IgnoreEnv bool
	// Identity fills name/email when the file does not exist yet.
	Identity IdentityFunc
	// CreateIfMissing writes defaults to Path when the file does not exist.
	CreateIfMissing bool
}

// DefaultConfig returns a Config with built-in defaults.
func DefaultConfig() Config {
	return Config{
		APIHost:               _defaultAPIHost,
		OpenAIModel:           _defaultModel,
		Description:           false,
		Emoji:                 false,
		Language:              _defaultLanguage,
		DefaultPushBehavior:   BehaviorAsk,
		DefaultCommitBehavior: BehaviorAsk,
		Timeout:               _defaultTimeout,
		RateLimitRetries:      0,
		ContextLimit:          _defaultContextLimit,
	}
}

// Reset returns defaults with author identity filled from identity (may be nil).
func Reset(identity IdentityFunc) Config {
	cfg := DefaultConfig()
	applyIdentity(&cfg, identity)
	return cfg
}

func applyIdentity(cfg *Config, identity IdentityFunc) {
	if identity == nil {
		return
	}
	name, email := identity()
	cfg.Name = strings.TrimSpace(name)
	if e, err := parseEmail(email); err == nil {
		cfg.Email = e
	}
}

// DefaultPath returns ~/.autocommit.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", erruser.New("Could not determine home directory.", err)
	}
	return filepath.Join(home, _fileName), nil
}

// Load loads configuration with precedence: defaults < file < env.
// A missing file yields defaults (plus identity), optionally written back when
// CreateIfMissing is set. Invalid TOML or invalid values return an error.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	if opts.Env == nil {
		opts.Env = os.Environ()
	}
	path := opts.Path
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg := DefaultConfig()

	found, err := mergeFile(&cfg, path)
	if err != nil {
		return nil, err
	}
	if !found {
		applyIdentity(&cfg, opts.Identity)
		if opts.CreateIfMissing {
			if err := cfg.Save(path); err != nil {
				return nil, err
			}
		}
	}

	if !opts.IgnoreEnv {
		if err := applyEnv(&cfg, opts.Env); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// fileConfig mirrors the [config] table. Pointers distinguish absent from zero.
type fileConfig struct {
	OpenAIAPIKey          *string `toml:"open_ai_api_key"`
	APIHost               *string `toml:"api_host"`
	OpenAIModel           *string `toml:"open_ai_model"`
	Description           *bool   `toml:"description"`
	Emoji                 *bool   `toml:"emoji"`
	Language              *string `toml:"language"`
	Name                  *string `toml:"name"`
	Email                 *string `toml:"email"`
	DefaultCommitMessage  *string `toml:"default_commit_message"`
	DefaultPushBehavior   *string `toml:"default_push_behavior"`
	DefaultCommitBehavior *string `toml:"default_commit_behavior"`
	Timeout               *string `toml:"timeout"`
	RateLimitRetries      *int64  `toml:"rate_limit_retries"`
	ContextLimit          *int64  `toml:"context_limit"`
}

type fileData struct {
	Config fileConfig `toml:"config"`
}

// mergeFile reads path and merges present keys into cfg through Set, so file
// values pass the same validation as config set. Reports whether the file exists.
func mergeFile(cfg *Config, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, erruser.New("Could not read configuration file.", err)
	}
	var file fileData
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return true, erruser.Newf(err, "Invalid configuration in %s.", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return true, erruser.Newf(fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", ")),
			"Invalid configuration in %s.", path)
	}
	for key, v := range file.Config.values() {
		if err := cfg.Set(key, v); err != nil {
			return true, erruser.Newf(err, "Configuration %s in %s is invalid.", key, path)
		}
	}
	return true, nil
}

// values returns the present keys as strings.
func (f fileConfig) values() map[Key]string {
	out := make(map[Key]string)
	str := func(k Key, p *string) {
		if p != nil {
			out[k] = *p
		}
	}
	boolean := func(k Key, p *bool) {
		if p != nil {
			out[k] = strconv.FormatBool(*p)
		}
	}
	integer := func(k Key, p *int64) {
		if p != nil {
			out[k] = strconv.FormatInt(*p, 10)
		}
	}
	str(KeyOpenAIAPIKey, f.OpenAIAPIKey)
	str(KeyAPIHost, f.APIHost)
	str(KeyOpenAIModel, f.OpenAIModel)
	boolean(KeyDescription, f.Description)
	boolean(KeyEmoji, f.Emoji)
	str(KeyLanguage, f.Language)
	str(KeyName, f.Name)
	str(KeyEmail, f.Email)
	str(KeyDefaultCommitMessage, f.DefaultCommitMessage)
	str(KeyDefaultPushBehavior, f.DefaultPushBehavior)
	str(KeyDefaultCommitBehavior, f.DefaultCommitBehavior)
	str(KeyTimeout, f.Timeout)
	integer(KeyRateLimitRetries, f.RateLimitRetries)
	integer(KeyContextLimit, f.ContextLimit)
	return out
}

func applyEnv(cfg *Config, env []string) error {
	vals := make(map[string]string)
	for _, e := range env {
		idx := strings.Index(e, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(e[:idx])
		val := strings.TrimSpace(e[idx+1:])
		vals[key] = val
	}
	for _, key := range _keyOrder {
		name := key.EnvName()
		v, ok := vals[name]
		if !ok || v == "" {
			continue
		}
		if err := cfg.Set(key, v); err != nil {
			return erruser.Newf(err, "%s is invalid.", name)
		}
	}
	return nil
}

// Save writes cfg to path as TOML, atomically (temp file then rename), mode 0600.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return erruser.New("Could not create configuration directory.", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c.file()); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".autocommit-*.tmp")
	if err != nil {
		return erruser.New("Could not write configuration file.", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return erruser.New("Could not write configuration file.", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return erruser.New("Could not write configuration file.", err)
	}
	if err := tmp.Close(); err != nil {
		return erruser.New("Could not write configuration file.", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return erruser.New("Could not write configuration file.", err)
	}
	return nil
}

func (c Config) file() fileData {
	s := func(v string) *string { return &v }
	b := func(v bool) *bool { return &v }
	i := func(v int) *int64 { n := int64(v); return &n }
	return fileData{Config: fileConfig{
		OpenAIAPIKey:          s(c.OpenAIAPIKey),
		APIHost:               s(c.APIHost),
		OpenAIModel:           s(c.OpenAIModel),
		Description:           b(c.Description),
		Emoji:                 b(c.Emoji),
		Language:              s(c.Language),
		Name:                  s(c.Name),
		Email:                 s(c.Email),
		DefaultCommitMessage:  s(c.DefaultCommitMessage),
		DefaultPushBehavior:   s(string(c.DefaultPushBehavior)),
		DefaultCommitBehavior: s(string(c.DefaultCommitBehavior)),
		Timeout:               s(c.Timeout.String()),
		RateLimitRetries:      i(c.RateLimitRetries),
		ContextLimit:          i(c.ContextLimit),
	}}
}

// Get returns the stored value of key formatted as text (the form Set accepts).
func (c Config) Get(key Key) (string, error) {
	switch key {
	case KeyOpenAIAPIKey:
		return c.OpenAIAPIKey, nil
	case KeyAPIHost:
		return c.APIHost, nil
	case KeyOpenAIModel:
		return c.OpenAIModel, nil
	case KeyDescription:
		return strconv.FormatBool(c.Description), nil
	case KeyEmoji:
		return strconv.FormatBool(c.Emoji), nil
	case KeyLanguage:
		return c.Language, nil
	case KeyName:
		return c.Name, nil
	case KeyEmail:
		return c.Email, nil
	case KeyDefaultCommitMessage:
		return c.DefaultCommitMessage, nil
	case KeyDefaultPushBehavior:
		return string(c.DefaultPushBehavior), nil
	case KeyDefaultCommitBehavior:
		return string(c.DefaultCommitBehavior), nil
	case KeyTimeout:
		return c.Timeout.String(), nil
	case KeyRateLimitRetries:
		return strconv.Itoa(c.RateLimitRetries), nil
	case KeyContextLimit:
		return strconv.Itoa(c.ContextLimit), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
}

// Display is Get with secrets masked unless reveal is set.
func (c Config) Display(key Key, reveal bool) (string, error) {
	v, err := c.Get(key)
	if err != nil {
		return "", err
	}
	if key.Kind() == KindSecret && !reveal {
		return Mask(v), nil
	}
	return v, nil
}

// Set validates value for key and stores it. On error c is unchanged.
func (c *Config) Set(key Key, value string) error {
	spec, ok := _keySpecs[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	raw := value
	value = strings.TrimSpace(value)
	switch spec.kind {
	case KindBool:
		b, err := parseBool(value)
		if err != nil {
			return invalid(key, raw, "use true or false")
		}
		c.setBool(key, b)
	case KindBehavior:
		beh, err := ParseBehavior(value)
		if err != nil {
			return invalid(key, raw, "use yes, no, or ask")
		}
		c.setBehavior(key, beh)
	case KindDuration:
		d, err := parseDuration(value)
		if err != nil || d <= 0 {
			return invalid(key, raw, "use a positive duration such as 60s")
		}
		c.Timeout = d
	case KindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return invalid(key, raw, "must be a whole number")
		}
		if n < spec.min || n > spec.max {
			return invalid(key, raw, fmt.Sprintf("must be between %d and %d", spec.min, spec.max))
		}
		c.setInt(key, n)
	case KindURL:
		u, err := parseURL(value)
		if err != nil {
			return invalid(key, raw, err.Error())
		}
		c.APIHost = u
	case KindLanguage:
		lang, err := parseLanguage(value)
		if err != nil {
			return invalid(key, raw, err.Error())
		}
		c.Language = lang
	case KindEmail:
		e, err := parseEmail(value)
		if err != nil {
			return invalid(key, raw, err.Error())
		}
		c.Email = e
	case KindString:
		if value == "" {
			return invalid(key, raw, "must not be empty")
		}
		c.OpenAIModel = value
	case KindSecret:
		c.OpenAIAPIKey = value
	case KindOptionalString:
		c.setOptional(key, value)
	}
	return nil
}

func (c *Config) setBool(key Key, b bool) {
	switch key {
	case KeyDescription:
		c.Description = b
	case KeyEmoji:
		c.Emoji = b
	}
}

func (c *Config) setBehavior(key Key, b Behavior) {
	switch key {
	case KeyDefaultPushBehavior:
		c.DefaultPushBehavior = b
	case KeyDefaultCommitBehavior:
		c.DefaultCommitBehavior = b
	}
}

func (c *Config) setInt(key Key, n int) {
	switch key {
	case KeyRateLimitRetries:
		c.RateLimitRetries = n
	case KeyContextLimit:
		c.ContextLimit = n
	}
}

func (c *Config) setOptional(key Key, v string) {
	switch key {
	case KeyName:
		c.Name = v
	case KeyDefaultCommitMessage:
		c.DefaultCommitMessage = v
	}
}

// SetAll applies every pair or none: values are validated against a copy first.
func (c *Config) SetAll(pairs map[Key]string) error {
	next := *c
	for _, key := range _keyOrder {
		v, ok := pairs[key]
		if !ok {
			continue
		}
		if err := next.Set(key, v); err != nil {
			return err
		}
	}
	for key := range pairs {
		if _, ok := _keySpecs[key]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownKey, key)
		}
	}
	*c = next
	return nil
}
