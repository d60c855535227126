package config

import (
	"errors"
	"fmt"
	"strings"
)

// EnvPrefix is prepended to the upper-cased key name to form the environment
// variable that overrides a key at load time (e.g. AUTOCOMMIT_OPEN_AI_API_KEY).
const EnvPrefix = "AUTOCOMMIT_"

// ErrUnknownKey is returned for a key name outside the supported set.
var ErrUnknownKey = errors.New("unsupported config key")

// Key names one configuration entry.
type Key string

const (
	KeyOpenAIAPIKey          Key = "open_ai_api_key"
	KeyAPIHost               Key = "api_host"
	KeyOpenAIModel           Key = "open_ai_model"
	KeyDescription           Key = "description"
	KeyEmoji                 Key = "emoji"
	KeyLanguage              Key = "language"
	KeyName                  Key = "name"
	KeyEmail                 Key = "email"
	KeyDefaultCommitMessage  Key = "default_commit_message"
	KeyDefaultPushBehavior   Key = "default_push_behavior"
	KeyDefaultCommitBehavior Key = "default_commit_behavior"
	KeyTimeout               Key = "timeout"
	KeyRateLimitRetries      Key = "rate_limit_retries"
	KeyContextLimit          Key = "context_limit"
)

// Kind is the value type behind a key. Each kind has its own parse, format,
// and validation rules (see value.go).
type Kind int

const (
	KindString Kind = iota
	KindSecret
	KindOptionalString
	KindBool
	KindBehavior
	KindLanguage
	KindURL
	KindEmail
	KindDuration
	KindInt
)

type keySpec struct {
	kind     Kind
	min, max int // KindInt bounds, inclusive
}

// _keyOrder is the display order for config get and config env.
var _keyOrder = []Key{
	KeyOpenAIAPIKey,
	KeyAPIHost,
	KeyOpenAIModel,
	KeyDescription,
	KeyEmoji,
	KeyLanguage,
	KeyName,
	KeyEmail,
	KeyDefaultCommitMessage,
	KeyDefaultPushBehavior,
	KeyDefaultCommitBehavior,
	KeyTimeout,
	KeyRateLimitRetries,
	KeyContextLimit,
}

var _keySpecs = map[Key]keySpec{
	KeyOpenAIAPIKey:          {kind: KindSecret},
	KeyAPIHost:               {kind: KindURL},
	KeyOpenAIModel:           {kind: KindString},
	KeyDescription:           {kind: KindBool},
	KeyEmoji:                 {kind: KindBool},
	KeyLanguage:              {kind: KindLanguage},
	KeyName:                  {kind: KindOptionalString},
	KeyEmail:                 {kind: KindEmail},
	KeyDefaultCommitMessage:  {kind: KindOptionalString},
	KeyDefaultPushBehavior:   {kind: KindBehavior},
	KeyDefaultCommitBehavior: {kind: KindBehavior},
	KeyTimeout:               {kind: KindDuration},
	KeyRateLimitRetries:      {kind: KindInt, min: 0, max: 5},
	KeyContextLimit:          {kind: KindInt, min: 0, max: 10_000_000},
}

// Keys returns every supported key in display order.
func Keys() []Key {
	out := make([]Key, len(_keyOrder))
	copy(out, _keyOrder)
	return out
}

// ParseKey normalizes s (trim, lowercase) and returns the matching Key.
func ParseKey(s string) (Key, error) {
	k := Key(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := _keySpecs[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, s)
	}
	return k, nil
}

// Kind returns the value kind of k. Unknown keys report KindString.
func (k Key) Kind() Kind {
	return _keySpecs[k].kind
}

// EnvName returns the environment variable that overrides k.
func (k Key) EnvName() string {
	return EnvPrefix + strings.ToUpper(string(k))
}

// ValidationError reports a rejected value. The prior value is left intact.
type ValidationError struct {
	Key    Key
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	v := e.Value
	if e.Key.Kind() == KindSecret {
		v = Mask(v)
	}
	return fmt.Sprintf("invalid value %q for %s: %s", v, e.Key, e.Reason)
}

func invalid(key Key, value, reason string) error {
	return &ValidationError{Key: key, Value: value, Reason: reason}
}
