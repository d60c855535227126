package config

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Behavior is a configured answer to a recurring confirmation (commit, push).
type Behavior string

const (
	BehaviorUnset Behavior = ""
	BehaviorYes   Behavior = "yes"
	BehaviorNo    Behavior = "no"
	BehaviorAsk   Behavior = "ask"
)

// ParseBehavior accepts yes/no/ask (case-insensitive) and "" for unset.
func ParseBehavior(s string) (Behavior, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return BehaviorUnset, nil
	case "yes", "y":
		return BehaviorYes, nil
	case "no", "n":
		return BehaviorNo, nil
	case "ask":
		return BehaviorAsk, nil
	default:
		return BehaviorUnset, fmt.Errorf("invalid behavior %q", s)
	}
}

// parseBool parses common boolean values: 1/true/yes/on = true, 0/false/no/off = false (case-insensitive).
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	// Go duration first (e.g. "90s", "2m")
	d, err := time.ParseDuration(s)
	if err == nil {
		return d, nil
	}
	// Integer seconds
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return time.Duration(n) * time.Second, nil
}

var languageRegex = regexp.MustCompile(`^[a-z][a-z -]*[a-z]$`)

// parseLanguage normalizes a locale word such as "English" or "brazilian portuguese".
// The value is passed through to the model; the translation catalog falls back
// to English for locales it does not carry.
func parseLanguage(s string) (string, error) {
	norm := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	if !languageRegex.MatchString(norm) {
		return "", fmt.Errorf("language must be a word such as english")
	}
	return norm, nil
}

func parseURL(s string) (string, error) {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return "", fmt.Errorf("host is required")
	}
	return strings.TrimSuffix(s, "/"), nil
}

func parseEmail(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", fmt.Errorf("must be a plain address such as dev@example.com")
	}
	return s, nil
}

// Mask hides all but a short prefix and suffix of a secret for display.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 10 {
		return "****"
	}
	return secret[:3] + "..." + secret[len(secret)-4:]
}
