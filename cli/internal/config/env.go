package config

import (
	"fmt"
	"strings"
)

// Shells accepted by EnvLines. Empty means plain KEY=value lines.
var Shells = []string{"bash", "zsh", "fish", "powershell"}

// EnvLines renders the configuration as environment assignments for shell,
// one line per key in display order, suitable for eval or source.
func (c Config) EnvLines(shell string) ([]string, error) {
	format, err := envFormatter(shell)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(_keyOrder))
	for _, key := range _keyOrder {
		v, err := c.Get(key)
		if err != nil {
			return nil, err
		}
		lines = append(lines, format(key.EnvName(), v))
	}
	return lines, nil
}

func envFormatter(shell string) (func(name, value string) string, error) {
	switch strings.ToLower(strings.TrimSpace(shell)) {
	case "":
		return func(name, value string) string {
			return name + "=" + value
		}, nil
	case "bash", "zsh", "sh":
		return func(name, value string) string {
			return "export " + name + "=" + posixQuote(value)
		}, nil
	case "fish":
		return func(name, value string) string {
			return "set -gx " + name + " " + fishQuote(value)
		}, nil
	case "powershell", "pwsh":
		return func(name, value string) string {
			return "$env:" + name + " = '" + strings.ReplaceAll(value, "'", "''") + "'"
		}, nil
	default:
		return nil, fmt.Errorf("unsupported shell %q (use %s)", shell, strings.Join(Shells, ", "))
	}
}

func posixQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func fishQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	return "'" + s + "'"
}
