// Package tokens estimates prompt sizes against the model context window.
// Estimation uses a byte-based chars/4 heuristic, which is close enough for
// deciding how much diff fits and when to warn.
package tokens

import (
	"fmt"
	"math"
)

// charsPerToken is the divisor for the byte-based estimator
// (roughly 4 bytes per token for typical English/code).
const charsPerToken = 4

// DefaultResponseReserve is the number of tokens kept free for the commit
// message itself when checking total context.
const DefaultResponseReserve = 256

// DefaultWarnThreshold is the fraction of the context limit at which a warning is shown.
const DefaultWarnThreshold = 0.9

// Estimate returns an estimated token count for text: (len(text)+3)/4 bytes,
// so 1–4 bytes map to 1 token, 5–8 to 2, etc. Empty string returns 0.
func Estimate(text string) int {
	n := len(text)
	if n == 0 {
		return 0
	}
	return (n + charsPerToken - 1) / charsPerToken
}

// BytesFor returns how many bytes of text fit in n tokens. n <= 0 returns 0.
func BytesFor(n int) int {
	if n <= 0 {
		return 0
	}
	if n > math.MaxInt/charsPerToken {
		return math.MaxInt
	}
	return n * charsPerToken
}

// Remaining returns the tokens left in contextLimit after usedTokens and
// responseReserve. Returns -1 when contextLimit <= 0 (no limit configured).
func Remaining(contextLimit, usedTokens, responseReserve int) int {
	if contextLimit <= 0 {
		return -1
	}
	left := contextLimit - usedTokens - responseReserve
	if left < 0 {
		return 0
	}
	return left
}

// WarnIfOver returns a non-empty warning string when the total estimated
// tokens (promptTokens + responseReserve) meet or exceed warnThreshold of
// contextLimit. If contextLimit <= 0, returns "".
func WarnIfOver(promptTokens, responseReserve, contextLimit int, warnThreshold float64) string {
	if contextLimit <= 0 {
		return ""
	}
	if promptTokens < 0 || responseReserve < 0 {
		return ""
	}
	if responseReserve > math.MaxInt-promptTokens {
		return fmt.Sprintf("token estimate overflow (prompt %d + reserve %d)", promptTokens, responseReserve)
	}
	total := promptTokens + responseReserve
	limit := float64(contextLimit) * warnThreshold
	threshold := int(limit)
	if limit > float64(threshold) {
		threshold++
	}
	if total < threshold {
		return ""
	}
	pct := warnThreshold * 100
	return fmt.Sprintf("estimated tokens %d (prompt %d + reserve %d) exceeds %.0f%% of context limit %d",
		total, promptTokens, responseReserve, pct, contextLimit)
}
