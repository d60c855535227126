package openai

import (
	"errors"
	"fmt"

	"github.com/sabry-awad97/autocommit/cli/internal/prompt"
)

// Decoding defaults for commit messages: moderate temperature, narrow nucleus.
const (
	DefaultTemperature = 0.5
	DefaultTopP        = 0.1
	DefaultMaxTokens   = 256
)

// ChatRequest is the body of POST /v1/chat/completions.
type ChatRequest struct {
	Model       string           `json:"model"`
	Messages    []prompt.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
	TopP        float64          `json:"top_p"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
}

// RequestBuilder constructs a ChatRequest; the first invalid setting is reported by Build.
type RequestBuilder struct {
	req ChatRequest
	err error
}

// NewRequest starts a request with default decoding settings.
func NewRequest(model string, messages []prompt.Message) *RequestBuilder {
	return &RequestBuilder{req: ChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		MaxTokens:   DefaultMaxTokens,
	}}
}

// Temperature sets the sampling temperature (0..2).
func (b *RequestBuilder) Temperature(t float64) *RequestBuilder {
	if b.err == nil && (t < 0 || t > 2) {
		b.err = fmt.Errorf("temperature %v out of range [0, 2]", t)
	}
	b.req.Temperature = t
	return b
}

// TopP sets nucleus sampling (0..1].
func (b *RequestBuilder) TopP(p float64) *RequestBuilder {
	if b.err == nil && (p <= 0 || p > 1) {
		b.err = fmt.Errorf("top_p %v out of range (0, 1]", p)
	}
	b.req.TopP = p
	return b
}

// MaxTokens bounds the completion length; 0 leaves it to the provider.
func (b *RequestBuilder) MaxTokens(n int) *RequestBuilder {
	if b.err == nil && n < 0 {
		b.err = fmt.Errorf("max_tokens %d must be non-negative", n)
	}
	b.req.MaxTokens = n
	return b
}

// Build returns the request or the first validation error.
func (b *RequestBuilder) Build() (ChatRequest, error) {
	if b.err != nil {
		return ChatRequest{}, b.err
	}
	if b.req.Model == "" {
		return ChatRequest{}, errors.New("model is required")
	}
	if len(b.req.Messages) == 0 {
		return ChatRequest{}, errors.New("at least one message is required")
	}
	return b.req, nil
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
