// Package openai provides an HTTP client for the chat completions API used to
// generate commit messages.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/sabry-awad97/autocommit/cli/internal/prompt"
	"github.com/sabry-awad97/autocommit/cli/internal/trace"
	"github.com/sabry-awad97/autocommit/cli/internal/version"
)

const (
	_defaultTimeout       = 60 * time.Second
	_defaultRetryInterval = time.Second
	_maxRetries           = 5
	_maxBodyBytes         = 1 << 20
	_maxErrorBody         = 512
	completionsPath       = "/v1/chat/completions"
)

// Options configures NewClient.
type Options struct {
	// BaseURL is the API root (e.g. https://api.openai.com).
	BaseURL string
	APIKey  string
	Model   string
	// Timeout bounds one HTTP request. Zero means 60s.
	Timeout time.Duration
	// RateLimitRetries is how many times a 429 is retried (capped at 5). Zero fails immediately.
	RateLimitRetries int
	// RetryInterval is the fixed wait between attempts. Zero means 1s.
	RetryInterval time.Duration
	// HTTPClient is the base client; the bearer-token transport wraps its Transport.
	HTTPClient *http.Client
	Tracer     *trace.Tracer
}

// Client calls the chat completions API. Zero value is not valid; use NewClient.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	retries    int
	limiter    *rate.Limiter
	tracer     *trace.Tracer
}

// NewClient builds a client. The API key is checked lazily by Generate so
// sessions that never call the model work without one.
func NewClient(opts Options) *Client {
	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = _defaultTimeout
	}
	interval := opts.RetryInterval
	if interval <= 0 {
		interval = _defaultRetryInterval
	}
	retries := opts.RateLimitRetries
	if retries < 0 {
		retries = 0
	}
	if retries > _maxRetries {
		retries = _maxRetries
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.APIKey}))
	hc.Timeout = timeout
	return &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		model:      opts.Model,
		httpClient: hc,
		retries:    retries,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		tracer:     opts.Tracer,
	}
}

// Generate sends messages and returns the first completion, trimmed.
// A 429 is retried up to the configured count at a fixed interval; every
// other failure is returned at once. messages is not modified.
func (c *Client) Generate(ctx context.Context, messages []prompt.Message) (string, error) {
	if c.apiKey == "" {
		return "", &GenerationError{Kind: ErrMissingAPIKey}
	}
	req, err := NewRequest(c.model, messages).
		Temperature(DefaultTemperature).
		TopP(DefaultTopP).
		MaxTokens(DefaultMaxTokens).
		Build()
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}
	c.tracer.Section("Generate")
	c.tracer.Printf("model=%s messages=%d bytes=%d\n", c.model, len(messages), len(body))

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", &GenerationError{Kind: ErrTransport, Err: err}
		}
		text, err := c.send(ctx, body)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, ErrRateLimited) || attempt >= c.retries {
			return "", err
		}
		c.tracer.Printf("rate limited; retry %d/%d\n", attempt+1, c.retries)
	}
}

func (c *Client) send(ctx context.Context, body []byte) (string, error) {
	url := c.baseURL + completionsPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &GenerationError{Kind: ErrTransport, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("X-Client-Request-Id", reqID)
	c.tracer.Printf("POST %s request_id=%s\n", url, reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &GenerationError{Kind: ErrTransport, Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, _maxBodyBytes))
	if err != nil {
		return "", &GenerationError{Kind: ErrTransport, Err: err}
	}
	c.tracer.Printf("status=%d bytes=%d\n", resp.StatusCode, len(data))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &GenerationError{Kind: ErrRateLimited, Status: resp.StatusCode, Body: snippet(data)}
	case resp.StatusCode != http.StatusOK:
		return "", &GenerationError{Kind: ErrUnexpectedResponse, Status: resp.StatusCode, Body: snippet(data)}
	}
	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", &GenerationError{Kind: ErrUnexpectedResponse, Status: resp.StatusCode, Body: snippet(data), Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", &GenerationError{Kind: ErrNoCompletion}
	}
	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", &GenerationError{Kind: ErrNoCompletion}
	}
	return text, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > _maxErrorBody {
		s = s[:_maxErrorBody] + "..."
	}
	return s
}
