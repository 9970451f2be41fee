// Package llm provides the completion client used by bidder agents, the
// purchase reasoner and the squad manager.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

var (
	// ErrDisabled is returned when no API key is configured.
	ErrDisabled = errors.New("llm client not configured")
	// ErrRateLimited is returned when ctx ends before the per-minute call
	// budget frees a slot.
	ErrRateLimited = errors.New("llm rate limit exceeded")
	// ErrEmptyResponse is returned when the provider answers with no text.
	ErrEmptyResponse = errors.New("llm returned an empty response")
)

// Request is a single system + user prompt exchange.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int64
}

// Completer returns the model's text reply to a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Options configures a Client.
type Options struct {
	Provider          string
	Model             string
	BaseURL           string
	APIKeys           []string
	Temperature       float64
	TopP              float64
	MaxTokens         int64
	MaxCallsPerMinute int
}

// backend performs one provider call with an explicit key.
type backend interface {
	complete(ctx context.Context, apiKey string, req Request) (string, error)
}

// Client rotates API keys across calls and spaces calls to stay within a
// per-minute budget.
type Client struct {
	backend backend
	keys    *keyRing
	opts    Options
	logger  *zap.Logger
	limiter *rate.Limiter
}

// New creates a client for the configured provider.
// Returns ErrDisabled if no API key is configured.
func New(opts Options, logger *zap.Logger) (*Client, error) {
	keys := make([]string, 0, len(opts.APIKeys))
	for _, k := range opts.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, ErrDisabled
	}
	opts.APIKeys = keys

	var b backend
	switch opts.Provider {
	case ProviderAnthropic:
		b = &anthropicBackend{opts: opts}
	case ProviderOpenAI, "":
		b = &openAIBackend{opts: opts}
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
	return newClient(b, opts, logger), nil
}

func newClient(b backend, opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if opts.MaxCallsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.MaxCallsPerMinute))
	}
	return &Client{
		backend: b,
		keys:    newKeyRing(opts.APIKeys),
		opts:    opts,
		logger:  logger,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Enabled reports whether the client can make calls.
func (c *Client) Enabled() bool {
	return c != nil && c.keys.Len() > 0
}

// Complete sends the request with the next API key in rotation.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w (%d calls/min): %w", ErrRateLimited, c.opts.MaxCallsPerMinute, err)
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = c.opts.MaxTokens
	}

	key, idx := c.keys.Next()
	c.logger.Debug("llm call",
		zap.String("provider", c.opts.Provider),
		zap.String("model", c.opts.Model),
		zap.Int("key_index", idx),
	)

	text, err := c.backend.complete(ctx, key, req)
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", c.opts.Provider, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
