package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mediabuddy/internal/config"
)

const defaultHTTPTimeout = 60 * time.Second

// Completion is one prompt sent to a backend.
type Completion struct {
	System          string
	Prompt          string
	MaxOutputTokens int
	Temperature     float64
}

// Response is the backend's answer to a Completion.
type Response struct {
	Text         string
	FinishReason string
	Model        string
}

// Backend is a hosted text-generation capability.
type Backend interface {
	Name() string
	Complete(ctx context.Context, req Completion) (Response, error)
	HealthCheck(ctx context.Context) error
}

// NewBackend builds the backend selected by cfg.Provider.
func NewBackend(ctx context.Context, cfg config.LLMConfig, opts ...Option) (Backend, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("llm %s: api key required", cfg.Provider)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case config.ProviderOpenRouter, "":
		return NewOpenRouter(cfg, opts...), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg, opts...), nil
	case config.ProviderGemini:
		return NewGemini(ctx, cfg, opts...)
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", cfg.Provider)
	}
}

// Option customizes a backend.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

func buildOptions(cfg config.LLMConfig, opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: timeoutFor(cfg)}
	}
	return o
}

func timeoutFor(cfg config.LLMConfig) time.Duration {
	if cfg.TimeoutSeconds > 0 {
		return time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return defaultHTTPTimeout
}

const healthPrompt = "Reply with the single word OK."
