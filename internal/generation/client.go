package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mediabuddy/internal/logging"
	"mediabuddy/internal/prompt"
	"mediabuddy/internal/services"
	"mediabuddy/internal/services/llm"
	"mediabuddy/internal/textutil"
)

const stage = "generating"

// LengthMismatchWarning reports output outside the requested tolerance band.
// It is attached to a successful Result and never returned as an error.
type LengthMismatchWarning struct {
	TargetWords int
	ActualWords int
	MinWords    int
	MaxWords    int
}

func (w LengthMismatchWarning) String() string {
	return fmt.Sprintf("generated %d words, target %d (accepted %d-%d)", w.ActualWords, w.TargetWords, w.MinWords, w.MaxWords)
}

// Ratio returns actual/target.
func (w LengthMismatchWarning) Ratio() float64 {
	if w.TargetWords == 0 {
		return 0
	}
	return float64(w.ActualWords) / float64(w.TargetWords)
}

// Result is the generated text and how it measured up.
type Result struct {
	Text         string
	Words        int
	TargetWords  int
	Attempts     int
	Backend      string
	Model        string
	FinishReason string
	Warning      *LengthMismatchWarning
}

// WithinTolerance reports whether the result carries no length warning.
func (r Result) WithinTolerance() bool { return r.Warning == nil }

// Client invokes a backend under a retry policy.
type Client struct {
	backend     llm.Backend
	policy      RetryPolicy
	temperature float64
	logger      *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithRetryPolicy overrides the default policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) { c.policy = policy }
}

// WithTemperature sets the sampling temperature passed to the backend.
func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = t }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient wraps backend.
func NewClient(backend llm.Backend, opts ...Option) *Client {
	c := &Client{
		backend:     backend,
		policy:      DefaultRetryPolicy(),
		temperature: 0.7,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "generation")
	return c
}

// Policy returns the effective retry policy.
func (c *Client) Policy() RetryPolicy { return c.policy }

// Generate sends req and returns a validated result.
func (c *Client) Generate(ctx context.Context, req prompt.Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	if c.backend == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stage, "generate", "no generation backend configured", nil)
	}
	ctx = services.WithStage(ctx, stage)
	logger := logging.WithContext(ctx, c.logger)

	completion := llm.Completion{
		System:          req.System,
		Prompt:          req.Prompt(),
		MaxOutputTokens: req.MaxOutputTokens,
		Temperature:     c.temperature,
	}

	attempts := c.policy.attempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := c.backend.Complete(ctx, completion)
		if err == nil && strings.TrimSpace(resp.Text) == "" {
			err = &llm.Failure{Backend: c.backend.Name(), Op: "complete", Transient: true, Err: errors.New("empty generation")}
		}
		if err == nil {
			return c.result(req, resp, attempt, logger), nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil || errors.Is(err, context.Canceled) {
			return Result{}, services.Wrap(services.ErrGenerationUnavailable, stage, "generate", "caller abandoned the request", err)
		}
		if !llm.IsTransient(err) {
			logging.ErrorWithContext(logger, "generation rejected", "generation_rejected", "check the API key, model name and request size",
				logging.Int("attempt", attempt), logging.Error(err))
			return Result{}, services.Wrap(services.ErrGenerationRejected, stage, "generate", c.backend.Name()+" rejected the request", err)
		}
		if attempt == attempts {
			break
		}

		delay := c.policy.Backoff(attempt)
		if hint, ok := llm.RetryAfterHint(err); ok {
			delay = c.policy.capDelay(hint)
		}
		logger.Debug("transient generation failure, retrying",
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", attempts),
			logging.String("delay", delay.String()),
			logging.Error(err))
		if err := c.policy.wait(ctx, delay); err != nil {
			return Result{}, services.Wrap(services.ErrGenerationUnavailable, stage, "generate", "caller abandoned the request", err)
		}
	}

	logging.ErrorWithContext(logger, "generation unavailable", "generation_unavailable", "backend kept failing; retry later",
		logging.Int("attempts", attempts), logging.Error(lastErr))
	return Result{}, services.Wrap(services.ErrGenerationUnavailable, stage, "generate",
		fmt.Sprintf("failed after %d attempts", attempts), lastErr)
}

func (c *Client) result(req prompt.Request, resp llm.Response, attempt int, logger *slog.Logger) Result {
	text := strings.TrimSpace(resp.Text)
	words := textutil.WordCount(text)
	result := Result{
		Text:         text,
		Words:        words,
		TargetWords:  req.TargetWords,
		Attempts:     attempt,
		Backend:      c.backend.Name(),
		Model:        resp.Model,
		FinishReason: resp.FinishReason,
	}
	if !req.WithinTolerance(words) {
		warning := LengthMismatchWarning{
			TargetWords: req.TargetWords,
			ActualWords: words,
			MinWords:    req.MinWords,
			MaxWords:    req.MaxWords,
		}
		result.Warning = &warning
		logging.WarnWithContext(logger, "generated length outside tolerance", "length_mismatch",
			logging.Int("target_words", req.TargetWords),
			logging.Int("actual_words", words),
			logging.String(logging.FieldImpact, "caller decides whether to accept, regenerate or truncate"))
	}
	return result
}

// HealthCheck pings the backend once without retries.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.backend == nil {
		return services.Wrap(services.ErrConfiguration, stage, "health check", "no generation backend configured", nil)
	}
	if err := c.backend.HealthCheck(ctx); err != nil {
		marker := services.ErrGenerationRejected
		if llm.IsTransient(err) {
			marker = services.ErrGenerationUnavailable
		}
		return services.Wrap(marker, stage, "health check", c.backend.Name(), err)
	}
	return nil
}
