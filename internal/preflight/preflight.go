package preflight

import (
	"context"

	"mediabuddy/internal/config"
	"mediabuddy/internal/services/llm"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Option customizes RunAll.
type Option func(*runOptions)

type runOptions struct {
	skipLLM    bool
	llmOptions []llm.Option
}

// WithoutLLM skips the generation backend check.
func WithoutLLM() Option {
	return func(o *runOptions) { o.skipLLM = true }
}

// WithLLMOptions passes backend options (an HTTP client in tests) to the LLM
// check.
func WithLLMOptions(opts ...llm.Option) Option {
	return func(o *runOptions) { o.llmOptions = append(o.llmOptions, opts...) }
}

// RunAll executes every applicable check for cfg.
func RunAll(ctx context.Context, cfg *config.Config, opts ...Option) []Result {
	if cfg == nil {
		return nil
	}
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}

	results := []Result{
		CheckReadableDirectory("Corpus directory", cfg.Paths.CorpusDir),
		CheckCorpus(ctx, cfg),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
	}
	if cfg.EditLog.Enabled {
		results = append(results, CheckEditLog(ctx, cfg))
	}
	if !o.skipLLM {
		results = append(results, CheckLLM(ctx, "Generation backend", cfg.GetLLM(), o.llmOptions...))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
