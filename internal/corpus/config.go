package corpus

import (
	"context"

	"mediabuddy/internal/config"
)

// OptionsFromConfig maps the corpus section of cfg onto LoadOptions.
func OptionsFromConfig(cfg *config.Config) LoadOptions {
	return LoadOptions{
		Extensions: cfg.Corpus.Extensions,
		Delimiter:  cfg.Corpus.SectionDelimiter,
		MinWords:   cfg.Corpus.MinSampleWords,
	}
}

// OpenFromConfig opens the configured corpus directory.
func OpenFromConfig(ctx context.Context, cfg *config.Config) (*Store, error) {
	return Open(ctx, cfg.Paths.CorpusDir, OptionsFromConfig(cfg), cfg.Corpus.Seed)
}
