package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCorpus(); err != nil {
		return err
	}
	if err := c.validateStyle(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateVoice(); err != nil {
		return err
	}
	if err := c.validateEditLog(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.CorpusDir) == "" {
		return errors.New("paths.corpus_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateCorpus() error {
	if c.Corpus.SampleSize <= 0 {
		return errors.New("corpus.sample_size must be positive")
	}
	if strings.ContainsAny(c.Corpus.SectionDelimiter, "\r\n") {
		return errors.New("corpus.section_delimiter must be a single line")
	}
	return nil
}

func (c *Config) validateStyle() error {
	return ensurePositiveMap(map[string]int{
		"style.excerpt_count":     c.Style.ExcerptCount,
		"style.min_support":       c.Style.MinSupport,
		"style.max_excerpt_words": c.Style.MaxExcerptWords,
	})
}

func (c *Config) validateGeneration() error {
	switch c.Generation.Provider {
	case ProviderOpenRouter, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("generation.provider %q not supported (use %s, %s, or %s)", c.Generation.Provider, ProviderOpenRouter, ProviderOpenAI, ProviderGemini)
	}
	if c.Generation.Provider == ProviderOpenRouter && c.Generation.BaseURL == "" {
		return errors.New("generation.base_url must be set for the openrouter provider")
	}
	if c.Generation.Model == "" {
		return errors.New("generation.model must be set")
	}
	if err := ensurePositiveMap(map[string]int{
		"generation.timeout_seconds":    c.Generation.TimeoutSeconds,
		"generation.max_attempts":       c.Generation.MaxAttempts,
		"generation.retry_max_delay_ms": c.Generation.RetryMaxDelayMillis,
	}); err != nil {
		return err
	}
	if c.Generation.RetryBaseDelayMillis > c.Generation.RetryMaxDelayMillis {
		return errors.New("generation.retry_base_delay_ms must not exceed generation.retry_max_delay_ms")
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return errors.New("generation.temperature must be between 0 and 2")
	}
	if c.Generation.LengthTolerance <= 0 || c.Generation.LengthTolerance >= 1 {
		return errors.New("generation.length_tolerance must be between 0 and 1 (exclusive)")
	}
	return nil
}

func (c *Config) validateVoice() error {
	switch c.Voice.DefaultMode {
	case "rewrite", "respond", "synthesize", "enhance", "query":
	default:
		return fmt.Errorf("voice.default_mode %q not supported", c.Voice.DefaultMode)
	}
	return nil
}

func (c *Config) validateEditLog() error {
	if c.EditLog.SignificantMagnitude >= 1 {
		return errors.New("edit_log.significant_magnitude must be below 1")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
