package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCorpus()
	c.normalizeStyle()
	c.normalizeGeneration()
	c.normalizeVoice()
	if err := c.normalizeEditLog(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CorpusDir) == "" {
		c.Paths.CorpusDir = defaultCorpusDir
	}
	if c.Paths.CorpusDir, err = expandPath(c.Paths.CorpusDir); err != nil {
		return fmt.Errorf("paths.corpus_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCorpus() {
	if len(c.Corpus.Extensions) == 0 {
		c.Corpus.Extensions = []string{".md", ".markdown", ".txt"}
	} else {
		exts := make([]string, 0, len(c.Corpus.Extensions))
		seen := make(map[string]struct{}, len(c.Corpus.Extensions))
		for _, ext := range c.Corpus.Extensions {
			normalized := strings.ToLower(strings.TrimSpace(ext))
			if normalized == "" {
				continue
			}
			if !strings.HasPrefix(normalized, ".") {
				normalized = "." + normalized
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			exts = append(exts, normalized)
		}
		if len(exts) == 0 {
			exts = []string{".md", ".markdown", ".txt"}
		}
		c.Corpus.Extensions = exts
	}
	c.Corpus.SectionDelimiter = strings.TrimSpace(c.Corpus.SectionDelimiter)
	if c.Corpus.SectionDelimiter == "" {
		c.Corpus.SectionDelimiter = defaultSectionDelimiter
	}
	if c.Corpus.SampleSize <= 0 {
		c.Corpus.SampleSize = defaultSampleSize
	}
	if c.Corpus.MinSampleWords < 0 {
		c.Corpus.MinSampleWords = 0
	}
}

func (c *Config) normalizeStyle() {
	if c.Style.ExcerptCount <= 0 {
		c.Style.ExcerptCount = defaultExcerptCount
	}
	if c.Style.MinSupport <= 0 {
		c.Style.MinSupport = defaultMinSupport
	}
	if c.Style.MaxExcerptWords <= 0 {
		c.Style.MaxExcerptWords = defaultMaxExcerptWords
	}
	if c.Style.VocabularySize < 0 {
		c.Style.VocabularySize = 0
	}
}

func (c *Config) normalizeGeneration() {
	c.Generation.Provider = strings.ToLower(strings.TrimSpace(c.Generation.Provider))
	if c.Generation.Provider == "" {
		c.Generation.Provider = defaultProvider
	}
	c.Generation.BaseURL = strings.TrimSpace(c.Generation.BaseURL)
	c.Generation.Model = strings.TrimSpace(c.Generation.Model)
	switch c.Generation.Provider {
	case ProviderOpenRouter:
		if c.Generation.BaseURL == "" {
			c.Generation.BaseURL = defaultOpenRouterBaseURL
		}
		if c.Generation.Model == "" {
			c.Generation.Model = defaultOpenRouterModel
		}
	case ProviderOpenAI:
		if c.Generation.Model == "" {
			c.Generation.Model = defaultOpenAIModel
		}
	case ProviderGemini:
		if c.Generation.Model == "" {
			c.Generation.Model = defaultGeminiModel
		}
	}
	c.Generation.Referer = strings.TrimSpace(c.Generation.Referer)
	c.Generation.Title = strings.TrimSpace(c.Generation.Title)
	if c.Generation.Title == "" {
		c.Generation.Title = defaultTitle
	}
	if c.Generation.TimeoutSeconds <= 0 {
		c.Generation.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Generation.MaxAttempts <= 0 {
		c.Generation.MaxAttempts = defaultMaxAttempts
	}
	if c.Generation.RetryBaseDelayMillis < 0 {
		c.Generation.RetryBaseDelayMillis = 0
	}
	if c.Generation.RetryMaxDelayMillis <= 0 {
		c.Generation.RetryMaxDelayMillis = defaultRetryMaxDelayMillis
	}
	if c.Generation.TokensPerWord <= 0 {
		c.Generation.TokensPerWord = defaultTokensPerWord
	}
	c.Generation.APIKey = strings.TrimSpace(c.Generation.APIKey)
	if c.Generation.APIKey == "" {
		for _, name := range []string{"MEDIABUDDY_API_KEY", providerKeyEnv(c.Generation.Provider)} {
			if value, ok := os.LookupEnv(name); ok && strings.TrimSpace(value) != "" {
				c.Generation.APIKey = strings.TrimSpace(value)
				break
			}
		}
	}
}

func (c *Config) normalizeVoice() {
	c.Voice.AuthorName = strings.TrimSpace(c.Voice.AuthorName)
	if c.Voice.AuthorName == "" {
		c.Voice.AuthorName = defaultAuthorName
	}
	if c.Voice.DefaultLength <= 0 {
		c.Voice.DefaultLength = defaultVoiceLength
	}
	c.Voice.DefaultMode = strings.ToLower(strings.TrimSpace(c.Voice.DefaultMode))
	if c.Voice.DefaultMode == "" {
		c.Voice.DefaultMode = defaultVoiceMode
	}
	if c.Voice.DescriptorCacheSize <= 0 {
		c.Voice.DescriptorCacheSize = defaultDescriptorCacheSize
	}
}

func (c *Config) normalizeEditLog() error {
	var err error
	if strings.TrimSpace(c.EditLog.Path) != "" {
		if c.EditLog.Path, err = expandPath(strings.TrimSpace(c.EditLog.Path)); err != nil {
			return fmt.Errorf("edit_log.path: %w", err)
		}
	}
	if c.EditLog.HistoryWindow <= 0 {
		c.EditLog.HistoryWindow = defaultEditLogHistoryWindow
	}
	if c.EditLog.SignificantMagnitude <= 0 {
		c.EditLog.SignificantMagnitude = defaultSignificantEdit
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func providerKeyEnv(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return "OPENROUTER_API_KEY"
	}
}
