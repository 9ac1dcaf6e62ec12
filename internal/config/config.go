package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CorpusDir string `toml:"corpus_dir"`
	OutputDir string `toml:"output_dir"`
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
}

// Corpus controls how writing samples are discovered and sampled.
type Corpus struct {
	Extensions       []string `toml:"extensions"`
	SectionDelimiter string   `toml:"section_delimiter"`
	SampleSize       int      `toml:"sample_size"`
	Seed             int64    `toml:"seed"`
	MinSampleWords   int      `toml:"min_sample_words"`
}

// Style controls style descriptor derivation.
type Style struct {
	ExcerptCount int `toml:"excerpt_count"`
	// MinSupport is the number of samples a content word must appear in before
	// it may survive into an excerpt. Proper nouns and numerals never survive.
	MinSupport      int `toml:"min_support"`
	MaxExcerptWords int `toml:"max_excerpt_words"`
	VocabularySize  int `toml:"vocabulary_size"`
}

// Generation contains the text-generation backend settings.
type Generation struct {
	Provider             string  `toml:"provider"`
	APIKey               string  `toml:"api_key"`
	BaseURL              string  `toml:"base_url"`
	Model                string  `toml:"model"`
	Referer              string  `toml:"referer"`
	Title                string  `toml:"title"`
	TimeoutSeconds       int     `toml:"timeout_seconds"`
	Temperature          float64 `toml:"temperature"`
	MaxAttempts          int     `toml:"max_attempts"`
	RetryBaseDelayMillis int     `toml:"retry_base_delay_ms"`
	RetryMaxDelayMillis  int     `toml:"retry_max_delay_ms"`
	// LengthTolerance is the accepted relative deviation from the target word
	// count (0.2 means ±20%).
	LengthTolerance float64 `toml:"length_tolerance"`
	TokensPerWord   float64 `toml:"tokens_per_word"`
}

// Voice contains defaults for the voice generator.
type Voice struct {
	AuthorName          string `toml:"author_name"`
	DefaultLength       int    `toml:"default_length"`
	DefaultMode         string `toml:"default_mode"`
	DescriptorCacheSize int    `toml:"descriptor_cache_size"`
}

// EditLog contains configuration for edit-session learning.
type EditLog struct {
	Enabled              bool    `toml:"enabled"`
	Path                 string  `toml:"path"`
	HistoryWindow        int     `toml:"history_window"`
	SignificantMagnitude float64 `toml:"significant_magnitude"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for mediabuddy.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Corpus     Corpus     `toml:"corpus"`
	Style      Style      `toml:"style"`
	Generation Generation `toml:"generation"`
	Voice      Voice      `toml:"voice"`
	EditLog    EditLog    `toml:"edit_log"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mediabuddy/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	// A missing .env is the common case.
	_ = godotenv.Load()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediabuddy.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the CLI writes into. The corpus
// directory is read-only input and is never created.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the resolved connection settings for the generation backend.
type LLMConfig struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	Temperature    float64
}

// GetLLM returns the generation backend connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:       strings.TrimSpace(c.Generation.Provider),
		APIKey:         strings.TrimSpace(c.Generation.APIKey),
		BaseURL:        strings.TrimSpace(c.Generation.BaseURL),
		Model:          strings.TrimSpace(c.Generation.Model),
		Referer:        strings.TrimSpace(c.Generation.Referer),
		Title:          strings.TrimSpace(c.Generation.Title),
		TimeoutSeconds: c.Generation.TimeoutSeconds,
		Temperature:    c.Generation.Temperature,
	}
}

// RetryBaseDelay returns the first retry delay as a duration.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.Generation.RetryBaseDelayMillis) * time.Millisecond
}

// RetryMaxDelay returns the retry delay cap as a duration.
func (c *Config) RetryMaxDelay() time.Duration {
	return time.Duration(c.Generation.RetryMaxDelayMillis) * time.Millisecond
}

// EditLogPath returns the resolved edit-learning database path.
func (c *Config) EditLogPath() string {
	if strings.TrimSpace(c.EditLog.Path) != "" {
		return c.EditLog.Path
	}
	return filepath.Join(c.Paths.DataDir, defaultEditLogFile)
}

// RequireGeneration reports whether the generation backend is usable. Commands
// that never call the model (corpus inspection, config) skip this check.
func (c *Config) RequireGeneration() error {
	if c.Generation.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/mediabuddy/config.toml"
		}
		return fmt.Errorf("generation.api_key is required. Set MEDIABUDDY_API_KEY (or %s) or edit %s (create with 'mediabuddy config init')", providerKeyEnv(c.Generation.Provider), defaultPath)
	}
	return nil
}
