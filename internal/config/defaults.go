package config

const (
	defaultCorpusDir            = "~/.config/mediabuddy/writing_style_samples"
	defaultOutputDir            = "~/.local/share/mediabuddy/voice"
	defaultDataDir              = "~/.local/share/mediabuddy"
	defaultLogDir               = "~/.local/share/mediabuddy/logs"
	defaultSectionDelimiter     = "---8<---"
	defaultSampleSize           = 6
	defaultSampleSeed           = 1
	defaultMinSampleWords       = 3
	defaultExcerptCount         = 6
	defaultMinSupport           = 3
	defaultMaxExcerptWords      = 40
	defaultVocabularySize       = 12
	defaultProvider             = ProviderOpenRouter
	defaultOpenRouterBaseURL    = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterModel      = "google/gemini-2.5-flash"
	defaultOpenAIModel          = "gpt-4o-mini"
	defaultGeminiModel          = "gemini-2.5-flash"
	defaultReferer              = "https://github.com/mediabuddy/mediabuddy"
	defaultTitle                = "mediabuddy voice"
	defaultTimeoutSeconds       = 60
	defaultTemperature          = 0.7
	defaultMaxAttempts          = 3
	defaultRetryBaseDelayMillis = 1000
	defaultRetryMaxDelayMillis  = 10000
	defaultLengthTolerance      = 0.2
	defaultTokensPerWord        = 1.5
	defaultAuthorName           = "the author"
	defaultVoiceLength          = 150
	defaultVoiceMode            = "rewrite"
	defaultDescriptorCacheSize  = 8
	defaultEditLogHistoryWindow = 50
	defaultEditLogFile          = "edits.db"
	defaultSignificantEdit      = 0.3
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Provider names accepted by generation.provider.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CorpusDir: defaultCorpusDir,
			OutputDir: defaultOutputDir,
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
		},
		Corpus: Corpus{
			Extensions:       []string{".md", ".markdown", ".txt"},
			SectionDelimiter: defaultSectionDelimiter,
			SampleSize:       defaultSampleSize,
			Seed:             defaultSampleSeed,
			MinSampleWords:   defaultMinSampleWords,
		},
		Style: Style{
			ExcerptCount:    defaultExcerptCount,
			MinSupport:      defaultMinSupport,
			MaxExcerptWords: defaultMaxExcerptWords,
			VocabularySize:  defaultVocabularySize,
		},
		Generation: Generation{
			Provider:             defaultProvider,
			Referer:              defaultReferer,
			Title:                defaultTitle,
			TimeoutSeconds:       defaultTimeoutSeconds,
			Temperature:          defaultTemperature,
			MaxAttempts:          defaultMaxAttempts,
			RetryBaseDelayMillis: defaultRetryBaseDelayMillis,
			RetryMaxDelayMillis:  defaultRetryMaxDelayMillis,
			LengthTolerance:      defaultLengthTolerance,
			TokensPerWord:        defaultTokensPerWord,
		},
		Voice: Voice{
			AuthorName:          defaultAuthorName,
			DefaultLength:       defaultVoiceLength,
			DefaultMode:         defaultVoiceMode,
			DescriptorCacheSize: defaultDescriptorCacheSize,
		},
		EditLog: EditLog{
			Enabled:              true,
			HistoryWindow:        defaultEditLogHistoryWindow,
			SignificantMagnitude: defaultSignificantEdit,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
