package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mediabuddy/internal/config"
	"mediabuddy/internal/corpus"
	"mediabuddy/internal/editlog"
	"mediabuddy/internal/generation"
	"mediabuddy/internal/logging"
	"mediabuddy/internal/prompt"
	"mediabuddy/internal/services/llm"
	"mediabuddy/internal/style"
	"mediabuddy/internal/voice"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// log returns the CLI logger. A logger that cannot be built degrades to a
// no-op one; commands still run.
func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) openCorpus(ctx context.Context) (*corpus.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return corpus.OpenFromConfig(ctx, cfg)
}

func (c *commandContext) extractor() *style.Extractor {
	cfg := c.config
	return style.NewExtractor(style.Options{
		ExcerptCount:    cfg.Style.ExcerptCount,
		MinSupport:      cfg.Style.MinSupport,
		MaxExcerptWords: cfg.Style.MaxExcerptWords,
		VocabularySize:  cfg.Style.VocabularySize,
	})
}

func (c *commandContext) composer() *prompt.Composer {
	cfg := c.config
	return prompt.NewComposer(prompt.Options{
		AuthorName:    cfg.Voice.AuthorName,
		Tolerance:     cfg.Generation.LengthTolerance,
		TokensPerWord: cfg.Generation.TokensPerWord,
		TokenHeadroom: prompt.DefaultOptions().TokenHeadroom,
	})
}

func (c *commandContext) generationClient(ctx context.Context) (*generation.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireGeneration(); err != nil {
		return nil, err
	}
	backend, err := llm.NewBackend(ctx, cfg.GetLLM())
	if err != nil {
		return nil, err
	}
	return generation.NewClient(backend,
		generation.WithRetryPolicy(generation.RetryPolicy{
			MaxAttempts: cfg.Generation.MaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay(),
			MaxDelay:    cfg.RetryMaxDelay(),
		}),
		generation.WithTemperature(cfg.Generation.Temperature),
		generation.WithLogger(c.log()),
	), nil
}

var errEditLogDisabled = errors.New("edit log is disabled (set edit_log.enabled = true)")

func (c *commandContext) openEditLog(ctx context.Context) (*editlog.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.EditLog.Enabled {
		return nil, errEditLogDisabled
	}
	return editlog.Open(ctx, cfg.EditLogPath(), editlog.Options{
		HistoryWindow:        cfg.EditLog.HistoryWindow,
		SignificantMagnitude: cfg.EditLog.SignificantMagnitude,
		Logger:               c.log(),
	})
}

// newGenerator wires the full voice pipeline. The returned func releases the
// edit log when one was opened.
func (c *commandContext) newGenerator(ctx context.Context) (*voice.Generator, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := c.generationClient(ctx)
	if err != nil {
		return nil, nil, err
	}
	store, err := c.openCorpus(ctx)
	if err != nil {
		return nil, nil, err
	}
	vctx, err := voice.NewContext(store, c.extractor(), cfg.Corpus.SampleSize, cfg.Voice.DescriptorCacheSize)
	if err != nil {
		return nil, nil, err
	}

	opts := []voice.Option{voice.WithLogger(c.log())}
	release := func() {}
	if cfg.EditLog.Enabled {
		edits, err := c.openEditLog(ctx)
		if err != nil {
			logging.WarnWithContext(c.log(), "edit log unavailable", "edit_log_unavailable",
				logging.Error(err),
				logging.String(logging.FieldImpact, "prompt composed without learned preferences"))
		} else {
			opts = append(opts, voice.WithNotes(edits))
			release = func() { _ = edits.Close() }
		}
	}
	return voice.NewGenerator(vctx, c.composer(), client, opts...), release, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
