package voice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"mediabuddy/internal/generation"
	"mediabuddy/internal/logging"
	"mediabuddy/internal/prompt"
	"mediabuddy/internal/services"
)

// TextGenerator turns a composed request into a result. *generation.Client
// implements it.
type TextGenerator interface {
	Generate(ctx context.Context, req prompt.Request) (generation.Result, error)
}

// NotesSource supplies learned, topic-free style notes.
type NotesSource interface {
	StyleNotes(ctx context.Context) ([]string, error)
}

// Input is one voice request.
type Input struct {
	Mode        prompt.Mode
	Text        string
	Sources     []prompt.Source
	Prior       string
	TargetWords int
}

// Output is a finished voice request.
type Output struct {
	RequestID     string
	Mode          prompt.Mode
	CorpusVersion string
	generation.Result
}

// Generator runs the voice pipeline.
type Generator struct {
	vctx     *Context
	composer *prompt.Composer
	client   TextGenerator
	notes    NotesSource
	observer Observer
	logger   *slog.Logger
	newID    func() string
}

// Option customizes a Generator.
type Option func(*Generator)

// WithObserver registers a transition callback.
func WithObserver(observer Observer) Option {
	return func(g *Generator) { g.observer = observer }
}

// WithNotes attaches a source of learned style notes.
func WithNotes(notes NotesSource) Option {
	return func(g *Generator) { g.notes = notes }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithRequestIDs overrides request id generation (tests).
func WithRequestIDs(newID func() string) Option {
	return func(g *Generator) {
		if newID != nil {
			g.newID = newID
		}
	}
}

// NewGenerator wires the pipeline.
func NewGenerator(vctx *Context, composer *prompt.Composer, client TextGenerator, opts ...Option) *Generator {
	if composer == nil {
		composer = prompt.NewComposer(prompt.DefaultOptions())
	}
	g := &Generator{
		vctx:     vctx,
		composer: composer,
		client:   client,
		logger:   logging.NewNop(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = logging.NewComponentLogger(g.logger, "voice")
	return g
}

// GenerateVoice rewrites topic in the corpus author's voice at about target
// words.
func (g *Generator) GenerateVoice(ctx context.Context, topic string, target int) (Output, error) {
	return g.Generate(ctx, Input{Mode: prompt.ModeRewrite, Text: topic, TargetWords: target})
}

// Generate runs one request in any mode.
func (g *Generator) Generate(ctx context.Context, in Input) (Output, error) {
	if in.Mode == "" {
		in.Mode = prompt.ModeRewrite
	}
	out := Output{RequestID: g.newID(), Mode: in.Mode}
	ctx = services.WithRequestID(ctx, out.RequestID)
	ctx = services.WithMode(ctx, in.Mode.String())
	logger := logging.WithContext(ctx, g.logger)

	r := &run{id: out.RequestID, state: StateIdle, observer: g.observer, onChange: func(t Transition) {
		if t.To == StateFailed {
			logger.Debug("voice state change", logging.String("from", t.From.String()), logging.String("to", t.To.String()), logging.Error(t.Reason))
			return
		}
		logger.Debug("voice state change", logging.String("from", t.From.String()), logging.String("to", t.To.String()))
	}}

	// Input checks come before any sampling or network call.
	if in.TargetWords <= 0 {
		return out, r.fail(services.Wrap(services.ErrInvalidInput, "idle", "generate voice", fmt.Sprintf("target length must be positive, got %d", in.TargetWords), nil))
	}
	if strings.TrimSpace(in.Text) == "" {
		return out, r.fail(services.Wrap(services.ErrInvalidInput, "idle", "generate voice", "topic text is empty", nil))
	}
	if g.vctx == nil || g.client == nil {
		return out, r.fail(services.Wrap(services.ErrConfiguration, "idle", "generate voice", "voice generator is not fully configured", nil))
	}

	r.enter(StateSampling, nil)
	descriptor, version, err := g.vctx.Descriptor(services.WithStage(ctx, StateSampling.String()))
	if err != nil {
		return out, r.fail(err)
	}
	out.CorpusVersion = version

	r.enter(StateComposing, nil)
	req, err := g.composer.ComposeContent(descriptor, prompt.Content{
		Mode:    in.Mode,
		Text:    in.Text,
		Sources: in.Sources,
		Prior:   in.Prior,
		Notes:   g.styleNotes(ctx, logger),
	}, in.TargetWords)
	if err != nil {
		return out, r.fail(err)
	}

	r.enter(StateGenerating, nil)
	result, err := g.client.Generate(ctx, req)
	if err != nil {
		return out, r.fail(err)
	}
	out.Result = result

	r.enter(StateDone, nil)
	logger.Info("voice generated",
		logging.Int("target_words", result.TargetWords),
		logging.Int("words", result.Words),
		logging.Int("attempts", result.Attempts),
		logging.String("corpus_version", version))
	return out, nil
}

func (g *Generator) styleNotes(ctx context.Context, logger *slog.Logger) []string {
	if g.notes == nil {
		return nil
	}
	notes, err := g.notes.StyleNotes(ctx)
	if err != nil {
		logging.WarnWithContext(logger, "style notes unavailable", "style_notes_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "prompt composed without learned preferences"))
		return nil
	}
	return notes
}
