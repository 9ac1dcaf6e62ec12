package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mediabuddy/internal/output"
	"mediabuddy/internal/prompt"
	"mediabuddy/internal/textutil"
	"mediabuddy/internal/voice"
)

type voiceOptions struct {
	length  int
	mode    string
	file    string
	sources []string
	prior   string
	noSave  bool
	asJSON  bool
}

type voiceJSON struct {
	RequestID     string  `json:"request_id"`
	Mode          string  `json:"mode"`
	TargetWords   int     `json:"target_words"`
	Words         int     `json:"words"`
	Attempts      int     `json:"attempts"`
	Backend       string  `json:"backend"`
	Model         string  `json:"model,omitempty"`
	CorpusVersion string  `json:"corpus_version"`
	Warning       string  `json:"warning,omitempty"`
	LengthRatio   float64 `json:"length_ratio,omitempty"`
	Path          string  `json:"path,omitempty"`
	Text          string  `json:"text"`
}

func newVoiceCommand(ctx *commandContext) *cobra.Command {
	var opts voiceOptions

	cmd := &cobra.Command{
		Use:   "voice [topic...]",
		Short: "Generate text about a topic in the corpus author's voice",
		Long: `Generate text about a topic in the corpus author's voice.

The topic is taken from the arguments, or from --file (use "-" for stdin).
Modes: rewrite (default), respond, synthesize, enhance, query. synthesize and
enhance need at least one --source file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVoice(cmd, ctx, opts, args)
		},
	}

	cmd.Flags().IntVarP(&opts.length, "length", "n", 0, "Target length in words (default voice.default_length)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Prompt mode (default voice.default_mode)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read the topic, article, draft or question from a file")
	cmd.Flags().StringArrayVarP(&opts.sources, "source", "s", nil, "Reference material file (repeatable)")
	cmd.Flags().StringVar(&opts.prior, "prior", "", "File with earlier conversation for query mode")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "Do not write the result to the output directory")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Output as JSON")
	return cmd
}

func runVoice(cmd *cobra.Command, ctx *commandContext, opts voiceOptions, args []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	modeValue := opts.mode
	if strings.TrimSpace(modeValue) == "" {
		modeValue = cfg.Voice.DefaultMode
	}
	mode, err := prompt.ParseMode(modeValue)
	if err != nil {
		return err
	}
	length := opts.length
	if !cmd.Flags().Changed("length") {
		length = cfg.Voice.DefaultLength
	}

	text := strings.Join(args, " ")
	if opts.file != "" {
		if text, err = readInput(cmd.InOrStdin(), opts.file); err != nil {
			return err
		}
	}
	sources, err := readSources(opts.sources)
	if err != nil {
		return err
	}
	var prior string
	if opts.prior != "" {
		if prior, err = readInput(cmd.InOrStdin(), opts.prior); err != nil {
			return err
		}
	}

	gen, release, err := ctx.newGenerator(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	result, err := gen.Generate(cmd.Context(), voice.Input{
		Mode:        mode,
		Text:        text,
		Sources:     sources,
		Prior:       prior,
		TargetWords: length,
	})
	if err != nil {
		return err
	}

	payload := voiceJSON{
		RequestID:     result.RequestID,
		Mode:          result.Mode.String(),
		TargetWords:   result.TargetWords,
		Words:         result.Words,
		Attempts:      result.Attempts,
		Backend:       result.Backend,
		Model:         result.Model,
		CorpusVersion: result.CorpusVersion,
		Text:          result.Text,
	}
	if result.Warning != nil {
		payload.Warning = result.Warning.String()
		payload.LengthRatio = result.Warning.Ratio()
	}

	if !opts.noSave {
		writer, err := output.NewWriter(cfg.Paths.OutputDir)
		if err != nil {
			return err
		}
		payload.Path, err = writer.Write(cmd.Context(), output.Document{
			RequestID:     payload.RequestID,
			Mode:          payload.Mode,
			Topic:         topicLabel(text),
			TargetWords:   payload.TargetWords,
			Words:         payload.Words,
			Attempts:      payload.Attempts,
			Backend:       payload.Backend,
			Model:         payload.Model,
			CorpusVersion: payload.CorpusVersion,
			Warning:       payload.Warning,
			Text:          payload.Text,
		})
		if err != nil {
			return err
		}
	}

	return emit(cmd, opts.asJSON, payload, func() error {
		fmt.Fprintln(cmd.OutOrStdout(), payload.Text)
		errOut := cmd.ErrOrStderr()
		colorize := shouldColorize(errOut)
		if payload.Warning != "" {
			fmt.Fprintln(errOut, renderStatusLine("Length", statusWarn, payload.Warning, colorize))
		}
		if payload.Path != "" {
			fmt.Fprintln(errOut, renderStatusLine("Saved", statusOK, payload.Path, colorize))
		}
		return nil
	})
}

// topicLabel shortens the primary text into a one-line topic for file names
// and edit records.
func topicLabel(text string) string {
	text = textutil.CollapseWhitespace(text)
	words := strings.Fields(text)
	if len(words) > 12 {
		words = words[:12]
	}
	return strings.Join(words, " ")
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func readSources(paths []string) ([]prompt.Source, error) {
	sources := make([]prompt.Source, 0, len(paths))
	for _, path := range paths {
		doc, err := output.Read(path)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(doc.Text) == "" {
			return nil, fmt.Errorf("source %s is empty", path)
		}
		title := doc.Topic
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		sources = append(sources, prompt.Source{Title: title, Body: doc.Text})
	}
	return sources, nil
}
