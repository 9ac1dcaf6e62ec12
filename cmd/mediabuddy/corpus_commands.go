package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mediabuddy/internal/config"
	"mediabuddy/internal/fileutil"
	"mediabuddy/internal/style"
	"mediabuddy/internal/textutil"
)

const previewWords = 10

var corpusColumns = []column{
	{title: "#", numeric: true},
	{title: "Source"},
	{title: "Words", numeric: true},
	{title: "Preview"},
}

func newCorpusCommand(ctx *commandContext) *cobra.Command {
	corpusCmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect the writing-sample corpus",
	}
	corpusCmd.AddCommand(newCorpusListCommand(ctx))
	corpusCmd.AddCommand(newCorpusStyleCommand(ctx))
	corpusCmd.AddCommand(newCorpusAddCommand(ctx))
	return corpusCmd
}

type corpusSampleJSON struct {
	Index  int    `json:"index"`
	Source string `json:"source"`
	Words  int    `json:"words"`
}

type corpusListJSON struct {
	Directory string             `json:"directory"`
	Version   string             `json:"version"`
	Samples   []corpusSampleJSON `json:"samples"`
}

func newCorpusListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List writing samples",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCorpus(cmd.Context())
			if err != nil {
				return err
			}
			payload := corpusListJSON{Directory: store.Source(), Version: store.Version()}
			rows := make([][]string, 0, store.Len())
			for i, sample := range store.Samples() {
				payload.Samples = append(payload.Samples, corpusSampleJSON{Index: i + 1, Source: sample.Source(), Words: sample.WordCount()})
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					sample.Source(),
					strconv.Itoa(sample.WordCount()),
					preview(sample.Body()),
				})
			}
			return emit(cmd, asJSON, payload, func() error {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(corpusColumns, rows))
				fmt.Fprintf(out, "%d samples, version %s\n", store.Len(), store.Version())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

type corpusStyleJSON struct {
	Version    string           `json:"version"`
	Descriptor style.Descriptor `json:"descriptor"`
	Rendered   string           `json:"rendered"`
}

func newCorpusStyleCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "style",
		Short: "Show the style descriptor derived from the corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openCorpus(cmd.Context())
			if err != nil {
				return err
			}
			samples, err := store.Sample(cfg.Corpus.SampleSize)
			if err != nil {
				return err
			}
			d, err := ctx.extractor().Derive(samples)
			if err != nil {
				return err
			}
			payload := corpusStyleJSON{Version: store.Version(), Descriptor: d, Rendered: d.Render()}
			return emit(cmd, asJSON, payload, func() error {
				out := cmd.OutOrStdout()
				for _, line := range renderSectionHeader("Style descriptor "+store.Version(), shouldColorize(out)) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, payload.Rendered)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newCorpusAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>...",
		Short: "Copy writing samples into the corpus directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.Paths.CorpusDir, 0o755); err != nil {
				return fmt.Errorf("create corpus directory: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, arg := range args {
				src, err := config.ExpandPath(arg)
				if err != nil {
					return err
				}
				if !hasExtension(src, cfg.Corpus.Extensions) {
					return fmt.Errorf("%s: extension not in corpus.extensions (%s)", src, strings.Join(cfg.Corpus.Extensions, ", "))
				}
				dst := filepath.Join(cfg.Paths.CorpusDir, filepath.Base(src))
				digest, err := fileutil.CopyFileVerified(src, dst)
				if err != nil {
					return fmt.Errorf("add %s: %w", src, err)
				}
				fmt.Fprintf(out, "Added %s (sha256 %s)\n", dst, digest[:12])
			}
			return nil
		},
	}
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func preview(body string) string {
	words := strings.Fields(textutil.CollapseWhitespace(body))
	if len(words) <= previewWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:previewWords], " ") + " ..."
}
