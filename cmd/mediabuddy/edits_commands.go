package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediabuddy/internal/editlog"
	"mediabuddy/internal/output"
	"mediabuddy/internal/textutil"
)

func newEditsCommand(ctx *commandContext) *cobra.Command {
	editsCmd := &cobra.Command{
		Use:   "edits",
		Short: "Learn from edits made to generated text",
	}
	editsCmd.AddCommand(newEditsRecordCommand(ctx))
	editsCmd.AddCommand(newEditsSuggestCommand(ctx))
	editsCmd.AddCommand(newEditsListCommand(ctx))
	return editsCmd
}

type editSessionJSON struct {
	ID          string           `json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	Topic       string           `json:"topic"`
	Mode        string           `json:"mode,omitempty"`
	RequestID   string           `json:"request_id,omitempty"`
	Significant bool             `json:"significant"`
	Analysis    editlog.Analysis `json:"analysis"`
}

func sessionJSON(s editlog.Session) editSessionJSON {
	return editSessionJSON{
		ID:          s.ID,
		CreatedAt:   s.CreatedAt,
		Topic:       s.Topic,
		Mode:        s.Mode,
		RequestID:   s.RequestID,
		Significant: s.Significant,
		Analysis:    s.Analysis,
	}
}

func newEditsRecordCommand(ctx *commandContext) *cobra.Command {
	var generatedPath, editedPath, topic string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record how a generated text was edited",
		Long: `Record how a generated text was edited.

--generated is usually a file written by "mediabuddy voice"; its front matter
supplies the topic, mode and request id. --edited is the final text.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(generatedPath) == "" || strings.TrimSpace(editedPath) == "" {
				return errors.New("--generated and --edited are required")
			}
			generated, err := output.Read(generatedPath)
			if err != nil {
				return err
			}
			edited, err := output.Read(editedPath)
			if err != nil {
				return err
			}
			if strings.TrimSpace(topic) == "" {
				topic = generated.Topic
			}

			store, err := ctx.openEditLog(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			session, err := store.Record(cmd.Context(), editlog.SessionInput{
				Topic:     topic,
				Mode:      generated.Mode,
				RequestID: generated.RequestID,
				Original:  generated.Text,
				Edited:    edited.Text,
			})
			if err != nil {
				return err
			}
			return emit(cmd, asJSON, sessionJSON(session), func() error {
				a := session.Analysis
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Recorded edit session %s\n", session.ID)
				fmt.Fprintf(out, "  Words:     %d -> %d (ratio %.2f)\n", a.OriginalWords, a.EditedWords, a.LengthRatio)
				fmt.Fprintf(out, "  Magnitude: %.3f\n", a.Magnitude)
				fmt.Fprintf(out, "  Edits:     %s\n", editTypesLabel(a.EditTypes))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&generatedPath, "generated", "", "File with the generated text")
	cmd.Flags().StringVar(&editedPath, "edited", "", "File with the edited text")
	cmd.Flags().StringVar(&topic, "topic", "", "Topic label (defaults to the generated file's topic)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newEditsSuggestCommand(ctx *commandContext) *cobra.Command {
	var length int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Show recommendations learned from past edits",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("length") {
				length = cfg.Voice.DefaultLength
			}
			store, err := ctx.openEditLog(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.Recommend(cmd.Context(), length)
			if err != nil {
				return err
			}
			return emit(cmd, asJSON, rec, func() error {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Sessions analysed: %d\n", rec.Sessions)
				fmt.Fprintf(out, "Suggested length:  %d words (for %d, mean ratio %.2f)\n", rec.SuggestedLength, length, rec.MeanRatio)
				if len(rec.CommonEdits) > 0 {
					fmt.Fprintln(out, "Common edits:")
					for _, c := range rec.CommonEdits {
						fmt.Fprintf(out, "  - %s\n", c)
					}
				}
				if len(rec.Notes) > 0 {
					fmt.Fprintln(out, "Style notes:")
					for _, note := range rec.Notes {
						fmt.Fprintf(out, "  - %s\n", note)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&length, "length", "n", 0, "Planned length in words (default voice.default_length)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newEditsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var examples bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent edit sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openEditLog(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			list := store.Recent
			empty := "No edit sessions recorded"
			if examples {
				list = store.Examples
				empty = "No significant edit sessions recorded"
			}
			sessions, err := list(cmd.Context(), limit)
			if err != nil {
				return err
			}
			payload := make([]editSessionJSON, 0, len(sessions))
			rows := make([][]string, 0, len(sessions))
			for _, s := range sessions {
				payload = append(payload, sessionJSON(s))
				rows = append(rows, []string{
					shortID(s.ID),
					s.CreatedAt.Local().Format("2006-01-02 15:04"),
					s.Topic,
					modeLabel(s.Mode),
					strconv.FormatFloat(s.Analysis.LengthRatio, 'f', 2, 64),
					strconv.FormatFloat(s.Analysis.Magnitude, 'f', 3, 64),
					editTypesLabel(s.Analysis.EditTypes),
				})
			}
			return emit(cmd, asJSON, payload, func() error {
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), empty)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(sessionColumns, rows))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum sessions to show")
	cmd.Flags().BoolVar(&examples, "examples", false, "Only sessions whose edits were significant")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

var sessionColumns = []column{
	{title: "ID"},
	{title: "Created"},
	{title: "Topic"},
	{title: "Mode"},
	{title: "Ratio", numeric: true},
	{title: "Magnitude", numeric: true},
	{title: "Edits"},
}

func modeLabel(mode string) string {
	if strings.TrimSpace(mode) == "" {
		return "-"
	}
	return textutil.TitleCase(mode)
}

func editTypesLabel(types []editlog.EditType) string {
	if len(types) == 0 {
		return "general_improvement"
	}
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
