package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediabuddy/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var skipLLM bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the corpus, directories, edit log and generation backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var opts []preflight.Option
			if skipLLM {
				opts = append(opts, preflight.WithoutLLM())
			}
			results := preflight.RunAll(cmd.Context(), cfg, opts...)
			failed := preflight.Failed(results)

			err = emit(cmd, asJSON, results, func() error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("mediabuddy status", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, line := range checkLines(results, colorize) {
					fmt.Fprintln(out, line)
				}
				return nil
			})
			if err != nil {
				return err
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipLLM, "skip-llm", false, "Skip the generation backend check")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
