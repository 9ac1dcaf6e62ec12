package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mediabuddy/internal/config"
)

var skipConfigLoad = map[string]string{"skipConfigLoad": "true"}

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the configuration file",
	}
	configCmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Annotations: skipConfigLoad,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				_, err := os.Stat(target)
				switch {
				case err == nil:
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				case !errors.Is(err, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", err)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Next: set generation.api_key (or MEDIABUDDY_API_KEY) and add writing samples with 'mediabuddy corpus add'.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func initTarget(flagValue string) (string, error) {
	if p := strings.TrimSpace(flagValue); p != "" {
		return config.ExpandPath(p)
	}
	p, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("determine default config path: %w", err)
	}
	return p, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load and validate the configuration",
		Annotations: skipConfigLoad,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(*ctx.configFlag))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			for _, row := range [][2]string{
				{"Corpus", cfg.Paths.CorpusDir},
				{"Output", cfg.Paths.OutputDir},
				{"Provider", fmt.Sprintf("%s (%s)", cfg.Generation.Provider, cfg.Generation.Model)},
			} {
				fmt.Fprintf(out, "%-12s %s\n", row[0]+":", row[1])
			}
			if cfg.RequireGeneration() != nil {
				fmt.Fprintln(out, renderStatusLine("API key", statusWarn, "not set; voice generation will fail", false))
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
