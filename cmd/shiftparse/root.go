package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/shiftparse/internal/api"
	"github.com/jackzampolin/shiftparse/internal/config"
	"github.com/jackzampolin/shiftparse/internal/extract"
	"github.com/jackzampolin/shiftparse/internal/home"
	"github.com/jackzampolin/shiftparse/internal/prompts"
	"github.com/jackzampolin/shiftparse/internal/prompts/extraction"
	"github.com/jackzampolin/shiftparse/internal/providers"
	"github.com/jackzampolin/shiftparse/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "shiftparse",
	Short: "Extract shift schedules from PDF rosters",
	Long: `Shiftparse reads a PDF shift roster, sends it to a language-model
extraction service and returns the shifts it finds as structured records.

It can:
  - Extract one employee's shifts, or every shift in the document
  - Check dates and recompute weekdays locally
  - Export the result as an XLSX workbook
  - Serve the same pipeline over HTTP`,
	Version:      version.GitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.shiftparse/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "shiftparse home directory (default: ~/.shiftparse)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml, json or table",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}

// loadConfig opens the home directory and loads configuration from the
// --config file, the working directory or the home directory.
func loadConfig() (*config.Manager, *home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, nil, err
	}
	mgr, err := config.NewManager(cfgFile, h.Path())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return mgr, h, nil
}

// newLogger writes text logs to stderr so stdout stays parseable.
func newLogger(c *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: c.LogLevel(),
	}))
}

// newResolver registers the extraction prompts and applies configured overrides.
func newResolver(c *config.Config, logger *slog.Logger) *prompts.Resolver {
	resolver := prompts.NewResolver(logger)
	extraction.RegisterPrompts(resolver)
	resolver.SetOverrides(c.Prompts.Overrides)
	return resolver
}

// newPipeline builds the extraction pipeline described by c.
func newPipeline(c *config.Config, resolver *prompts.Resolver, logger *slog.Logger) (*extract.Pipeline, error) {
	client, err := providers.New(c.ToProviderConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", c.Service.Type, err)
	}
	pcfg := c.ToPipelineConfig(client, logger)
	pcfg.Resolver = resolver
	return extract.NewPipeline(pcfg)
}
