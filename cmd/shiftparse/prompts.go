package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/shiftparse/internal/api"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect extraction prompts",
}

var promptsShowCmd = &cobra.Command{
	Use:   "show [key]",
	Short: "Show the prompts with configured overrides applied",
	Long: `Show the prompt templates used for extraction.

Without a key every prompt is listed. Overrides come from prompts.overrides
in the config file.

Examples:
  shiftparse prompts show
  shiftparse prompts show extraction.system`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := loadConfig()
		if err != nil {
			return err
		}
		c := mgr.Get()
		resolver := newResolver(c, newLogger(c))

		if len(args) == 1 {
			p, err := resolver.Resolve(args[0])
			if err != nil {
				return err
			}
			return api.Output(p)
		}
		return api.Output(resolver.All())
	},
}

func init() {
	promptsCmd.AddCommand(promptsShowCmd)
	rootCmd.AddCommand(promptsCmd)
}
