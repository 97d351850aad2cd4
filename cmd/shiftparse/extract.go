package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/shiftparse/internal/api"
	"github.com/jackzampolin/shiftparse/internal/export"
	"github.com/jackzampolin/shiftparse/internal/extract"
)

var (
	extractEmployee string
	extractLanguage string
	extractXLSX     string
	extractSave     bool
	extractNoCheck  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf>",
	Short: "Extract a shift schedule from a PDF roster",
	Long: `Extract a shift schedule from a PDF roster.

The document is sent to the configured extraction service; the result is
checked locally (real calendar dates, weekdays recomputed from the date,
24-hour times) and printed in the selected output format.

Examples:
  shiftparse extract plan.pdf                        # Every shift in the document
  shiftparse extract plan.pdf -e "Max Mustermann"    # One employee
  shiftparse extract plan.pdf --language de -o json  # German weekday names, JSON output
  shiftparse extract plan.pdf --xlsx march.xlsx      # Also write a spreadsheet
  shiftparse extract plan.pdf --save                 # Spreadsheet into ~/.shiftparse/exports`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, h, err := loadConfig()
		if err != nil {
			return err
		}
		c := *mgr.Get()
		if extractLanguage != "" {
			c.Extraction.Language = extractLanguage
		}
		if extractNoCheck {
			c.Extraction.Validate = false
		}

		logger := newLogger(&c)
		pipeline, err := newPipeline(&c, newResolver(&c, logger), logger)
		if err != nil {
			return err
		}

		sched, err := pipeline.ExtractFile(ctx, args[0], extractEmployee)
		if err != nil {
			if errors.Is(err, extract.ErrNoMatch) {
				fmt.Fprintln(cmd.ErrOrStderr(), extract.UserMessage(err))
				return nil
			}
			logger.Debug("extraction failed", "error", err)
			return errors.New(extract.UserMessage(err))
		}

		if err := api.Output(sched); err != nil {
			return err
		}

		exporter := export.NewService(logger)
		if extractXLSX != "" {
			if err := exporter.WriteFile(sched, extractXLSX); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", extractXLSX)
		}
		if extractSave {
			if err := h.EnsureExists(); err != nil {
				return err
			}
			path := h.ExportPath(args[0], time.Now())
			if err := exporter.WriteFile(sched, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractEmployee, "employee", "e", "", "Only extract shifts for this employee")
	extractCmd.Flags().StringVar(&extractLanguage, "language", "", "Weekday language (BCP 47, e.g. en, de)")
	extractCmd.Flags().StringVar(&extractXLSX, "xlsx", "", "Also write the schedule to this XLSX file")
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "Also write the schedule to the home exports directory")
	extractCmd.Flags().BoolVar(&extractNoCheck, "no-validate", false, "Skip the local date and time checks")

	rootCmd.AddCommand(extractCmd)
}
