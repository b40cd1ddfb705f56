package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/faqdesk/internal/exchange"
	"github.com/dgallion1/faqdesk/internal/pipeline"
)

var importMode string

var importCmd = &cobra.Command{
	Use:   "import <lang> <file>",
	Short: "Import a Markdown, HTML, DOCX, PDF, text or CSV file into a language",
	Long:  `Parse a file into categories and questions and write them into a language. Append mode keeps existing nodes and skips IDs that already exist; replace mode swaps out every category.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, file := args[0], args[1]
		if !ws.Configured(lang) {
			return fmt.Errorf("unknown language %q", lang)
		}
		mode, err := pipeline.ParseMode(importMode)
		if err != nil {
			return err
		}
		if !exchange.IsSupportedExtension(file) {
			return fmt.Errorf("unsupported file type: %s", filepath.Ext(file))
		}
		data, err := readInput(file)
		if err != nil {
			return err
		}

		job := pipeline.NewJob(lang, filepath.Base(file), mode, data)
		pipeline.NewWorker(ws, log, cfg.MaxRetries, cfg.PDFFallbackPdftotext).Process(cmd.Context(), job)

		snap := job.Snapshot()
		if jsonOutput() {
			if err := printJSON(snap); err != nil {
				return err
			}
		} else {
			printTable([]string{"Job", "Status", "Categories", "Questions", "Skipped"}, [][]string{{
				snap.ID,
				string(snap.Status),
				fmt.Sprint(snap.Progress.CategoriesImported),
				fmt.Sprint(snap.Progress.QuestionsImported),
				fmt.Sprint(snap.Progress.Skipped),
			}})
		}
		if snap.Status != pipeline.StatusCompleted {
			return fmt.Errorf("import failed in %s: %v", snap.Phase, snap.Progress.Errors)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importMode, "mode", string(pipeline.ModeAppend), "import mode (append, replace)")
	rootCmd.AddCommand(importCmd)
}
