// Command faqctl inspects and maintains an FAQ dataset from the shell.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/dgallion1/faqdesk/internal/config"
	"github.com/dgallion1/faqdesk/internal/storage"
	"github.com/dgallion1/faqdesk/internal/workspace"
)

var (
	cfg config.Config
	log *slog.Logger
	ws  *workspace.Workspace

	outputFormat string
	verbose      bool
	backendFlag  string
	rootFlag     string
)

var rootCmd = &cobra.Command{
	Use:           "faqctl",
	Short:         "Inspect and maintain multilingual FAQ data",
	Long:          `faqctl reads and writes the per-language FAQ documents in the configured store: it prints trees, merges languages, reports missing translations, moves data through CSV and imports files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if backendFlag != "" {
			cfg.StorageBackend = backendFlag
		}
		if rootFlag != "" {
			cfg.StorageRoot = rootFlag
		}

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		// stdout belongs to command output (and to the MCP stdio transport).
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		store, err := storage.Open(cmd.Context(), cfg, log)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		ws = workspace.New(store, workspace.OptionsFromConfig(cfg), log)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "output format (table, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "storage backend, overrides STORAGE_BACKEND")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "local storage root, overrides STORAGE_ROOT")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func printTable(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Println(t)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func jsonOutput() bool { return outputFormat == "json" }
