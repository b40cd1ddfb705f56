package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/faqdesk/internal/exchange"
	"github.com/dgallion1/faqdesk/internal/workspace"
)

var (
	csvOutFile string
	csvStore   bool
)

var csvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Export and import the flat CSV form",
}

var csvExportCmd = &cobra.Command{
	Use:   "export <lang>",
	Short: "Write a language as CSV",
	Long:  `Write a language as CSV to stdout, to a file with -o, or into the store's export directory with --store.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang := args[0]
		if csvStore {
			p, err := ws.ExportCSV(cmd.Context(), lang)
			if err != nil {
				return err
			}
			fmt.Println(p)
			return nil
		}

		l, err := ws.Load(cmd.Context(), lang)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := exchange.WriteCSV(&buf, l.Doc); err != nil {
			return err
		}
		if csvOutFile == "" {
			_, err = os.Stdout.Write(buf.Bytes())
			return err
		}
		if err := os.WriteFile(csvOutFile, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", csvOutFile, err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", csvOutFile)
		return nil
	},
}

var csvImportCmd = &cobra.Command{
	Use:   "import <lang> [file]",
	Short: "Replace a language's categories with a CSV file",
	Long:  `Replace a language's categories with a CSV file ("-" reads stdin). Without a file the newest stored export is restored.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang := args[0]
		var (
			l   *workspace.Loaded
			err error
		)
		if len(args) == 1 {
			l, err = ws.ImportLatestCSV(cmd.Context(), lang)
		} else {
			var data []byte
			data, err = readInput(args[1])
			if err != nil {
				return err
			}
			l, err = ws.ImportCSV(cmd.Context(), lang, data)
		}
		if err != nil {
			return err
		}
		st := l.Doc.Stats()
		fmt.Printf("%s: %d categories, %d questions, version %s\n", lang, st.Categories, st.Questions, l.Version)
		return nil
	},
}

func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

func init() {
	csvExportCmd.Flags().StringVarP(&csvOutFile, "out", "o", "", "output file (default stdout)")
	csvExportCmd.Flags().BoolVar(&csvStore, "store", false, "save into the store's export directory")
	csvCmd.AddCommand(csvExportCmd, csvImportCmd)
	rootCmd.AddCommand(csvCmd)
}
