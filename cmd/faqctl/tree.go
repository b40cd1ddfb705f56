package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/faqdesk/internal/merge"
)

var treeCmd = &cobra.Command{
	Use:   "tree <lang>",
	Short: "Print the category tree of one language",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := ws.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(l.Doc)
		}

		var rows [][]string
		for _, c := range l.Doc.Categories {
			rows = append(rows, []string{"category", c.ID, c.Title})
			for _, s := range c.Subcategories {
				rows = append(rows, []string{"subcategory", s.ID, "  " + s.Title})
				for _, q := range s.Questions {
					rows = append(rows, []string{"question", q.ID, "    " + q.Title})
				}
			}
		}
		printTable([]string{"Level", "ID", "Title"}, rows)
		st := l.Doc.Stats()
		fmt.Printf("%s  %s  version %s  %d categories, %d subcategories, %d questions\n",
			l.Lang, l.VarName, l.Version, st.Categories, st.Subcategories, st.Questions)
		return nil
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge every stored language into one multilingual tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := ws.Merged(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(m)
		}

		headers := append([]string{"ID"}, m.Languages...)
		var rows [][]string
		add := func(id, indent string, title merge.LangText) {
			row := []string{indent + id}
			for _, lang := range m.Languages {
				row = append(row, title.Get(lang))
			}
			rows = append(rows, row)
		}
		for _, c := range m.Categories {
			add(c.ID, "", c.Title)
			for _, s := range c.Subcategories {
				add(s.ID, "  ", s.Title)
				for _, q := range s.Questions {
					add(q.ID, "    ", q.Title)
				}
			}
		}
		printTable(headers, rows)
		fmt.Printf("base language %s\n", m.BaseLanguage)
		return nil
	},
}

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "List nodes missing from some language",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gaps, err := ws.Coverage(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput() {
			if gaps == nil {
				gaps = []merge.Gap{}
			}
			return printJSON(gaps)
		}
		if len(gaps) == 0 {
			fmt.Println("every node exists in every stored language")
			return nil
		}
		rows := make([][]string, 0, len(gaps))
		for _, g := range gaps {
			rows = append(rows, []string{
				string(g.Level), g.ID, g.CategoryID, g.SubID,
				strings.Join(g.Missing, ", "), strings.Join(g.Present, ", "),
			})
		}
		printTable([]string{"Level", "ID", "Category", "Subcategory", "Missing", "Present"}, rows)
		fmt.Printf("%d gaps\n", len(gaps))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd, mergeCmd, coverageCmd)
}
