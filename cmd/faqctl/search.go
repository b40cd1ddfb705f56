package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/faqdesk/internal/search"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search question titles and content in every language",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := ws.Merged(cmd.Context())
		if err != nil {
			return err
		}
		results := search.NewIndex(search.Flatten(m)).Search(args[0], searchLimit)
		if jsonOutput() {
			return printJSON(results)
		}
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{r.ID, r.Title, r.Field, fmt.Sprint(r.Distance)})
		}
		printTable([]string{"ID", "Title", "Match", "Distance"}, rows)
		fmt.Printf("%d results\n", len(results))
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", search.DefaultLimit, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
