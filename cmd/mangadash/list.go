package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var flagListJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the reading list in dashboard order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, services, _, err := setup(os.Stderr)
		if err != nil {
			return err
		}
		defer services.Close()

		cards := services.Controller.Refresh(cmd.Context())
		out := cmd.OutOrStdout()

		if flagListJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(cards)
		}

		if len(cards) == 0 {
			fmt.Fprintln(out, "No Data")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tREAD\tLATEST\tSTATUS")
		for _, card := range cards {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				card.Record.ID,
				card.Title,
				card.Record.LastRead,
				card.Record.LatestAvailable,
				card.Presentation.StatusText,
			)
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().BoolVar(&flagListJSON, "json", false, "print cards as JSON")
	rootCmd.AddCommand(listCmd)
}
