package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Scrape one series page and print the result envelope",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, services, _, err := setup(os.Stderr)
		if err != nil {
			return err
		}
		defer services.Close()

		result := services.Scraper.Scrape(cmd.Context(), args[0])

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
