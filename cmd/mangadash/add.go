package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/b23bb1023/Manhwa-agent/internal/models"
	"github.com/b23bb1023/Manhwa-agent/internal/readinglist"
	"github.com/b23bb1023/Manhwa-agent/internal/reconcile"
)

var (
	flagAddTitle  string
	flagAddScrape bool
)

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a series to the reading list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seriesURL := strings.TrimSpace(args[0])
		if err := validator.New().Var(seriesURL, "required,http_url"); err != nil {
			return fmt.Errorf("invalid url %q", seriesURL)
		}

		_, services, _, err := setup(os.Stderr)
		if err != nil {
			return err
		}
		defer services.Close()

		record := models.SeriesRecord{
			ID:    readinglist.NewRecordID(),
			Title: strings.TrimSpace(flagAddTitle),
			URL:   seriesURL,
		}

		if flagAddScrape {
			result := services.Scraper.Scrape(cmd.Context(), seriesURL)
			if result.OK() {
				record, _ = reconcile.ApplyScrape(record, result)
				// A freshly added series starts caught up.
				record.LastRead = record.LatestAvailable
			} else {
				fmt.Fprintln(cmd.ErrOrStderr(), "scrape failed:", result.Message)
			}
		}

		err = services.Store.Update(cmd.Context(), func(records []models.SeriesRecord) ([]models.SeriesRecord, error) {
			for _, existing := range records {
				if existing.URL == seriesURL {
					return nil, fmt.Errorf("series already tracked as %s", existing.ID)
				}
			}
			return append(records, record), nil
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Added:", record.ID)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&flagAddTitle, "title", "", "series title")
	addCmd.Flags().BoolVar(&flagAddScrape, "scrape", false, "fetch the latest chapter and thumbnail now")
	rootCmd.AddCommand(addCmd)
}
