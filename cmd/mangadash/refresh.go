package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/b23bb1023/Manhwa-agent/internal/scheduler"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Scrape every tracked series once and update the reading list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, services, _, err := setup(os.Stderr)
		if err != nil {
			return err
		}
		defer services.Close()

		p := mpb.New(
			mpb.WithWidth(52),
			mpb.WithOutput(cmd.OutOrStdout()),
			mpb.WithRefreshRate(120*time.Millisecond),
		)

		var bar *mpb.Bar
		var current atomic.Value
		current.Store("")
		services.Poller.OnProgress = func(progress scheduler.Progress) {
			if bar == nil {
				bar = p.New(
					int64(progress.Total),
					mpb.BarStyle().Rbound("]"),
					mpb.PrependDecorators(
						decor.Name("refresh  "),
					),
					mpb.AppendDecorators(
						decor.Percentage(decor.WCSyncWidth),
						decor.CountersNoUnit(" | %d/%d series", decor.WCSyncWidth),
						decor.Any(func(_ decor.Statistics) string {
							return " | " + current.Load().(string)
						}),
					),
				)
			}
			current.Store(progress.Record.DisplayTitle())
			bar.SetCurrent(int64(progress.Done))
		}

		summary, runErr := services.Poller.RunOnce(cmd.Context())
		if bar != nil {
			bar.SetTotal(-1, true)
		}
		p.Wait()
		if runErr != nil {
			return runErr
		}

		fmt.Fprintf(cmd.OutOrStdout(), "checked %d, updated %d, failed %d\n",
			summary.Checked, summary.Updated, summary.Failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
