package main

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read [id]",
	Short: "Mark a series as read up to its latest chapter",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, services, _, err := setup(os.Stderr)
		if err != nil {
			return err
		}
		defer services.Close()

		var id string

		if len(args) == 1 {
			id = args[0]
		} else {
			cards := services.Controller.Refresh(cmd.Context())
			if len(cards) == 0 {
				return fmt.Errorf("reading list is empty")
			}

			items := make([]string, 0, len(cards))
			for _, card := range cards {
				items = append(items, fmt.Sprintf("%s  (%s)", card.Title, card.Presentation.StatusText))
			}

			prompt := promptui.Select{
				Label: "Select series",
				Items: items,
			}

			idx, _, err := prompt.Run()
			if err != nil {
				return fmt.Errorf("selection cancelled")
			}

			id = cards[idx].Record.ID
		}

		found, err := services.Controller.MarkAsRead(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("series %q not found", id)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Marked as read:", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
}
