package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ternarybob/movers/internal/app"
	"github.com/ternarybob/movers/internal/report"
)

var listingCmd = &cobra.Command{
	Use:   "listing",
	Short: "Print the number of active stocks per exchange",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		scanner, err := app.New(config, logger, app.Options{})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		universe, err := scanner.Pipeline.Listing(ctx)
		if err != nil {
			return err
		}
		return report.WriteListing(cmd.OutOrStdout(), universe.OrderedCounts())
	},
}

func init() {
	rootCmd.AddCommand(listingCmd)
}
