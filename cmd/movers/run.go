package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ternarybob/movers/internal/activity"
	"github.com/ternarybob/movers/internal/app"
	"github.com/ternarybob/movers/internal/common"
	"github.com/ternarybob/movers/internal/models"
	"github.com/ternarybob/movers/internal/pipeline"
	"github.com/ternarybob/movers/internal/report"
)

var (
	runDate   string
	runCount  int
	runYes    bool
	runFormat string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Rank the most active stocks for a trading date",
	Long: `Fetches the instrument listing, retrieves the daily bar of every active stock
for the date (or the most recent trading day before it), and prints the top
stocks by activity score. Without --date the date and count are prompted for.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	runCmd.Flags().StringVarP(&runDate, "date", "d", "", "Target date (YYYY-MM-DD or 'today')")
	runCmd.Flags().IntVarP(&runCount, "count", "n", 0, "Number of stocks to display (default from config)")
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "Skip the confirmation prompt")
	runCmd.Flags().StringVar(&runFormat, "format", "table", "Output format: table or json")
	rootCmd.AddCommand(runCmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	if runFormat != "table" && runFormat != "json" {
		return fmt.Errorf("unknown format %q", runFormat)
	}
	if cmd.Flags().Changed("count") && runCount <= 0 {
		return activity.ErrInvalidCount
	}

	prompter := report.NewPrompter(os.Stdin, cmd.OutOrStdout())
	req := pipeline.Request{Count: config.Ranking.Count}

	if runDate != "" {
		date, err := models.ParseTargetDate(runDate, time.Now())
		if err != nil {
			return err
		}
		req.Date = date
	} else {
		date, err := prompter.Date(time.Now())
		if err != nil {
			return err
		}
		req.Date = date
		if !cmd.Flags().Changed("count") {
			if req.Count, err = prompter.Count(config.Ranking.Count); err != nil {
				return err
			}
		}
	}

	opts := app.Options{Observer: report.NewProgressLogger(logger)}
	if !runYes {
		opts.Confirm = prompter.Confirm()
	}

	scanner, err := app.New(config, logger, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer common.RecoverWithCrashReport(common.LogDir(config))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\nFETCHING MOST ACTIVE STOCKS FOR %s\n%s\n",
		rule, req.Date, rule)

	result, err := scanner.Pipeline.Run(ctx, req)
	switch {
	case errors.Is(err, pipeline.ErrCancelledByOperator):
		fmt.Fprintln(out, "Operation cancelled.")
		return nil
	case errors.Is(err, pipeline.ErrListingUnavailable):
		return fmt.Errorf("could not fetch stock listings: %w", err)
	case err != nil && (result == nil || !result.Interrupted):
		return err
	}

	if runFormat == "json" {
		if werr := report.WriteJSON(out, result); werr != nil {
			return werr
		}
	} else {
		if len(result.Stocks) == 0 && !result.Interrupted {
			fmt.Fprintln(out, "No stock data retrieved.")
			return nil
		}
		if werr := report.WriteResult(out, result); werr != nil {
			return werr
		}
		fmt.Fprintf(out, "\nAnalysis completed at: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	}

	// Interrupted runs still print their partial ranking, then exit non-zero.
	return err
}

const rule = "================================================================================"
