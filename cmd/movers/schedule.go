package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ternarybob/movers/internal/app"
	"github.com/ternarybob/movers/internal/fetcher"
	"github.com/ternarybob/movers/internal/metrics"
	"github.com/ternarybob/movers/internal/pipeline"
	"github.com/ternarybob/movers/internal/report"
	"github.com/ternarybob/movers/internal/scheduler"
)

var scheduleCron string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run scans for today's date on a cron schedule",
	Long: `Runs until interrupted, starting a scan for the current date whenever the
six-field cron expression (seconds first) fires. A trigger is skipped while
the previous scan is still running.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		schedule := config.Schedule.Cron
		if scheduleCron != "" {
			schedule = scheduleCron
		}
		if schedule == "" {
			return fmt.Errorf("no schedule configured: set schedule.cron or --cron")
		}

		var recorder *metrics.Recorder
		observer := fetcher.Observer(report.NewProgressLogger(logger))
		if config.Metrics.Enabled {
			recorder = metrics.NewRecorder(config.Metrics.Namespace)
			observer = fetcher.Observers(observer, recorder)
		}

		scanner, err := app.New(config, logger, app.Options{Observer: observer})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var serveErr chan error
		if recorder != nil {
			serveErr = make(chan error, 1)
			go func() {
				serveErr <- metrics.Serve(ctx, config.Metrics.Address, config.Metrics.Path, recorder.Handler(), logger)
			}()
		}

		out := cmd.OutOrStdout()
		s := scheduler.New(scanner.Pipeline, config.ScheduleCount(), logger,
			scheduler.WithResultHandler(func(result *pipeline.Result, err error) {
				if recorder != nil {
					recorder.ObserveRun(result, err, time.Now())
				}
				if result != nil && (err == nil || result.Interrupted) {
					if werr := report.WriteResult(out, result); werr != nil {
						logger.Warn().Err(werr).Msg("Failed to write scan result")
					}
				}
			}),
		)
		if err := s.Start(ctx, schedule); err != nil {
			return err
		}

		logger.Info().Str("next", s.Next().Format("2006-01-02 15:04:05")).Msg("Waiting for next trigger")
		select {
		case <-ctx.Done():
		case err := <-serveErr:
			serveErr = nil
			if err != nil {
				s.Stop()
				return err
			}
			<-ctx.Done()
		}
		s.Stop()
		if serveErr != nil {
			return <-serveErr
		}
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "Cron expression with seconds (overrides config)")
	rootCmd.AddCommand(scheduleCmd)
}
