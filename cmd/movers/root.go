package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/movers/internal/common"
)

var (
	configFiles []string
	logLevel    string
	provider    string

	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:   "movers",
	Short: "Most active stocks across NASDAQ, NYSE, ASX and HKSE",
	Long: `Scans every active common stock on NASDAQ, NYSE, ASX and HKSE for a trading
date, scores each by volume, price movement and intraday volatility, and
prints the most active ones. Requests are paced to the Alpha Vantage free tier.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&configFiles, "config", "c", nil, "Configuration file path (repeatable, later files override earlier ones)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides config)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "Quote provider: alphavantage or yahoo (overrides config)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig runs before every command:
// defaults -> config files -> env -> flags, then logger and banner.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	if len(configFiles) == 0 {
		if _, err := os.Stat("movers.toml"); err == nil {
			configFiles = append(configFiles, "movers.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	count := 0
	if f := cmd.Flags().Lookup("count"); f != nil && f.Changed {
		count, _ = cmd.Flags().GetInt("count")
	}
	common.ApplyFlagOverrides(config, common.FlagOverrides{
		Count:    count,
		Provider: provider,
		LogLevel: logLevel,
	})

	if err := config.Validate(); err != nil {
		return err
	}

	logger = common.SetupLogger(config)
	common.PrintBanner(config, logger)

	logger.Debug().Strs("config_files", configFiles).Msg("Configuration loaded")
	return nil
}
