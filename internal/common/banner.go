package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the effective settings.
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("Movers", GetVersion())

	logger.Debug().
		Str("provider", config.Quotes.Provider).
		Dur("pacing_interval", config.Pacing.Interval.Std()).
		Int("max_retries", config.Retry.MaxRetries).
		Dur("retry_cooldown", config.Retry.Cooldown.Std()).
		Strs("exchanges", config.Fetch.Exchanges).
		Int("count", config.Ranking.Count).
		Str("log_level", config.Logging.Level).
		Msg("Configuration resolved")
}
