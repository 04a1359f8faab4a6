package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/movers/internal/models"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultConfig_IsValid(t *testing.T) {
	config := NewDefaultConfig()
	require.NoError(t, config.Validate())

	assert.Equal(t, 12*time.Second, config.Pacing.Interval.Std())
	assert.Equal(t, 10, config.Ranking.Count)
	assert.Equal(t, models.DefaultExchanges(), config.Exchanges())

	policy := config.RetryPolicy()
	assert.Equal(t, 5, policy.MaxRetries)
	assert.Equal(t, 60*time.Second, policy.InitialCooldown)
	assert.Equal(t, 1.0, policy.Multiplier)
}

func TestLoadFromFiles_LaterFilesOverride(t *testing.T) {
	base := writeConfig(t, "base.toml", `
[pacing]
interval = "15s"

[retry]
max_retries = 0
cooldown = "90s"

[ranking]
count = 25

[ranking.weights]
volume = 2.0
price_move = 8.0
volatility = 4.0
`)
	override := writeConfig(t, "override.toml", `
[ranking]
count = 5

[fetch]
exchanges = ["NYSE"]
`)

	config, err := LoadFromFiles(base, override)
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, 15*time.Second, config.Pacing.Interval.Std())
	assert.Equal(t, 90*time.Second, config.Retry.Cooldown.Std())
	assert.True(t, config.RetryPolicy().Unbounded())
	assert.Equal(t, 5, config.Ranking.Count)
	assert.Equal(t, 2.0, config.Ranking.Weights.Volume)
	assert.Equal(t, []models.Exchange{models.ExchangeNYSE}, config.Exchanges())
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadFromFiles_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "bad.toml", "[pacing]\ninterval = \"soon\"\n")
	_, err := LoadFromFiles(path)
	assert.Error(t, err)
}

func TestLoadFromFiles_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "movers.toml", "[alphavantage]\napi_key = \"from-file\"\n[ranking]\ncount = 7\n")
	t.Setenv("ALPHAVANTAGE_API_KEY", "from-env")
	t.Setenv("MOVERS_RANKING_COUNT", "3")
	t.Setenv("MOVERS_PACING_INTERVAL", "20s")
	t.Setenv("MOVERS_FETCH_EXCHANGES", "nasdaq, hkse")

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", config.AlphaVantage.APIKey)
	assert.Equal(t, 3, config.Ranking.Count)
	assert.Equal(t, 20*time.Second, config.Pacing.Interval.Std())
	assert.Equal(t, []string{"NASDAQ", "HKSE"}, config.Fetch.Exchanges)
}

func TestLoadFromFiles_PrefixedKeyWins(t *testing.T) {
	t.Setenv("ALPHAVANTAGE_API_KEY", "plain")
	t.Setenv("MOVERS_ALPHAVANTAGE_API_KEY", "prefixed")

	config, err := LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, "prefixed", config.AlphaVantage.APIKey)
}

func TestLoadFromFiles_BadEnvInteger(t *testing.T) {
	t.Setenv("MOVERS_RANKING_COUNT", "ten")
	_, err := LoadFromFiles()
	assert.ErrorContains(t, err, "MOVERS_RANKING_COUNT")
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()
	ApplyFlagOverrides(config, FlagOverrides{Count: 4, Provider: "Yahoo", LogLevel: "DEBUG"})

	assert.Equal(t, 4, config.Ranking.Count)
	assert.Equal(t, ProviderYahoo, config.Quotes.Provider)
	assert.Equal(t, "debug", config.Logging.Level)

	ApplyFlagOverrides(config, FlagOverrides{})
	assert.Equal(t, 4, config.Ranking.Count)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero count", func(c *Config) { c.Ranking.Count = 0 }},
		{"unknown provider", func(c *Config) { c.Quotes.Provider = "bloomberg" }},
		{"unknown exchange", func(c *Config) { c.Fetch.Exchanges = []string{"LSE"} }},
		{"no exchanges", func(c *Config) { c.Fetch.Exchanges = nil }},
		{"zero interval", func(c *Config) { c.Pacing.Interval = 0 }},
		{"negative retries", func(c *Config) { c.Retry.MaxRetries = -1 }},
		{"shrinking backoff", func(c *Config) { c.Retry.Multiplier = 0.5 }},
		{"negative weight", func(c *Config) { c.Ranking.Weights.Volatility = -1 }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad cron", func(c *Config) { c.Schedule.Cron = "every day" }},
		{"metrics without address", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Address = ""
		}},
		{"relative metrics path", func(c *Config) { c.Metrics.Path = "metrics" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestRequireAPIKey(t *testing.T) {
	config := NewDefaultConfig()
	assert.Error(t, config.RequireAPIKey())

	config.AlphaVantage.APIKey = "demo"
	assert.NoError(t, config.RequireAPIKey())
}

func TestScheduleCount(t *testing.T) {
	config := NewDefaultConfig()
	assert.Equal(t, 10, config.ScheduleCount())

	config.Schedule.Count = 3
	assert.Equal(t, 3, config.ScheduleCount())
}

func TestLoadFromFiles_MetricsEnv(t *testing.T) {
	t.Setenv("MOVERS_METRICS_ENABLED", "true")
	t.Setenv("MOVERS_METRICS_ADDRESS", "127.0.0.1:9100")

	config, err := LoadFromFiles()
	require.NoError(t, err)
	assert.True(t, config.Metrics.Enabled)
	assert.Equal(t, "127.0.0.1:9100", config.Metrics.Address)
	assert.Equal(t, "/metrics", config.Metrics.Path)
	require.NoError(t, config.Validate())

	t.Setenv("MOVERS_METRICS_ENABLED", "sometimes")
	_, err = LoadFromFiles()
	assert.ErrorContains(t, err, "MOVERS_METRICS_ENABLED")
}
