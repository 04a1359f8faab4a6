package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"

	"github.com/ternarybob/movers/internal/activity"
	"github.com/ternarybob/movers/internal/models"
	"github.com/ternarybob/movers/internal/retry"
)

// Quote providers
const (
	ProviderAlphaVantage = "alphavantage"
	ProviderYahoo        = "yahoo"
)

// Config represents the application configuration
type Config struct {
	AlphaVantage AlphaVantageConfig `toml:"alphavantage"`
	Quotes       QuotesConfig       `toml:"quotes"`
	Pacing       PacingConfig       `toml:"pacing"`
	Retry        RetryConfig        `toml:"retry"`
	Fetch        FetchConfig        `toml:"fetch"`
	Ranking      RankingConfig      `toml:"ranking"`
	Logging      LoggingConfig      `toml:"logging"`
	Schedule     ScheduleConfig     `toml:"schedule"`
	Metrics      MetricsConfig      `toml:"metrics"`
}

type AlphaVantageConfig struct {
	APIKey  string   `toml:"api_key"`
	BaseURL string   `toml:"base_url" validate:"required,url"`
	Timeout Duration `toml:"timeout" validate:"gt=0"`
}

// QuotesConfig selects the daily series provider
type QuotesConfig struct {
	Provider string   `toml:"provider" validate:"oneof=alphavantage yahoo"`
	Lookback Duration `toml:"lookback" validate:"gte=0"` // yahoo only
}

// PacingConfig is the minimum spacing between quote requests (free tier: 5 per minute)
type PacingConfig struct {
	Interval Duration `toml:"interval" validate:"gt=0"`
}

// RetryConfig controls cooldowns after a rate-limit notice. MaxRetries 0 retries forever.
type RetryConfig struct {
	MaxRetries  int      `toml:"max_retries" validate:"gte=0"`
	Cooldown    Duration `toml:"cooldown" validate:"gt=0"`
	MaxCooldown Duration `toml:"max_cooldown" validate:"gte=0"`
	Multiplier  float64  `toml:"multiplier" validate:"gte=1"`
}

type FetchConfig struct {
	BatchSize int      `toml:"batch_size" validate:"gt=0"`
	Exchanges []string `toml:"exchanges" validate:"min=1,dive,oneof=NASDAQ NYSE ASX HKSE"`
}

type RankingConfig struct {
	Count   int              `toml:"count" validate:"gt=0"`
	Weights activity.Weights `toml:"weights"`
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=debug info warn error"`
	Output     []string `toml:"output" validate:"dive,oneof=stdout console file"`
	Dir        string   `toml:"dir"`         // Log directory, default: logs next to the executable
	TimeFormat string   `toml:"time_format"` // default: "15:04:05"
}

// ScheduleConfig drives `movers schedule`. Cron uses six fields (seconds first).
type ScheduleConfig struct {
	Cron  string `toml:"cron"`
	Count int    `toml:"count" validate:"gte=0"` // 0 uses ranking.count
}

// MetricsConfig exposes Prometheus metrics while `movers schedule` runs.
type MetricsConfig struct {
	Enabled   bool   `toml:"enabled"`
	Address   string `toml:"address" validate:"required_if=Enabled true"`
	Path      string `toml:"path" validate:"omitempty,startswith=/"`
	Namespace string `toml:"namespace"`
}

// Duration is a time.Duration read from TOML strings such as "12s" or "1m30s".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		AlphaVantage: AlphaVantageConfig{
			BaseURL: "https://www.alphavantage.co/query",
			Timeout: Duration(30 * time.Second),
		},
		Quotes: QuotesConfig{
			Provider: ProviderAlphaVantage,
			Lookback: Duration(150 * 24 * time.Hour),
		},
		Pacing: PacingConfig{
			Interval: Duration(12 * time.Second),
		},
		Retry: RetryConfig{
			MaxRetries:  retry.DefaultMaxRetries,
			Cooldown:    Duration(retry.DefaultCooldown),
			MaxCooldown: Duration(retry.DefaultMaxCooldown),
			Multiplier:  retry.DefaultMultiplier,
		},
		Fetch: FetchConfig{
			BatchSize: 100,
			Exchanges: []string{"NASDAQ", "NYSE", "ASX", "HKSE"},
		},
		Ranking: RankingConfig{
			Count:   10,
			Weights: activity.DefaultWeights(),
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Schedule: ScheduleConfig{
			Cron: "0 30 18 * * 1-5",
		},
		Metrics: MetricsConfig{
			Address:   ":9464",
			Path:      "/metrics",
			Namespace: "movers",
		},
	}
}

// LoadFromFiles loads configuration with priority: default -> file1 -> file2 -> ... -> env.
// Later files override earlier files. CLI flags are applied afterwards with ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) error {
	// API key: MOVERS_ALPHAVANTAGE_API_KEY wins over the provider's conventional name
	if key := os.Getenv("MOVERS_ALPHAVANTAGE_API_KEY"); key != "" {
		config.AlphaVantage.APIKey = key
	} else if key := os.Getenv("ALPHAVANTAGE_API_KEY"); key != "" {
		config.AlphaVantage.APIKey = key
	}
	if baseURL := os.Getenv("MOVERS_ALPHAVANTAGE_BASE_URL"); baseURL != "" {
		config.AlphaVantage.BaseURL = baseURL
	}

	if provider := os.Getenv("MOVERS_QUOTES_PROVIDER"); provider != "" {
		config.Quotes.Provider = strings.ToLower(provider)
	}

	durations := []struct {
		env string
		dst *Duration
	}{
		{"MOVERS_ALPHAVANTAGE_TIMEOUT", &config.AlphaVantage.Timeout},
		{"MOVERS_PACING_INTERVAL", &config.Pacing.Interval},
		{"MOVERS_RETRY_COOLDOWN", &config.Retry.Cooldown},
		{"MOVERS_RETRY_MAX_COOLDOWN", &config.Retry.MaxCooldown},
	}
	for _, d := range durations {
		if v := os.Getenv(d.env); v != "" {
			if err := d.dst.UnmarshalText([]byte(v)); err != nil {
				return fmt.Errorf("%s: %w", d.env, err)
			}
		}
	}

	ints := []struct {
		env string
		dst *int
	}{
		{"MOVERS_RETRY_MAX_RETRIES", &config.Retry.MaxRetries},
		{"MOVERS_FETCH_BATCH_SIZE", &config.Fetch.BatchSize},
		{"MOVERS_RANKING_COUNT", &config.Ranking.Count},
		{"MOVERS_SCHEDULE_COUNT", &config.Schedule.Count},
	}
	for _, i := range ints {
		if v := os.Getenv(i.env); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: invalid integer %q", i.env, v)
			}
			*i.dst = n
		}
	}

	if exchanges := os.Getenv("MOVERS_FETCH_EXCHANGES"); exchanges != "" {
		config.Fetch.Exchanges = splitList(exchanges, true)
	}

	if level := os.Getenv("MOVERS_LOG_LEVEL"); level != "" {
		config.Logging.Level = strings.ToLower(level)
	}
	if output := os.Getenv("MOVERS_LOG_OUTPUT"); output != "" {
		config.Logging.Output = splitList(output, false)
	}
	if dir := os.Getenv("MOVERS_LOG_DIR"); dir != "" {
		config.Logging.Dir = dir
	}

	if schedule := os.Getenv("MOVERS_SCHEDULE_CRON"); schedule != "" {
		config.Schedule.Cron = schedule
	}

	if enabled := os.Getenv("MOVERS_METRICS_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("MOVERS_METRICS_ENABLED: invalid boolean %q", enabled)
		}
		config.Metrics.Enabled = v
	}
	if addr := os.Getenv("MOVERS_METRICS_ADDRESS"); addr != "" {
		config.Metrics.Address = addr
	}

	return nil
}

// FlagOverrides carries command-line values. Zero values leave the config untouched.
type FlagOverrides struct {
	Count    int
	Provider string
	LogLevel string
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, flags FlagOverrides) {
	if flags.Count > 0 {
		config.Ranking.Count = flags.Count
	}
	if flags.Provider != "" {
		config.Quotes.Provider = strings.ToLower(flags.Provider)
	}
	if flags.LogLevel != "" {
		config.Logging.Level = strings.ToLower(flags.LogLevel)
	}
}

// Validate checks struct constraints and the schedule expression.
// The API key is only required when Alpha Vantage is in use.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Schedule.Cron != "" {
		if err := ValidateSchedule(c.Schedule.Cron); err != nil {
			return fmt.Errorf("invalid configuration: schedule.cron: %w", err)
		}
	}
	return nil
}

// RequireAPIKey fails when the Alpha Vantage key is missing.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.AlphaVantage.APIKey) == "" {
		return fmt.Errorf("alpha vantage API key missing: set alphavantage.api_key or ALPHAVANTAGE_API_KEY")
	}
	return nil
}

// ValidateSchedule parses a six-field cron expression (seconds first).
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// RetryPolicy converts the retry section.
func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxRetries:      c.Retry.MaxRetries,
		InitialCooldown: c.Retry.Cooldown.Std(),
		MaxCooldown:     c.Retry.MaxCooldown.Std(),
		Multiplier:      c.Retry.Multiplier,
	}
}

// Exchanges converts the configured exchange codes, ignoring unknown ones.
func (c *Config) Exchanges() []models.Exchange {
	out := make([]models.Exchange, 0, len(c.Fetch.Exchanges))
	for _, code := range c.Fetch.Exchanges {
		if e, ok := models.ParseExchange(code); ok {
			out = append(out, e)
		}
	}
	return out
}

// ScheduleCount is the number of results for scheduled runs.
func (c *Config) ScheduleCount() int {
	if c.Schedule.Count > 0 {
		return c.Schedule.Count
	}
	return c.Ranking.Count
}

func splitList(s string, upper bool) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if upper {
			part = strings.ToUpper(part)
		}
		out = append(out, part)
	}
	return out
}
