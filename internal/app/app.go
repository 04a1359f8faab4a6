// Package app wires configuration into the scan pipeline.
package app

import (
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/movers/internal/alphavantage"
	"github.com/ternarybob/movers/internal/common"
	"github.com/ternarybob/movers/internal/fetcher"
	"github.com/ternarybob/movers/internal/interfaces"
	"github.com/ternarybob/movers/internal/pacing"
	"github.com/ternarybob/movers/internal/pipeline"
	"github.com/ternarybob/movers/internal/yahoo"
)

// App holds the components of one configured scanner.
type App struct {
	Config   *common.Config
	Logger   arbor.ILogger
	Listings interfaces.ListingSource
	Quotes   interfaces.QuoteSource
	Gate     *pacing.Gate
	Fetcher  *fetcher.Fetcher
	Pipeline *pipeline.Service
}

// Options carries collaborators supplied by the caller.
type Options struct {
	Confirm    pipeline.ConfirmFunc
	Observer   fetcher.Observer
	Clock      pacing.Clock
	HTTPClient *http.Client
}

// New initializes the scanner from configuration.
func New(cfg *common.Config, logger arbor.ILogger, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// The listing always comes from Alpha Vantage.
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger}

	clientOpts := []alphavantage.ClientOption{
		alphavantage.WithBaseURL(cfg.AlphaVantage.BaseURL),
		alphavantage.WithLogger(logger),
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, alphavantage.WithHTTPClient(opts.HTTPClient))
	} else {
		clientOpts = append(clientOpts, alphavantage.WithTimeout(cfg.AlphaVantage.Timeout.Std()))
	}
	client := alphavantage.NewClient(cfg.AlphaVantage.APIKey, clientOpts...)
	a.Listings = client

	switch cfg.Quotes.Provider {
	case common.ProviderAlphaVantage:
		a.Quotes = client
	case common.ProviderYahoo:
		a.Quotes = yahoo.NewSource(
			yahoo.WithLookback(cfg.Quotes.Lookback.Std()),
			yahoo.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unknown quote provider %q", cfg.Quotes.Provider)
	}

	clock := opts.Clock
	if clock == nil {
		clock = pacing.SystemClock()
	}
	a.Gate = pacing.NewGate(cfg.Pacing.Interval.Std(), clock)

	fetchOpts := []fetcher.Option{
		fetcher.WithClock(clock),
		fetcher.WithRetryPolicy(cfg.RetryPolicy()),
		fetcher.WithBatchSize(cfg.Fetch.BatchSize),
		fetcher.WithLogger(logger),
	}
	if opts.Observer != nil {
		fetchOpts = append(fetchOpts, fetcher.WithObserver(opts.Observer))
	}
	a.Fetcher = fetcher.New(a.Quotes, a.Gate, fetchOpts...)

	a.Pipeline = pipeline.New(a.Listings, a.Fetcher,
		pipeline.WithExchanges(cfg.Exchanges()),
		pipeline.WithWeights(cfg.Ranking.Weights),
		pipeline.WithEstimator(a.Gate),
		pipeline.WithConfirm(opts.Confirm),
		pipeline.WithClock(clock),
		pipeline.WithLogger(logger),
	)

	logger.Debug().
		Str("provider", cfg.Quotes.Provider).
		Dur("interval", a.Gate.Interval()).
		Msg("Scanner initialized")

	return a, nil
}
