// Package pipeline runs one scan: listing, filter, confirmation, paced fetch,
// scoring and ranking.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/movers/internal/activity"
	"github.com/ternarybob/movers/internal/fetcher"
	"github.com/ternarybob/movers/internal/interfaces"
	"github.com/ternarybob/movers/internal/listing"
	"github.com/ternarybob/movers/internal/models"
	"github.com/ternarybob/movers/internal/pacing"
)

var (
	// ErrListingUnavailable is returned when the instrument directory cannot be retrieved.
	ErrListingUnavailable = errors.New("instrument listing unavailable")

	// ErrNoInstruments is returned when no listed instrument passes the filter.
	ErrNoInstruments = errors.New("no active stocks found on the target exchanges")

	// ErrCancelledByOperator is returned when the confirmation hook declines the run.
	ErrCancelledByOperator = errors.New("run cancelled by operator")

	// ErrMissingDate is returned when a request has no target date.
	ErrMissingDate = errors.New("target date is required")
)

// Request selects the target date and number of results.
type Request struct {
	Date  models.Date
	Count int
}

// Plan is presented to the confirmation hook before fetching starts.
type Plan struct {
	RunID       string
	Date        models.Date
	Instruments int
	Counts      []models.ExchangeCount
	Estimated   time.Duration
}

// ConfirmFunc approves a plan. Returning false cancels the run.
type ConfirmFunc func(ctx context.Context, plan Plan) (bool, error)

// Estimator predicts the wall time of a number of paced calls.
type Estimator interface {
	Estimate(calls int) time.Duration
}

// Result is the outcome of a run.
type Result struct {
	RunID          string                 `json:"run_id"`
	Date           models.Date            `json:"date"`
	Requested      int                    `json:"requested"`
	Stocks         []models.RankedStock   `json:"stocks"`
	ExchangeCounts []models.ExchangeCount `json:"exchange_counts"`
	Breakdown      []models.ExchangeCount `json:"breakdown"`
	Listed         int                    `json:"listed"`
	Fetched        int                    `json:"fetched"`
	Skipped        int                    `json:"skipped"`
	Interrupted    bool                   `json:"interrupted"`
	Duration       time.Duration          `json:"duration"`
}

// Service orchestrates runs.
type Service struct {
	listings  interfaces.ListingSource
	fetcher   *fetcher.Fetcher
	exchanges []models.Exchange
	weights   activity.Weights
	estimator Estimator
	confirm   ConfirmFunc
	clock     pacing.Clock
	logger    arbor.ILogger
}

// Option configures the Service.
type Option func(*Service)

// WithExchanges restricts the scan to the given exchanges.
func WithExchanges(exchanges []models.Exchange) Option {
	return func(s *Service) {
		if len(exchanges) > 0 {
			s.exchanges = exchanges
		}
	}
}

// WithWeights sets the activity score weights.
func WithWeights(w activity.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithEstimator sets the duration estimator shown to the confirmation hook.
func WithEstimator(e Estimator) Option {
	return func(s *Service) {
		s.estimator = e
	}
}

// WithConfirm sets the confirmation hook.
func WithConfirm(fn ConfirmFunc) Option {
	return func(s *Service) {
		s.confirm = fn
	}
}

// WithClock sets the clock used to time runs.
func WithClock(clock pacing.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Service.
func New(listings interfaces.ListingSource, f *fetcher.Fetcher, opts ...Option) *Service {
	s := &Service{
		listings:  listings,
		fetcher:   f,
		exchanges: models.DefaultExchanges(),
		weights:   activity.DefaultWeights(),
		estimator: pacing.NewGate(pacing.DefaultInterval, nil),
		clock:     pacing.SystemClock(),
		logger:    arbor.NewLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listing retrieves and filters the instrument directory.
func (s *Service) Listing(ctx context.Context) (listing.Result, error) {
	rows, err := s.listings.ListingStatus(ctx)
	if err != nil {
		return listing.Result{}, fmt.Errorf("%w: %w", ErrListingUnavailable, err)
	}
	return listing.Filter(rows, s.exchanges), nil
}

// Run scans the listed universe for req.Date and returns the req.Count most
// active stocks. If ctx is cancelled while fetching, the stocks collected so
// far are ranked and returned with Interrupted set, together with the
// context error.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Count <= 0 {
		return nil, activity.ErrInvalidCount
	}
	if req.Date.IsZero() {
		return nil, ErrMissingDate
	}

	start := s.clock.Now()
	runID := uuid.New().String()
	logger := s.logger.WithCorrelationId(runID)

	result := &Result{
		RunID:     runID,
		Date:      req.Date,
		Requested: req.Count,
		Stocks:    []models.RankedStock{},
	}
	finish := func() *Result {
		result.Duration = s.clock.Now().Sub(start)
		return result
	}

	logger.Info().
		Str("date", req.Date.String()).
		Int("count", req.Count).
		Msg("Starting scan")

	universe, err := s.Listing(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to retrieve instrument listing")
		return finish(), err
	}
	result.ExchangeCounts = universe.OrderedCounts()
	result.Listed = universe.Total()

	logger.Info().
		Int("instruments", universe.Total()).
		Msg("Instrument listing filtered")

	if universe.Total() == 0 {
		return finish(), ErrNoInstruments
	}

	if s.confirm != nil {
		plan := Plan{
			RunID:       runID,
			Date:        req.Date,
			Instruments: universe.Total(),
			Counts:      result.ExchangeCounts,
			Estimated:   s.estimator.Estimate(universe.Total()),
		}
		ok, err := s.confirm(ctx, plan)
		if err != nil {
			return finish(), fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			logger.Info().Msg("Scan declined by operator")
			return finish(), ErrCancelledByOperator
		}
	}

	bars, stats, fetchErr := s.fetcher.Fetch(ctx, universe.Instruments, req.Date)
	result.Fetched = stats.Fetched
	result.Skipped = stats.Skipped
	if fetchErr != nil {
		result.Interrupted = true
		logger.Warn().
			Err(fetchErr).
			Int("fetched", stats.Fetched).
			Msg("Scan interrupted, ranking partial results")
	}

	ranked, err := activity.Rank(activity.Build(bars, s.weights), req.Count)
	if err != nil {
		return finish(), err
	}
	result.Stocks = ranked
	result.Breakdown = activity.GroupByExchange(ranked)

	finish()
	logger.Info().
		Int("fetched", result.Fetched).
		Int("skipped", result.Skipped).
		Int("ranked", len(result.Stocks)).
		Dur("duration", result.Duration).
		Msg("Scan complete")

	if fetchErr != nil {
		return result, fmt.Errorf("scan interrupted: %w", fetchErr)
	}
	return result, nil
}
