// Package fetcher retrieves one daily bar per instrument, sequentially, under
// a shared pacing budget, retrying throttled requests per a retry policy.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/movers/internal/interfaces"
	"github.com/ternarybob/movers/internal/models"
	"github.com/ternarybob/movers/internal/pacing"
	"github.com/ternarybob/movers/internal/retry"
	"github.com/ternarybob/movers/internal/tradingday"
)

// DefaultBatchSize groups symbols for progress reporting.
const DefaultBatchSize = 100

// Stats summarises one Fetch call.
type Stats struct {
	Requested        int
	Fetched          int
	Skipped          int
	RateLimitRetries int
	Skips            map[SkipReason]int
	Duration         time.Duration
}

func (s *Stats) skip(reason SkipReason) {
	s.Skipped++
	if s.Skips == nil {
		s.Skips = make(map[SkipReason]int)
	}
	s.Skips[reason]++
}

// Fetcher performs paced, sequential daily-bar retrieval.
type Fetcher struct {
	source    interfaces.QuoteSource
	limiter   pacing.Limiter
	clock     pacing.Clock
	policy    retry.Policy
	batchSize int
	observer  Observer
	logger    arbor.ILogger
}

// Option configures the Fetcher.
type Option func(*Fetcher)

// WithClock sets the clock used for cooldowns and timing.
func WithClock(clock pacing.Clock) Option {
	return func(f *Fetcher) {
		if clock != nil {
			f.clock = clock
		}
	}
}

// WithRetryPolicy sets the rate-limit retry policy.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(f *Fetcher) {
		f.policy = policy
	}
}

// WithBatchSize sets the progress batch size.
func WithBatchSize(size int) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.batchSize = size
		}
	}
}

// WithObserver sets the progress observer.
func WithObserver(observer Observer) Option {
	return func(f *Fetcher) {
		if observer != nil {
			f.observer = observer
		}
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a Fetcher. The limiter is waited on before every quote request,
// retries included, so it should be shared by everything using the same API key.
func New(source interfaces.QuoteSource, limiter pacing.Limiter, opts ...Option) *Fetcher {
	f := &Fetcher{
		source:    source,
		limiter:   limiter,
		clock:     pacing.SystemClock(),
		policy:    retry.NewDefaultPolicy(),
		batchSize: DefaultBatchSize,
		observer:  NopObserver{},
		logger:    arbor.NewLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.limiter == nil {
		f.limiter = pacing.NewGate(pacing.DefaultInterval, f.clock)
	}
	return f
}

// Fetch retrieves the bar of each instrument for the target date, or the most
// recent session before it. Per-symbol failures are reported to the observer
// and skipped. On cancellation the bars collected so far are returned together
// with the context error.
func (f *Fetcher) Fetch(ctx context.Context, instruments []models.ListedInstrument, target models.Date) ([]models.DailyBar, Stats, error) {
	stats := Stats{Requested: len(instruments)}
	start := f.clock.Now()

	total := len(instruments)
	totalBatches := (total + f.batchSize - 1) / f.batchSize
	bars := make([]models.DailyBar, 0, total)

	for batch := 0; batch < totalBatches; batch++ {
		from := batch * f.batchSize
		to := min(from+f.batchSize, total)
		batchStart := f.clock.Now()

		f.observer.BatchStarted(batch+1, totalBatches, to-from)

		for i := from; i < to; i++ {
			if err := ctx.Err(); err != nil {
				stats.Duration = f.clock.Now().Sub(start)
				return bars, stats, err
			}

			instrument := instruments[i]
			f.observer.SymbolStarted(i+1, total, instrument)

			bar, err := f.fetchOne(ctx, instrument, target, &stats)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					stats.Duration = f.clock.Now().Sub(start)
					return bars, stats, ctxErr
				}
				reason := classify(err)
				stats.skip(reason)
				f.observer.SymbolSkipped(instrument, reason, err)
				continue
			}

			bars = append(bars, bar)
			stats.Fetched++
		}

		elapsed := f.clock.Now().Sub(batchStart)
		f.observer.BatchCompleted(BatchProgress{
			Batch:        batch + 1,
			TotalBatches: totalBatches,
			Processed:    to,
			Total:        total,
			Fetched:      stats.Fetched,
			Skipped:      stats.Skipped,
			Elapsed:      elapsed,
			ETA:          elapsed * time.Duration(totalBatches-batch-1),
		})
	}

	stats.Duration = f.clock.Now().Sub(start)
	f.logger.Debug().
		Int("requested", stats.Requested).
		Int("fetched", stats.Fetched).
		Int("skipped", stats.Skipped).
		Int("rate_limit_retries", stats.RateLimitRetries).
		Dur("duration", stats.Duration).
		Msg("Fetch complete")

	return bars, stats, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, instrument models.ListedInstrument, target models.Date, stats *Stats) (models.DailyBar, error) {
	quote, err := f.quote(ctx, instrument, stats)
	if err != nil {
		return models.DailyBar{}, err
	}

	if quote.Outcome == models.QuoteDataError {
		return models.DailyBar{}, fmt.Errorf("%w: %s: %s", ErrDataError, instrument.Symbol, quote.Message)
	}

	resolution, err := tradingday.Resolve(target, quote.Bars)
	if err != nil {
		return models.DailyBar{}, fmt.Errorf("%s: %w", instrument.Symbol, err)
	}

	bar, err := parseBar(instrument, resolution)
	if err != nil {
		return models.DailyBar{}, err
	}

	if bar.Volume == 0 {
		return models.DailyBar{}, fmt.Errorf("%s on %s: %w", instrument.Symbol, bar.Date, ErrZeroVolume)
	}

	return bar, nil
}

// quote issues the request, cooling down and re-issuing while the provider throttles.
func (f *Fetcher) quote(ctx context.Context, instrument models.ListedInstrument, stats *Stats) (models.Quote, error) {
	for attempt := 1; ; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return models.Quote{}, err
		}

		quote, err := f.source.DailySeries(ctx, instrument)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return models.Quote{}, ctxErr
			}
			return models.Quote{}, &TransportError{Symbol: instrument.Symbol, Err: err}
		}

		if quote.Outcome != models.QuoteRateLimited {
			return quote, nil
		}

		if !f.policy.Allow(attempt) {
			return models.Quote{}, fmt.Errorf("%s after %d retries: %w", instrument.Symbol, attempt-1, ErrRateLimitExhausted)
		}

		cooldown := f.policy.Cooldown(attempt)
		stats.RateLimitRetries++
		f.observer.RateLimited(instrument, attempt, cooldown, quote.Message)

		if err := f.clock.Sleep(ctx, cooldown); err != nil {
			return models.Quote{}, err
		}
	}
}

func parseBar(instrument models.ListedInstrument, resolution tradingday.Resolution) (models.DailyBar, error) {
	raw := resolution.Bar
	bar := models.DailyBar{
		Symbol:   instrument.Symbol,
		Name:     instrument.Name,
		Exchange: instrument.Exchange,
		IPODate:  instrument.IPODate,
		Date:     resolution.Date,
	}

	prices := []struct {
		field string
		value string
		dst   *decimal.Decimal
	}{
		{"open", raw.Open, &bar.Open},
		{"high", raw.High, &bar.High},
		{"low", raw.Low, &bar.Low},
		{"close", raw.Close, &bar.Close},
	}
	for _, p := range prices {
		d, err := decimal.NewFromString(p.value)
		if err != nil {
			return models.DailyBar{}, &MalformedRecordError{Symbol: instrument.Symbol, Field: p.field, Value: p.value, Err: err}
		}
		*p.dst = d
	}

	// Volume is a whole share count; "1.5" is malformed, not truncated.
	volume, err := strconv.ParseInt(strings.TrimSpace(raw.Volume), 10, 64)
	if err != nil {
		return models.DailyBar{}, &MalformedRecordError{Symbol: instrument.Symbol, Field: "volume", Value: raw.Volume, Err: err}
	}
	if volume < 0 {
		return models.DailyBar{}, &MalformedRecordError{Symbol: instrument.Symbol, Field: "volume", Value: raw.Volume, Err: errors.New("negative volume")}
	}
	bar.Volume = volume

	return bar, nil
}

func classify(err error) SkipReason {
	var malformed *MalformedRecordError
	var transport *TransportError
	switch {
	case errors.Is(err, ErrRateLimitExhausted):
		return SkipRateLimited
	case errors.Is(err, ErrZeroVolume):
		return SkipZeroVolume
	case errors.Is(err, tradingday.ErrNoTradingDay):
		return SkipNoTradingDay
	case errors.As(err, &malformed):
		return SkipMalformed
	case errors.As(err, &transport):
		return SkipTransport
	}
	return SkipDataError
}
