// Package yahoo is an alternative quote source backed by the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/movers/internal/models"
)

// DefaultLookback matches the depth of a compact Alpha Vantage series.
const DefaultLookback = 150 * 24 * time.Hour

// BarsFunc fetches daily chart bars for the given parameters.
type BarsFunc func(params *chart.Params) ([]*finance.ChartBar, error)

// Source implements interfaces.QuoteSource over finance-go.
type Source struct {
	fetch    BarsFunc
	lookback time.Duration
	now      func() time.Time
	logger   arbor.ILogger
}

// Option configures the Source.
type Option func(*Source)

// WithBarsFunc replaces the chart fetcher.
func WithBarsFunc(fn BarsFunc) Option {
	return func(s *Source) {
		s.fetch = fn
	}
}

// WithLookback sets how far back the series reaches.
func WithLookback(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.lookback = d
		}
	}
}

// WithNow overrides the current time.
func WithNow(now func() time.Time) Option {
	return func(s *Source) {
		s.now = now
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// NewSource creates a Yahoo chart quote source.
func NewSource(opts ...Option) *Source {
	s := &Source{
		fetch:    fetchChart,
		lookback: DefaultLookback,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func fetchChart(params *chart.Params) ([]*finance.ChartBar, error) {
	iter := chart.Get(params)
	var bars []*finance.ChartBar
	for iter.Next() {
		bars = append(bars, iter.Bar())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}

// DailySeries returns the daily bars of the lookback window, newest first,
// dated in the exchange's time zone. The chart library is not context aware,
// so cancellation is only honoured before the request.
func (s *Source) DailySeries(ctx context.Context, instrument models.ListedInstrument) (models.Quote, error) {
	if err := ctx.Err(); err != nil {
		return models.Quote{}, err
	}

	end := s.now().UTC().AddDate(0, 0, 1)
	start := end.Add(-s.lookback)
	symbol := Symbol(instrument)
	loc := Location(instrument.Exchange)
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	quote := models.Quote{Symbol: instrument.Symbol}

	bars, err := s.fetch(params)
	if err != nil {
		msg := err.Error()
		switch {
		case isThrottled(msg):
			quote.Outcome = models.QuoteRateLimited
			quote.Message = msg
			return quote, nil
		case isMissing(msg):
			quote.Outcome = models.QuoteDataError
			quote.Message = msg
			return quote, nil
		}
		return models.Quote{}, fmt.Errorf("yahoo chart request for %s: %w", symbol, err)
	}

	if len(bars) == 0 {
		quote.Outcome = models.QuoteDataError
		quote.Message = "no chart data"
		return quote, nil
	}

	quote.Outcome = models.QuoteSeries
	quote.Bars = make([]models.RawBar, 0, len(bars))
	for _, bar := range bars {
		if bar == nil {
			continue
		}
		quote.Bars = append(quote.Bars, models.RawBar{
			Date:   time.Unix(int64(bar.Timestamp), 0).In(loc).Format(models.DateLayout),
			Open:   bar.Open.String(),
			High:   bar.High.String(),
			Low:    bar.Low.String(),
			Close:  bar.Close.String(),
			Volume: strconv.Itoa(bar.Volume),
		})
	}
	slices.SortStableFunc(quote.Bars, func(a, b models.RawBar) int {
		return strings.Compare(b.Date, a.Date)
	})

	if s.logger != nil {
		s.logger.Debug().Str("symbol", instrument.Symbol).Str("yahoo_symbol", symbol).Int("bars", len(quote.Bars)).Msg("Yahoo chart received")
	}
	return quote, nil
}

func isThrottled(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "429") || strings.Contains(m, "too many requests")
}

func isMissing(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "not found") || strings.Contains(m, "no data") || strings.Contains(m, "delisted")
}
