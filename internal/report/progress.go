package report

import (
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/movers/internal/fetcher"
	"github.com/ternarybob/movers/internal/models"
)

// ProgressLogger reports fetch progress through the logger.
type ProgressLogger struct {
	logger arbor.ILogger
}

// NewProgressLogger creates a fetcher.Observer backed by logger.
func NewProgressLogger(logger arbor.ILogger) *ProgressLogger {
	return &ProgressLogger{logger: logger}
}

var _ fetcher.Observer = (*ProgressLogger)(nil)

func (p *ProgressLogger) BatchStarted(batch, totalBatches, size int) {
	p.logger.Info().
		Int("batch", batch).
		Int("batches", totalBatches).
		Int("size", size).
		Msgf("Processing batch %d/%d (%d stocks)", batch, totalBatches, size)
}

func (p *ProgressLogger) SymbolStarted(index, total int, instrument models.ListedInstrument) {
	p.logger.Debug().
		Int("index", index).
		Int("total", total).
		Str("symbol", instrument.Symbol).
		Str("exchange", instrument.Exchange.String()).
		Msg("Fetching")
}

func (p *ProgressLogger) SymbolSkipped(instrument models.ListedInstrument, reason fetcher.SkipReason, err error) {
	// Data gaps are routine; parse and transport failures are worth surfacing.
	event := p.logger.Debug()
	switch reason {
	case fetcher.SkipMalformed, fetcher.SkipTransport, fetcher.SkipRateLimited:
		event = p.logger.Warn()
	}
	event.
		Str("symbol", instrument.Symbol).
		Str("reason", reason.String()).
		Err(err).
		Msg("Symbol skipped")
}

func (p *ProgressLogger) RateLimited(instrument models.ListedInstrument, attempt int, cooldown time.Duration, message string) {
	p.logger.Warn().
		Str("symbol", instrument.Symbol).
		Int("attempt", attempt).
		Dur("cooldown", cooldown).
		Str("message", message).
		Msgf("Rate limit hit for %s, waiting %s", instrument.Symbol, cooldown)
}

func (p *ProgressLogger) BatchCompleted(progress fetcher.BatchProgress) {
	event := p.logger.Info().
		Int("batch", progress.Batch).
		Int("processed", progress.Processed).
		Int("total", progress.Total).
		Int("fetched", progress.Fetched).
		Int("skipped", progress.Skipped).
		Dur("elapsed", progress.Elapsed)
	if progress.Batch < progress.TotalBatches {
		event = event.Dur("eta", progress.ETA)
	}
	event.Msgf("Batch %d completed in %.1f minutes", progress.Batch, progress.Elapsed.Minutes())
}
