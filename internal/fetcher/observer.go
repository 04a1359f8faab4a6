package fetcher

import (
	"time"

	"github.com/ternarybob/movers/internal/models"
)

// BatchProgress is reported when a batch finishes.
type BatchProgress struct {
	Batch        int
	TotalBatches int
	Processed    int
	Total        int
	Fetched      int
	Skipped      int
	Elapsed      time.Duration
	ETA          time.Duration
}

// Observer receives progress events from a Fetcher. Calls are made on the
// fetching goroutine, so implementations should return quickly.
type Observer interface {
	BatchStarted(batch, totalBatches, size int)
	SymbolStarted(index, total int, instrument models.ListedInstrument)
	SymbolSkipped(instrument models.ListedInstrument, reason SkipReason, err error)
	RateLimited(instrument models.ListedInstrument, attempt int, cooldown time.Duration, message string)
	BatchCompleted(progress BatchProgress)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) BatchStarted(int, int, int)                                      {}
func (NopObserver) SymbolStarted(int, int, models.ListedInstrument)                 {}
func (NopObserver) SymbolSkipped(models.ListedInstrument, SkipReason, error)        {}
func (NopObserver) RateLimited(models.ListedInstrument, int, time.Duration, string) {}
func (NopObserver) BatchCompleted(BatchProgress)                                    {}

// Observers fans every event out to each non-nil observer in order.
func Observers(observers ...Observer) Observer {
	var m multiObserver
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

type multiObserver []Observer

func (m multiObserver) BatchStarted(batch, totalBatches, size int) {
	for _, o := range m {
		o.BatchStarted(batch, totalBatches, size)
	}
}

func (m multiObserver) SymbolStarted(index, total int, instrument models.ListedInstrument) {
	for _, o := range m {
		o.SymbolStarted(index, total, instrument)
	}
}

func (m multiObserver) SymbolSkipped(instrument models.ListedInstrument, reason SkipReason, err error) {
	for _, o := range m {
		o.SymbolSkipped(instrument, reason, err)
	}
}

func (m multiObserver) RateLimited(instrument models.ListedInstrument, attempt int, cooldown time.Duration, message string) {
	for _, o := range m {
		o.RateLimited(instrument, attempt, cooldown, message)
	}
}

func (m multiObserver) BatchCompleted(progress BatchProgress) {
	for _, o := range m {
		o.BatchCompleted(progress)
	}
}
