package interfaces

import (
	"context"

	"github.com/ternarybob/movers/internal/models"
)

// ListingSource returns the full instrument directory in one request.
// A returned error is a transport failure and is fatal for a run.
type ListingSource interface {
	ListingStatus(ctx context.Context) ([]models.ListingRow, error)
}

// QuoteSource returns the recent daily series for one listed instrument.
// The exchange is passed along so a source can qualify the symbol and date
// bars in the exchange's time zone.
// Hard data errors and throttling notices are reported through Quote.Outcome;
// the error return is reserved for transport failures.
type QuoteSource interface {
	DailySeries(ctx context.Context, instrument models.ListedInstrument) (models.Quote, error)
}
