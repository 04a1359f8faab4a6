// Package listing selects the scan universe from the raw instrument directory.
package listing

import (
	"strings"

	"github.com/ternarybob/movers/internal/models"
)

const (
	statusActive   = "active"
	assetTypeStock = "Stock"
)

// Result is the filtered universe plus per-exchange counts for reporting.
type Result struct {
	Instruments []models.ListedInstrument
	Counts      map[models.Exchange]int
	exchanges   []models.Exchange
}

// Total returns the number of instruments selected.
func (r Result) Total() int {
	return len(r.Instruments)
}

// OrderedCounts returns the per-exchange counts in target-exchange order,
// including exchanges that contributed no rows.
func (r Result) OrderedCounts() []models.ExchangeCount {
	counts := make([]models.ExchangeCount, 0, len(r.exchanges))
	for _, e := range r.exchanges {
		counts = append(counts, models.ExchangeCount{Exchange: e, Count: r.Counts[e]})
	}
	return counts
}

// Filter keeps rows whose status is "active" (any case), whose exchange is one of
// the targets and whose asset type is exactly "Stock". ETFs and other instrument
// types are excluded. Rows without a symbol are dropped and a repeated
// (symbol, exchange) pair keeps its first occurrence.
func Filter(rows []models.ListingRow, exchanges []models.Exchange) Result {
	if len(exchanges) == 0 {
		exchanges = models.DefaultExchanges()
	}

	targets := make(map[models.Exchange]bool, len(exchanges))
	counts := make(map[models.Exchange]int, len(exchanges))
	for _, e := range exchanges {
		targets[e] = true
		counts[e] = 0
	}

	seen := make(map[string]bool)
	instruments := make([]models.ListedInstrument, 0)

	for _, row := range rows {
		if !strings.EqualFold(strings.TrimSpace(row.Status), statusActive) {
			continue
		}
		if strings.TrimSpace(row.AssetType) != assetTypeStock {
			continue
		}
		exchange := models.Exchange(strings.TrimSpace(row.Exchange))
		if !targets[exchange] {
			continue
		}

		symbol := strings.TrimSpace(row.Symbol)
		if symbol == "" {
			continue
		}
		key := symbol + "|" + exchange.String()
		if seen[key] {
			continue
		}
		seen[key] = true

		// An unparseable IPO date is not a reason to drop the instrument.
		ipoDate, _ := models.ParseDate(row.IPODate)

		instruments = append(instruments, models.ListedInstrument{
			Symbol:   symbol,
			Name:     strings.TrimSpace(row.Name),
			Exchange: exchange,
			IPODate:  ipoDate,
		})
		counts[exchange]++
	}

	return Result{
		Instruments: instruments,
		Counts:      counts,
		exchanges:   exchanges,
	}
}
