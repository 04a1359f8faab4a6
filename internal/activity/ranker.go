package activity

import (
	"cmp"
	"errors"
	"slices"

	"github.com/ternarybob/movers/internal/models"
)

// ErrInvalidCount is returned when the requested number of results is not positive.
var ErrInvalidCount = errors.New("count must be a positive integer")

// Build scores every bar, preserving arrival order.
func Build(bars []models.DailyBar, w Weights) []models.RankedStock {
	out := make([]models.RankedStock, 0, len(bars))
	for _, bar := range bars {
		out = append(out, models.RankedStock{DailyBar: bar, ActivityMetrics: Score(bar, w)})
	}
	return out
}

// Rank orders stocks by activity score, highest first, and keeps the top count.
// Equal scores keep their input order. The input slice is not modified.
func Rank(stocks []models.RankedStock, count int) ([]models.RankedStock, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}

	ranked := slices.Clone(stocks)
	slices.SortStableFunc(ranked, func(a, b models.RankedStock) int {
		return b.ActivityScore.Cmp(a.ActivityScore)
	})

	if len(ranked) > count {
		ranked = ranked[:count]
	}
	return ranked, nil
}

// GroupByExchange counts stocks per exchange, ordered by exchange name.
func GroupByExchange(stocks []models.RankedStock) []models.ExchangeCount {
	counts := make(map[models.Exchange]int)
	for _, s := range stocks {
		counts[s.Exchange]++
	}

	out := make([]models.ExchangeCount, 0, len(counts))
	for exchange, n := range counts {
		out = append(out, models.ExchangeCount{Exchange: exchange, Count: n})
	}
	slices.SortFunc(out, func(a, b models.ExchangeCount) int {
		return cmp.Compare(a.Exchange, b.Exchange)
	})
	return out
}
