// Package tradingday maps a requested calendar date to the session that
// actually traded on or before it.
package tradingday

import (
	"errors"

	"github.com/ternarybob/movers/internal/models"
)

// ErrNoTradingDay is returned when a series has no session at or before the target date.
var ErrNoTradingDay = errors.New("no data for symbol at or before target date")

// Resolution is the bar chosen for a target date.
type Resolution struct {
	Bar   models.RawBar
	Date  models.Date
	Exact bool
}

// Resolve returns the bar dated exactly on target, or failing that the latest
// bar dated before it. Entries whose date does not parse are ignored.
func Resolve(target models.Date, bars []models.RawBar) (Resolution, error) {
	var (
		best  Resolution
		found bool
	)

	for _, bar := range bars {
		date, err := models.ParseDate(bar.Date)
		if err != nil {
			continue
		}
		if date.After(target) {
			continue
		}
		if date.Equal(target) {
			return Resolution{Bar: bar, Date: date, Exact: true}, nil
		}
		if !found || date.After(best.Date) {
			best = Resolution{Bar: bar, Date: date}
			found = true
		}
	}

	if !found {
		return Resolution{}, ErrNoTradingDay
	}
	return best, nil
}
