// Package activity scores daily bars and ranks them by how actively they traded.
package activity

import (
	"github.com/shopspring/decimal"

	"github.com/ternarybob/movers/internal/models"
)

var (
	hundred    = decimal.NewFromInt(100)
	perMillion = decimal.NewFromInt(1_000_000)
)

// Weights are the coefficients of the composite activity score.
type Weights struct {
	Volume     float64 `toml:"volume" validate:"gte=0"`
	PriceMove  float64 `toml:"price_move" validate:"gte=0"`
	Volatility float64 `toml:"volatility" validate:"gte=0"`
}

// DefaultWeights returns volume in millions ×1, |change %| ×8, volatility % ×4.
func DefaultWeights() Weights {
	return Weights{Volume: 1.0, PriceMove: 8.0, Volatility: 4.0}
}

// Score derives the activity metrics of a bar:
//
//	change      = close - open
//	change %    = change / open × 100
//	volatility% = (high - low) / open × 100
//	score       = volume/1e6 × w.Volume + |change %| × w.PriceMove + volatility% × w.Volatility
//
// Percentages are zero when open is zero. The score uses unrounded inputs;
// every output is rounded half away from zero to 2 places.
func Score(bar models.DailyBar, w Weights) models.ActivityMetrics {
	change := bar.Close.Sub(bar.Open)

	changePct := decimal.Zero
	volatilityPct := decimal.Zero
	if !bar.Open.IsZero() {
		changePct = change.Div(bar.Open).Mul(hundred)
		volatilityPct = bar.High.Sub(bar.Low).Div(bar.Open).Mul(hundred)
	}

	volumeM := decimal.NewFromInt(bar.Volume).Div(perMillion)
	score := volumeM.Mul(decimal.NewFromFloat(w.Volume)).
		Add(changePct.Abs().Mul(decimal.NewFromFloat(w.PriceMove))).
		Add(volatilityPct.Mul(decimal.NewFromFloat(w.Volatility)))

	return models.ActivityMetrics{
		PriceChange:        change.Round(2),
		PriceChangePercent: changePct.Round(2),
		VolatilityPercent:  volatilityPct.Round(2),
		ActivityScore:      score.Round(2),
	}
}
