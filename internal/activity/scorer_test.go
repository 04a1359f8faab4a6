package activity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ternarybob/movers/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dailyBar(open, high, low, close string, volume int64) models.DailyBar {
	return models.DailyBar{Open: d(open), High: d(high), Low: d(low), Close: d(close), Volume: volume}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func TestScore(t *testing.T) {
	tests := []struct {
		name          string
		bar           models.DailyBar
		change        string
		changePct     string
		volatilityPct string
		score         string
	}{
		{
			name:          "rising day",
			bar:           dailyBar("100", "110", "95", "105", 2_000_000),
			change:        "5",
			changePct:     "5",
			volatilityPct: "15",
			score:         "102",
		},
		{
			name:          "falling day uses absolute change",
			bar:           dailyBar("50", "51", "44", "45", 500_000),
			change:        "-5",
			changePct:     "-10",
			volatilityPct: "14",
			score:         "136.5",
		},
		{
			name:          "rounded to two places",
			bar:           dailyBar("3", "3.5", "2.9", "3.1", 1_234_567),
			change:        "0.1",
			changePct:     "3.33",
			volatilityPct: "20",
			score:         "107.9",
		},
		{
			name:          "zero open",
			bar:           dailyBar("0", "1", "0", "1", 3_000_000),
			change:        "1",
			changePct:     "0",
			volatilityPct: "0",
			score:         "3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Score(tt.bar, DefaultWeights())
			assertDecimal(t, tt.change, m.PriceChange)
			assertDecimal(t, tt.changePct, m.PriceChangePercent)
			assertDecimal(t, tt.volatilityPct, m.VolatilityPercent)
			assertDecimal(t, tt.score, m.ActivityScore)
		})
	}
}

func TestScore_ChangePercentMatchesRoundedFormula(t *testing.T) {
	bars := []models.DailyBar{
		dailyBar("7", "8", "6", "7.77", 1),
		dailyBar("0.0123", "0.02", "0.01", "0.0141", 1),
		dailyBar("999.99", "1000", "900", "901.01", 1),
	}
	for _, bar := range bars {
		want := bar.Close.Sub(bar.Open).Div(bar.Open).Mul(decimal.NewFromInt(100)).Round(2)
		assertDecimal(t, want.String(), Score(bar, DefaultWeights()).PriceChangePercent)
	}
}

func TestScore_Monotonic(t *testing.T) {
	w := DefaultWeights()
	base := dailyBar("100", "104", "98", "102", 1_000_000)
	baseScore := Score(base, w).ActivityScore

	moreVolume := base
	moreVolume.Volume = 5_000_000
	assert.True(t, Score(moreVolume, w).ActivityScore.GreaterThanOrEqual(baseScore))

	bigger := base
	bigger.Close = d("90")
	assert.True(t, Score(bigger, w).ActivityScore.GreaterThanOrEqual(baseScore))

	wider := base
	wider.High = d("120")
	assert.True(t, Score(wider, w).ActivityScore.GreaterThanOrEqual(baseScore))
}

func TestScore_CustomWeights(t *testing.T) {
	bar := dailyBar("100", "110", "95", "105", 2_000_000)
	m := Score(bar, Weights{Volume: 1})
	assertDecimal(t, "2", m.ActivityScore)
}
