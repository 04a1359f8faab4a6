package models

import "github.com/shopspring/decimal"

// ListingRow is one raw row of the instrument directory, before filtering.
type ListingRow struct {
	Symbol        string
	Name          string
	Exchange      string
	AssetType     string
	Status        string
	IPODate       string
	DelistingDate string
}

// ListedInstrument is an active common stock on one of the scanned exchanges.
type ListedInstrument struct {
	Symbol   string   `json:"symbol"`
	Name     string   `json:"name"`
	Exchange Exchange `json:"exchange"`
	IPODate  Date     `json:"ipo_date"`
}

// DailyBar is the OHLCV record of one symbol for one trading session, with the
// instrument identity carried through from the listing.
type DailyBar struct {
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name"`
	Exchange Exchange        `json:"exchange"`
	IPODate  Date            `json:"ipo_date"`
	Date     Date            `json:"date"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	Volume   int64           `json:"volume"`
}

// ActivityMetrics are derived from a DailyBar. All values are rounded to 2 decimal places.
type ActivityMetrics struct {
	PriceChange        decimal.Decimal `json:"price_change"`
	PriceChangePercent decimal.Decimal `json:"price_change_percent"`
	VolatilityPercent  decimal.Decimal `json:"volatility_percent"`
	ActivityScore      decimal.Decimal `json:"activity_score"`
}

// RankedStock is a scored DailyBar, the unit of the final ranking.
type RankedStock struct {
	DailyBar
	ActivityMetrics
}
