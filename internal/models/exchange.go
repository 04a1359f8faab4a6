package models

import "strings"

// Exchange identifies a listing venue covered by the activity scan.
type Exchange string

const (
	ExchangeNASDAQ Exchange = "NASDAQ"
	ExchangeNYSE   Exchange = "NYSE"
	ExchangeASX    Exchange = "ASX"
	ExchangeHKSE   Exchange = "HKSE"
)

// DefaultExchanges returns the exchanges scanned when none are configured.
func DefaultExchanges() []Exchange {
	return []Exchange{ExchangeNASDAQ, ExchangeNYSE, ExchangeASX, ExchangeHKSE}
}

// ParseExchange matches a listing exchange code exactly (surrounding whitespace ignored).
func ParseExchange(code string) (Exchange, bool) {
	switch e := Exchange(strings.TrimSpace(code)); e {
	case ExchangeNASDAQ, ExchangeNYSE, ExchangeASX, ExchangeHKSE:
		return e, true
	}
	return "", false
}

func (e Exchange) String() string {
	return string(e)
}

// ExchangeCount pairs an exchange with a number of stocks.
type ExchangeCount struct {
	Exchange Exchange `json:"exchange"`
	Count    int      `json:"count"`
}
