// Package alphavantage provides a client for the Alpha Vantage market-data API:
// the instrument directory (LISTING_STATUS) and daily OHLCV series (TIME_SERIES_DAILY).
package alphavantage

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned when a request is attempted without an API key.
var ErrMissingAPIKey = errors.New("alpha vantage API key is not configured")

// APIError represents a transport-level failure from the Alpha Vantage API.
type APIError struct {
	StatusCode int
	Message    string
	Function   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("alpha vantage API error: %s (status: %d, function: %s)", e.Message, e.StatusCode, e.Function)
}

// dailyResponse is the TIME_SERIES_DAILY document. Exactly one of the message
// fields or the series is normally present.
type dailyResponse struct {
	ErrorMessage string                `json:"Error Message"`
	Note         string                `json:"Note"`
	Information  string                `json:"Information"`
	TimeSeries   map[string]dailyEntry `json:"Time Series (Daily)"`
}

type dailyEntry struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// listingError is the JSON body returned in place of CSV when a listing request fails.
type listingError struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

func (e listingError) message() string {
	switch {
	case e.ErrorMessage != "":
		return e.ErrorMessage
	case e.Note != "":
		return e.Note
	default:
		return e.Information
	}
}
