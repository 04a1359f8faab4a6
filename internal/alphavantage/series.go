package alphavantage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/ternarybob/movers/internal/models"
)

const functionDailySeries = "TIME_SERIES_DAILY"

// DailySeries retrieves the compact daily series (about 100 sessions) for an instrument.
// Provider messages are mapped onto the quote outcome:
//   - "Error Message" is a hard data error
//   - "Note", or an "Information" notice about request frequency, is a throttling notice
//   - any other "Information" (for example premium-only endpoints) is a hard data error
//
// The error return carries transport failures only.
func (c *Client) DailySeries(ctx context.Context, instrument models.ListedInstrument) (models.Quote, error) {
	symbol := instrument.Symbol
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("outputsize", "compact")

	body, status, err := c.get(ctx, functionDailySeries, params)
	if err != nil {
		return models.Quote{}, err
	}

	quote := models.Quote{Symbol: symbol}

	if status == http.StatusTooManyRequests {
		quote.Outcome = models.QuoteRateLimited
		quote.Message = "HTTP 429 Too Many Requests"
		return quote, nil
	}

	var doc dailyResponse
	if err := json.Unmarshal(body, &doc); err != nil {
		quote.Outcome = models.QuoteDataError
		quote.Message = "malformed response: " + err.Error()
		return quote, nil
	}

	switch {
	case doc.ErrorMessage != "":
		quote.Outcome = models.QuoteDataError
		quote.Message = doc.ErrorMessage
		return quote, nil
	case doc.Note != "":
		quote.Outcome = models.QuoteRateLimited
		quote.Message = doc.Note
		return quote, nil
	case doc.Information != "" && len(doc.TimeSeries) == 0:
		if isThrottleNotice(doc.Information) {
			quote.Outcome = models.QuoteRateLimited
		} else {
			quote.Outcome = models.QuoteDataError
		}
		quote.Message = doc.Information
		return quote, nil
	case len(doc.TimeSeries) == 0:
		quote.Outcome = models.QuoteDataError
		quote.Message = "no daily time series in response"
		return quote, nil
	}

	dates := make([]string, 0, len(doc.TimeSeries))
	for date := range doc.TimeSeries {
		dates = append(dates, date)
	}
	slices.Sort(dates)
	slices.Reverse(dates)

	quote.Outcome = models.QuoteSeries
	quote.Bars = make([]models.RawBar, 0, len(dates))
	for _, date := range dates {
		entry := doc.TimeSeries[date]
		quote.Bars = append(quote.Bars, models.RawBar{
			Date:   date,
			Open:   entry.Open,
			High:   entry.High,
			Low:    entry.Low,
			Close:  entry.Close,
			Volume: entry.Volume,
		})
	}

	return quote, nil
}

func isThrottleNotice(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "rate limit") ||
		strings.Contains(m, "call frequency") ||
		strings.Contains(m, "requests per")
}
