package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/movers/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("test-key", WithBaseURL(server.URL), WithLogger(arbor.NewLogger()))
}

func TestListingStatus_ParsesCSV(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "LISTING_STATUS", r.URL.Query().Get("function"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("symbol,name,exchange,assetType,ipoDate,delistingDate,status\r\n" +
			"AAPL,Apple Inc,NASDAQ,Stock,1980-12-12,null,Active\r\n" +
			"SPY,SPDR S&P 500,NYSE ARCA,ETF,1993-01-29,null,Active\r\n"))
	})

	rows, err := client.ListingStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, models.ListingRow{
		Symbol:        "AAPL",
		Name:          "Apple Inc",
		Exchange:      "NASDAQ",
		AssetType:     "Stock",
		Status:        "Active",
		IPODate:       "1980-12-12",
		DelistingDate: "null",
	}, rows[0])
	assert.Equal(t, "ETF", rows[1].AssetType)
}

func TestListingStatus_JSONErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Error Message": "the parameter apikey is invalid or missing"}`))
	})

	_, err := client.ListingStatus(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "apikey is invalid")
	assert.Equal(t, "LISTING_STATUS", apiErr.Function)
}

func TestListingStatus_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := client.ListingStatus(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestListingStatus_MissingAPIKey(t *testing.T) {
	client := NewClient("")

	_, err := client.ListingStatus(context.Background())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestParseListingCSV_ColumnOrderAndShortRows(t *testing.T) {
	input := "status,exchange,symbol,assetType\nActive,NYSE,IBM,Stock\nActive,ASX\n"

	rows, err := ParseListingCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "IBM", rows[0].Symbol)
	assert.Equal(t, "NYSE", rows[0].Exchange)
	assert.Empty(t, rows[0].Name)
	assert.Empty(t, rows[1].Symbol)
}

func TestParseListingCSV_MissingColumn(t *testing.T) {
	_, err := ParseListingCSV(strings.NewReader("symbol,name\nA,B\n"))
	assert.ErrorContains(t, err, "exchange")
}

func TestDailySeries_Outcomes(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantOutcome models.QuoteOutcome
		wantBars    int
	}{
		{
			name:   "series",
			status: http.StatusOK,
			body: `{"Meta Data": {"2. Symbol": "IBM"}, "Time Series (Daily)": {
				"2024-01-11": {"1. open": "161.0", "2. high": "162.5", "3. low": "160.1", "4. close": "162.2", "5. volume": "3500000"},
				"2024-01-12": {"1. open": "162.2", "2. high": "163.0", "3. low": "161.5", "4. close": "162.9", "5. volume": "4100000"}}}`,
			wantOutcome: models.QuoteSeries,
			wantBars:    2,
		},
		{
			name:        "unknown symbol",
			status:      http.StatusOK,
			body:        `{"Error Message": "Invalid API call."}`,
			wantOutcome: models.QuoteDataError,
		},
		{
			name:        "note throttling",
			status:      http.StatusOK,
			body:        `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`,
			wantOutcome: models.QuoteRateLimited,
		},
		{
			name:        "information throttling",
			status:      http.StatusOK,
			body:        `{"Information": "We have detected your API key and our standard API rate limit is 25 requests per day."}`,
			wantOutcome: models.QuoteRateLimited,
		},
		{
			name:        "information premium endpoint",
			status:      http.StatusOK,
			body:        `{"Information": "This is a premium endpoint."}`,
			wantOutcome: models.QuoteDataError,
		},
		{
			name:        "empty series",
			status:      http.StatusOK,
			body:        `{"Time Series (Daily)": {}}`,
			wantOutcome: models.QuoteDataError,
		},
		{
			name:        "malformed json",
			status:      http.StatusOK,
			body:        `<html>oops</html>`,
			wantOutcome: models.QuoteDataError,
		},
		{
			name:        "http 429",
			status:      http.StatusTooManyRequests,
			body:        `slow down`,
			wantOutcome: models.QuoteRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "TIME_SERIES_DAILY", r.URL.Query().Get("function"))
				assert.Equal(t, "IBM", r.URL.Query().Get("symbol"))
				assert.Equal(t, "compact", r.URL.Query().Get("outputsize"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			quote, err := client.DailySeries(context.Background(), models.ListedInstrument{Symbol: "IBM", Exchange: models.ExchangeNYSE})
			require.NoError(t, err)
			assert.Equal(t, "IBM", quote.Symbol)
			assert.Equal(t, tt.wantOutcome, quote.Outcome)
			assert.Len(t, quote.Bars, tt.wantBars)
		})
	}
}

func TestDailySeries_BarsNewestFirst(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Time Series (Daily)": {
			"2023-12-29": {"1. open": "1", "2. high": "1", "3. low": "1", "4. close": "1", "5. volume": "10"},
			"2024-01-02": {"1. open": "2", "2. high": "2", "3. low": "2", "4. close": "2", "5. volume": "20"}}}`))
	})

	quote, err := client.DailySeries(context.Background(), models.ListedInstrument{Symbol: "X", Exchange: models.ExchangeNYSE})
	require.NoError(t, err)
	require.Len(t, quote.Bars, 2)
	assert.Equal(t, "2024-01-02", quote.Bars[0].Date)
	assert.Equal(t, "20", quote.Bars[0].Volume)
	assert.Equal(t, "2023-12-29", quote.Bars[1].Date)
}

func TestDailySeries_TransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.DailySeries(context.Background(), models.ListedInstrument{Symbol: "IBM", Exchange: models.ExchangeNYSE})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}
