package models

// QuoteOutcome tags the response of a quote provider for one symbol.
type QuoteOutcome int

const (
	// QuoteSeries carries a daily series.
	QuoteSeries QuoteOutcome = iota
	// QuoteDataError is a hard data error: unknown symbol or malformed response. Not retried.
	QuoteDataError
	// QuoteRateLimited is a soft throttling notice. The same request may be re-issued later.
	QuoteRateLimited
)

func (o QuoteOutcome) String() string {
	switch o {
	case QuoteSeries:
		return "series"
	case QuoteDataError:
		return "data_error"
	case QuoteRateLimited:
		return "rate_limited"
	}
	return "unknown"
}

// RawBar is a daily OHLCV entry as returned by a provider, unparsed.
type RawBar struct {
	Date   string
	Open   string
	High   string
	Low    string
	Close  string
	Volume string
}

// Quote is the tagged outcome of one daily-series request.
type Quote struct {
	Symbol  string
	Outcome QuoteOutcome
	Bars    []RawBar
	Message string
}
