package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrDataError marks a hard provider error for a symbol: unknown symbol or malformed response.
	ErrDataError = errors.New("quote data error")

	// ErrZeroVolume marks a bar with no trading volume. Such bars are discarded.
	ErrZeroVolume = errors.New("zero volume")

	// ErrRateLimitExhausted is reported when a symbol stays throttled after every allowed retry.
	ErrRateLimitExhausted = errors.New("rate limit retries exhausted")
)

// SkipReason classifies why a symbol produced no bar.
type SkipReason int

const (
	SkipDataError SkipReason = iota
	SkipNoTradingDay
	SkipMalformed
	SkipZeroVolume
	SkipRateLimited
	SkipTransport
)

func (r SkipReason) String() string {
	switch r {
	case SkipDataError:
		return "data_error"
	case SkipNoTradingDay:
		return "no_trading_day"
	case SkipMalformed:
		return "malformed_record"
	case SkipZeroVolume:
		return "zero_volume"
	case SkipRateLimited:
		return "rate_limit_exhausted"
	case SkipTransport:
		return "transport_failure"
	}
	return "unknown"
}

// MalformedRecordError is returned when a bar field cannot be parsed.
type MalformedRecordError struct {
	Symbol string
	Field  string
	Value  string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s for %s: %q: %v", e.Field, e.Symbol, e.Value, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failed quote request.
type TransportError struct {
	Symbol string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("quote request for %s failed: %v", e.Symbol, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
