package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData marks a fetch that produced no usable bars.
	ErrNoData = errors.New("no data")
	// ErrUnknownSymbol is returned by sources for tickers they do not know.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrMalformedResponse is returned when a source payload cannot be used.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrInsufficientBars is a computation skip: too few returns in the window.
	ErrInsufficientBars = errors.New("insufficient bars")
	// ErrDegenerateVariance is a computation skip: zero or undefined std.
	ErrDegenerateVariance = errors.New("degenerate variance")

	// ErrNoUniverse means no ticker universe provider succeeded.
	ErrNoUniverse = errors.New("no ticker universe available")
)

// DataError is a market data failure for one ticker.
type DataError struct {
	Ticker    string
	Transient bool
	Err       error
}

func (e *DataError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s data error for %s: %v", kind, e.Ticker, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// NewTransientError wraps err as a retryable DataError.
func NewTransientError(ticker string, err error) *DataError {
	return &DataError{Ticker: ticker, Transient: true, Err: err}
}

// NewPermanentError wraps err as a non-retryable DataError.
func NewPermanentError(ticker string, err error) *DataError {
	return &DataError{Ticker: ticker, Err: err}
}

// IsTransient reports whether err is a retryable DataError.
func IsTransient(err error) bool {
	var de *DataError
	return errors.As(err, &de) && de.Transient
}

// IsComputationSkip reports whether err excludes a ticker without being a failure.
func IsComputationSkip(err error) bool {
	return errors.Is(err, ErrInsufficientBars) || errors.Is(err, ErrDegenerateVariance)
}
