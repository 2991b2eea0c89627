package usecase

import (
	"fmt"

	"VolScan/internal/domain/models"
	"VolScan/internal/domain/service"
	"VolScan/internal/services/features"
)

// VolatilityEngine scores the latest log return of a series against the
// trailing window of returns that ends with it.
type VolatilityEngine struct {
	window  int
	minBars int
}

var _ service.Scorer = (*VolatilityEngine)(nil)

// MinSampleSize is the fewest windowed returns a Z-score is computed from.
const MinSampleSize = 50

// NewVolatilityEngine creates an engine over a window of returns. Tickers whose
// series has fewer than minBars returns, or whose window holds fewer than
// MinSampleSize returns, are skipped.
func NewVolatilityEngine(window, minBars int) *VolatilityEngine {
	return &VolatilityEngine{window: window, minBars: minBars}
}

// Evaluate computes the ScanResult for one ticker.
func (e *VolatilityEngine) Evaluate(ticker string, bars []models.PriceBar) (models.ScanResult, error) {
	returns := features.ComputeLogReturns(bars)
	if len(returns) < 2 || len(returns) < e.minBars {
		return models.ScanResult{}, fmt.Errorf("%s: %d returns, need %d: %w", ticker, len(returns), e.minBars, models.ErrInsufficientBars)
	}
	mean, std, n := features.TrailingStats(returns, e.window)
	if n < MinSampleSize {
		return models.ScanResult{}, fmt.Errorf("%s: window of %d returns, need %d: %w", ticker, n, MinSampleSize, models.ErrInsufficientBars)
	}

	latest := returns[len(returns)-1]
	z, ok := features.ZScore(latest, mean, std)
	if !ok {
		return models.ScanResult{}, fmt.Errorf("%s: std %g: %w", ticker, std, models.ErrDegenerateVariance)
	}

	last := bars[len(bars)-1]
	prev := bars[len(bars)-2]
	return models.ScanResult{
		Ticker:        ticker,
		LatestReturn:  latest,
		ZScore:        z,
		LatestPrice:   last.Close,
		PreviousClose: prev.Close,
		PercentMove:   features.PercentMove(prev.Close, last.Close),
		Timestamp:     last.Timestamp,
		Volatility: models.VolatilityState{
			Mean:       mean,
			StdDev:     std,
			SampleSize: n,
			Window:     e.window,
		},
	}, nil
}

// Window is the configured window in returns.
func (e *VolatilityEngine) Window() int { return e.window }
