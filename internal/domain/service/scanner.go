package service

import (
	"time"

	"VolScan/internal/domain/models"
)

// Scorer turns a bar series into a ScanResult.
// Computation skips are reported as models.ErrInsufficientBars or
// models.ErrDegenerateVariance.
type Scorer interface {
	Evaluate(ticker string, bars []models.PriceBar) (models.ScanResult, error)
}

// Clock abstracts wall time for cooldown bookkeeping.
type Clock func() time.Time
