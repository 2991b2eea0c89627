package repository

import (
	"context"

	"VolScan/internal/domain/models"
)

// MarketDataSource returns bars for a ticker, oldest first.
// Failures are *models.DataError so callers can tell transient from permanent.
type MarketDataSource interface {
	Fetch(ctx context.Context, ticker, interval, lookback string) ([]models.PriceBar, error)
}

// Notifier delivers a rendered message to a destination.
type Notifier interface {
	Send(ctx context.Context, destination, text string) error
}

// UniverseProvider produces the set of tickers to scan.
type UniverseProvider interface {
	Name() string
	Provide(ctx context.Context) ([]string, error)
}

// ScanStore receives scan result snapshots. Stores are write-only.
type ScanStore interface {
	Name() string
	SaveResults(ctx context.Context, cycle int64, results []models.ScanResult) error
}

// AlertPublisher receives every fired alert in addition to the notifier.
type AlertPublisher interface {
	Name() string
	PublishAlert(ctx context.Context, alert models.Alert) error
}

type Metrics interface {
	RecordFetch(result string)
	RecordRetry()
	RecordSkip(reason string)
	RecordAlert(direction string)
	RecordNotifyError(channel string)
	RecordSinkError(sink string)
	RecordCycle(seconds float64, universe int)
	RecordState(state string)
}
