package usecase

import (
	"math"
	"time"

	"VolScan/internal/domain/models"
	"VolScan/internal/domain/service"
)

// AlertOption configures AlertEngine.
type AlertOption func(*AlertEngine)

// WithClock overrides the engine's time source.
func WithClock(now service.Clock) AlertOption {
	return func(e *AlertEngine) { e.now = now }
}

// AlertEngine decides whether a ScanResult fires an alert.
type AlertEngine struct {
	threshold float64
	ledger    *CooldownLedger
	now       service.Clock
}

func NewAlertEngine(threshold float64, ledger *CooldownLedger, opts ...AlertOption) *AlertEngine {
	e := &AlertEngine{threshold: threshold, ledger: ledger, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate fires when |Z| exceeds the threshold and the ticker is out of
// cooldown. Firing stamps the ledger with the current time whether or not the
// alert is later delivered.
func (e *AlertEngine) Evaluate(r models.ScanResult) (models.Alert, bool) {
	if !(math.Abs(r.ZScore) > e.threshold) {
		return models.Alert{}, false
	}
	now := e.now()
	if !e.ledger.TryAcquire(r.Ticker, now) {
		return models.Alert{}, false
	}
	return NewAlert(r, now), true
}

func (e *AlertEngine) Threshold() float64 { return e.threshold }

func (e *AlertEngine) Ledger() *CooldownLedger { return e.ledger }

// Now is the engine's current time.
func (e *AlertEngine) Now() time.Time { return e.now() }

// NewAlert builds the alert payload for r at time at.
func NewAlert(r models.ScanResult, at time.Time) models.Alert {
	dir := models.DirectionDown
	if r.PercentMove > 0 {
		dir = models.DirectionUp
	}
	sev := models.SeverityWarning
	if math.Abs(r.ZScore) > models.CriticalZ {
		sev = models.SeverityCritical
	}
	return models.Alert{
		Ticker:      r.Ticker,
		ZScore:      r.ZScore,
		PercentMove: r.PercentMove,
		Direction:   dir,
		Severity:    sev,
		Timestamp:   at,
		LatestPrice: r.LatestPrice,
	}
}
