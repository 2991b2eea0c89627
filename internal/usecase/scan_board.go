package usecase

import (
	"math"
	"sort"
	"sync"
	"time"

	"VolScan/internal/domain/models"
)

// ScanBoard keeps the latest cycle's results and a bounded history of alerts
// for read-only consumers such as the HTTP API.
type ScanBoard struct {
	mu       sync.RWMutex
	results  []models.ScanResult
	report   models.CycleReport
	alerts   []models.Alert
	next     int
	full     bool
	universe int
}

// NewScanBoard keeps at most alertCap alerts.
func NewScanBoard(alertCap int) *ScanBoard {
	if alertCap < 1 {
		alertCap = 1
	}
	return &ScanBoard{alerts: make([]models.Alert, alertCap)}
}

// PublishResults replaces the latest results.
func (b *ScanBoard) PublishResults(results []models.ScanResult) {
	cp := make([]models.ScanResult, len(results))
	copy(cp, results)
	b.mu.Lock()
	b.results = cp
	b.mu.Unlock()
}

func (b *ScanBoard) RecordAlert(a models.Alert) {
	b.mu.Lock()
	b.alerts[b.next] = a
	b.next = (b.next + 1) % len(b.alerts)
	if b.next == 0 {
		b.full = true
	}
	b.mu.Unlock()
}

func (b *ScanBoard) SetReport(r models.CycleReport) {
	b.mu.Lock()
	b.report = r
	b.mu.Unlock()
}

func (b *ScanBoard) SetUniverseSize(n int) {
	b.mu.Lock()
	b.universe = n
	b.mu.Unlock()
}

func (b *ScanBoard) Report() models.CycleReport {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.report
}

func (b *ScanBoard) UniverseSize() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.universe
}

// Latest returns up to limit results with |Z| >= minAbsZ, largest |Z| first.
func (b *ScanBoard) Latest(limit int, minAbsZ float64) []models.ScanResult {
	b.mu.RLock()
	out := make([]models.ScanResult, 0, len(b.results))
	for _, r := range b.results {
		if math.Abs(r.ZScore) >= minAbsZ {
			out = append(out, r)
		}
	}
	b.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].ZScore) > math.Abs(out[j].ZScore)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Alerts returns up to limit alerts newer than since, newest first.
func (b *ScanBoard) Alerts(limit int, since time.Time) []models.Alert {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := b.next
	if b.full {
		n = len(b.alerts)
	}
	out := make([]models.Alert, 0, n)
	for i := 1; i <= n; i++ {
		a := b.alerts[(b.next-i+len(b.alerts))%len(b.alerts)]
		if !since.IsZero() && !a.Timestamp.After(since) {
			continue
		}
		out = append(out, a)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
