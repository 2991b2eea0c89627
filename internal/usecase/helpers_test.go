package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"VolScan/internal/domain/models"
	applogger "VolScan/pkg/logger"
)

type fakeMetrics struct {
	mu      sync.Mutex
	fetches map[string]int
	skips   map[string]int
	retries int
	alerts  int
	notify  int
	sinks   int
	cycles  int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{fetches: map[string]int{}, skips: map[string]int{}}
}

func (m *fakeMetrics) RecordFetch(result string) {
	m.mu.Lock()
	m.fetches[result]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordRetry() {
	m.mu.Lock()
	m.retries++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordSkip(reason string) {
	m.mu.Lock()
	m.skips[reason]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordAlert(string) {
	m.mu.Lock()
	m.alerts++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordNotifyError(string) {
	m.mu.Lock()
	m.notify++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordSinkError(string) {
	m.mu.Lock()
	m.sinks++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordCycle(float64, int) {
	m.mu.Lock()
	m.cycles++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordState(string) {}

// sourceFunc adapts a function to MarketDataSource.
type sourceFunc func(ctx context.Context, ticker string) ([]models.PriceBar, error)

func (f sourceFunc) Fetch(ctx context.Context, ticker, _, _ string) ([]models.PriceBar, error) {
	return f(ctx, ticker)
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *fakeNotifier) Send(_ context.Context, _ string, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return n.err
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

type staticUniverse struct {
	tickers []string
	err     error
}

func (u staticUniverse) Name() string { return "test" }

func (u staticUniverse) Provide(context.Context) ([]string, error) {
	return u.tickers, u.err
}

// stubScorer returns a preset Z-score per ticker.
type stubScorer struct {
	mu sync.Mutex
	z  map[string]float64
}

func (s *stubScorer) set(ticker string, z float64) {
	s.mu.Lock()
	s.z[ticker] = z
	s.mu.Unlock()
}

func (s *stubScorer) Evaluate(ticker string, bars []models.PriceBar) (models.ScanResult, error) {
	s.mu.Lock()
	z, ok := s.z[ticker]
	s.mu.Unlock()
	if !ok {
		return models.ScanResult{}, models.ErrInsufficientBars
	}
	return models.ScanResult{
		Ticker:      ticker,
		ZScore:      z,
		PercentMove: z / 10,
		LatestPrice: bars[len(bars)-1].Close,
	}, nil
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var errTransient = errors.New("rate limited")

func flatBars(n int, price float64) []models.PriceBar {
	t0 := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	out := make([]models.PriceBar, n)
	for i := range out {
		out[i] = models.PriceBar{Timestamp: t0.Add(time.Duration(i) * 5 * time.Minute), Close: price}
	}
	return out
}

// barsFromReturns builds a close series whose log returns are exactly rs.
func barsFromReturns(start float64, rs []float64) []models.PriceBar {
	t0 := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	out := make([]models.PriceBar, len(rs)+1)
	price := start
	out[0] = models.PriceBar{Timestamp: t0, Close: price}
	for i, r := range rs {
		price *= math.Exp(r)
		out[i+1] = models.PriceBar{Timestamp: t0.Add(time.Duration(i+1) * 5 * time.Minute), Close: price}
	}
	return out
}

func nopLogger() *applogger.Logger { return applogger.NewNop() }
