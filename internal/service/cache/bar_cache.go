package cache

import (
	"time"

	"VolScan/internal/domain/models"
)

// BarCache holds bar series fetched during the current cycle. The scheduler
// purges it after each cycle, so it only serves repeats within one cycle,
// such as a duplicated ticker or a manual re-run.
type BarCache struct {
	ttl   time.Duration
	store *TTLCache[[]models.PriceBar]
}

// NewBarCache creates a cache whose entries live for ttl.
// A non-positive ttl disables caching.
func NewBarCache(ttl time.Duration) *BarCache {
	return &BarCache{ttl: ttl, store: NewTTLCache[[]models.PriceBar]()}
}

func barKey(ticker, interval, lookback string) string {
	return ticker + "|" + interval + "|" + lookback
}

func (c *BarCache) Get(ticker, interval, lookback string) ([]models.PriceBar, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	return c.store.Get(barKey(ticker, interval, lookback))
}

func (c *BarCache) Put(ticker, interval, lookback string, bars []models.PriceBar) {
	if c == nil || c.ttl <= 0 || len(bars) == 0 {
		return
	}
	c.store.Set(barKey(ticker, interval, lookback), bars, c.ttl)
}

// Purge removes expired series.
func (c *BarCache) Purge() int {
	if c == nil {
		return 0
	}
	return c.store.Purge()
}

func (c *BarCache) Len() int {
	if c == nil {
		return 0
	}
	return c.store.Len()
}

// withClock is used by tests in this package.
func (c *BarCache) withClock(now func() time.Time) *BarCache {
	c.store.WithClock(now)
	return c
}
