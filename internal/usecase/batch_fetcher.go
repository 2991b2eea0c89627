package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"VolScan/internal/domain/models"
	drepo "VolScan/internal/domain/repository"
	icache "VolScan/internal/service/cache"
	applogger "VolScan/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// FetchOutcome is the settled result of fetching one ticker.
type FetchOutcome struct {
	Ticker   string
	Bars     []models.PriceBar
	Err      error
	Attempts int
	Cached   bool
}

// HasData reports whether the outcome carries a usable series.
func (o FetchOutcome) HasData() bool {
	return o.Err == nil && len(o.Bars) > 0
}

// FetcherOption configures BatchFetcher.
type FetcherOption func(*FetcherConfig)

// FetcherConfig holds batch fetch settings.
type FetcherConfig struct {
	BatchSize         int
	MaxAttempts       int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	Jitter            float64
	BatchDelay        time.Duration
	RequestsPerSecond float64
	Interval          string
	Lookback          string
}

// WithBatchSize sets the concurrency cap and batch size.
func WithBatchSize(n int) FetcherOption {
	return func(c *FetcherConfig) { c.BatchSize = n }
}

// WithRetry sets total attempts per ticker and the capped exponential delay.
func WithRetry(maxAttempts int, baseDelay, maxDelay time.Duration) FetcherOption {
	return func(c *FetcherConfig) {
		c.MaxAttempts = maxAttempts
		c.BaseDelay = baseDelay
		c.MaxDelay = maxDelay
	}
}

// WithJitter sets the randomization factor applied to retry delays.
func WithJitter(factor float64) FetcherOption {
	return func(c *FetcherConfig) { c.Jitter = factor }
}

// WithBatchDelay sets the pause between consecutive batches.
func WithBatchDelay(d time.Duration) FetcherOption {
	return func(c *FetcherConfig) { c.BatchDelay = d }
}

// WithRequestRate limits source calls per second across all workers. Zero disables.
func WithRequestRate(rps float64) FetcherOption {
	return func(c *FetcherConfig) { c.RequestsPerSecond = rps }
}

// WithBarSpec sets the bar interval and lookback passed to the source.
func WithBarSpec(interval, lookback string) FetcherOption {
	return func(c *FetcherConfig) {
		c.Interval = interval
		c.Lookback = lookback
	}
}

// BatchFetcher retrieves bars for a universe with at most BatchSize fetches in flight.
type BatchFetcher struct {
	src     drepo.MarketDataSource
	cache   *icache.BarCache
	metrics drepo.Metrics
	logger  *applogger.Logger
	cfg     FetcherConfig
	limiter *rate.Limiter
}

// NewBatchFetcher creates a fetcher. cache may be nil.
func NewBatchFetcher(
	src drepo.MarketDataSource,
	cache *icache.BarCache,
	metrics drepo.Metrics,
	logger *applogger.Logger,
	opts ...FetcherOption,
) *BatchFetcher {
	cfg := FetcherConfig{
		BatchSize:   50,
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    30 * time.Second,
		BatchDelay:  time.Second,
		Interval:    "5m",
		Lookback:    "5d",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	f := &BatchFetcher{src: src, cache: cache, metrics: metrics, logger: logger, cfg: cfg}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return f
}

// FetchAll fetches every ticker and returns one outcome per ticker.
// Tickers are processed in consecutive batches; each batch settles fully
// before the next starts.
func (f *BatchFetcher) FetchAll(ctx context.Context, tickers []string) map[string]FetchOutcome {
	out := make(map[string]FetchOutcome, len(tickers))
	var mu sync.Mutex

	for start := 0; start < len(tickers); start += f.cfg.BatchSize {
		if start > 0 && f.cfg.BatchDelay > 0 {
			if err := sleepCtx(ctx, f.cfg.BatchDelay); err != nil {
				markCancelled(out, tickers[start:], err)
				break
			}
		}
		if err := ctx.Err(); err != nil {
			markCancelled(out, tickers[start:], err)
			break
		}

		end := start + f.cfg.BatchSize
		if end > len(tickers) {
			end = len(tickers)
		}

		var wg sync.WaitGroup
		for _, ticker := range tickers[start:end] {
			wg.Add(1)
			go func(ticker string) {
				defer wg.Done()
				res := f.fetchOne(ctx, ticker)
				mu.Lock()
				out[ticker] = res
				mu.Unlock()
			}(ticker)
		}
		wg.Wait()
	}
	return out
}

func (f *BatchFetcher) fetchOne(ctx context.Context, ticker string) FetchOutcome {
	if bars, ok := f.cache.Get(ticker, f.cfg.Interval, f.cfg.Lookback); ok {
		f.metrics.RecordFetch("cached")
		return FetchOutcome{Ticker: ticker, Bars: bars, Cached: true}
	}

	attempts := 0
	var bars []models.PriceBar
	op := func() error {
		attempts++
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		got, err := f.src.Fetch(ctx, ticker, f.cfg.Interval, f.cfg.Lookback)
		if err != nil {
			if models.IsTransient(err) && ctx.Err() == nil {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(got) == 0 {
			return backoff.Permanent(models.NewPermanentError(ticker, models.ErrNoData))
		}
		bars = got
		return nil
	}
	notify := func(err error, wait time.Duration) {
		f.metrics.RecordRetry()
		f.logger.Debug("fetch retry",
			applogger.String("ticker", ticker),
			applogger.Int("attempt", attempts),
			applogger.Duration("wait_ms", wait),
			applogger.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, f.retryPolicy(ctx), notify); err != nil {
		f.metrics.RecordFetch("no_data")
		if !errors.Is(err, models.ErrNoData) {
			err = fmt.Errorf("fetch %s after %d attempts: %w", ticker, attempts, err)
		}
		return FetchOutcome{Ticker: ticker, Err: err, Attempts: attempts}
	}

	f.cache.Put(ticker, f.cfg.Interval, f.cfg.Lookback, bars)
	f.metrics.RecordFetch("ok")
	return FetchOutcome{Ticker: ticker, Bars: bars, Attempts: attempts}
}

// retryPolicy doubles the delay from BaseDelay up to MaxDelay and stops after
// MaxAttempts total attempts.
func (f *BatchFetcher) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(f.cfg.BaseDelay),
		backoff.WithMaxInterval(f.cfg.MaxDelay),
		backoff.WithMultiplier(2),
		backoff.WithRandomizationFactor(f.cfg.Jitter),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.cfg.MaxAttempts-1)), ctx)
}

func markCancelled(out map[string]FetchOutcome, tickers []string, err error) {
	for _, t := range tickers {
		if _, done := out[t]; !done {
			out[t] = FetchOutcome{Ticker: t, Err: fmt.Errorf("fetch %s: %w", t, err)}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
