package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"VolScan/internal/domain/models"
	icache "VolScan/internal/service/cache"

	"github.com/cenkalti/backoff/v4"
)

func testFetcher(src sourceFunc, m *fakeMetrics, opts ...FetcherOption) *BatchFetcher {
	base := []FetcherOption{
		WithBatchSize(5),
		WithRetry(3, time.Millisecond, 4*time.Millisecond),
		WithBatchDelay(0),
	}
	return NewBatchFetcher(src, nil, m, nopLogger(), append(base, opts...)...)
}

func TestBatchFetcherConcurrencyCap(t *testing.T) {
	const limit = 5
	var inFlight, peak atomic.Int32
	src := sourceFunc(func(ctx context.Context, ticker string) ([]models.PriceBar, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(3 * time.Millisecond)
		inFlight.Add(-1)
		return flatBars(3, 10), nil
	})

	tickers := make([]string, 23)
	for i := range tickers {
		tickers[i] = fmt.Sprintf("T%02d", i)
	}

	f := testFetcher(src, newFakeMetrics(), WithBatchSize(limit))
	out := f.FetchAll(context.Background(), tickers)

	if got := peak.Load(); got > limit {
		t.Fatalf("peak in-flight %d exceeds cap %d", got, limit)
	}
	if len(out) != len(tickers) {
		t.Fatalf("outcomes = %d, want %d", len(out), len(tickers))
	}
	for _, tk := range tickers {
		if !out[tk].HasData() {
			t.Fatalf("%s missing data: %v", tk, out[tk].Err)
		}
	}
}

func TestBatchFetcherRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	src := sourceFunc(func(ctx context.Context, ticker string) ([]models.PriceBar, error) {
		if calls.Add(1) <= 2 {
			return nil, models.NewTransientError(ticker, errTransient)
		}
		return flatBars(4, 10), nil
	})

	m := newFakeMetrics()
	out := testFetcher(src, m).FetchAll(context.Background(), []string{"AAPL"})

	o := out["AAPL"]
	if !o.HasData() {
		t.Fatalf("expected data, got %v", o.Err)
	}
	if o.Attempts != 3 || calls.Load() != 3 {
		t.Fatalf("attempts = %d calls = %d, want 3", o.Attempts, calls.Load())
	}
	if m.retries != 2 {
		t.Fatalf("retries = %d, want 2", m.retries)
	}
}

func TestBatchFetcherExhaustedRetriesYieldNoData(t *testing.T) {
	var calls sync.Map
	src := sourceFunc(func(ctx context.Context, ticker string) ([]models.PriceBar, error) {
		v, _ := calls.LoadOrStore(ticker, new(atomic.Int32))
		v.(*atomic.Int32).Add(1)
		if ticker == "BAD" {
			return nil, models.NewTransientError(ticker, errTransient)
		}
		return flatBars(4, 10), nil
	})

	out := testFetcher(src, newFakeMetrics()).FetchAll(context.Background(), []string{"BAD", "GOOD"})

	bad := out["BAD"]
	if bad.HasData() || bad.Err == nil {
		t.Fatalf("BAD should have no data")
	}
	if !errors.Is(bad.Err, errTransient) {
		t.Fatalf("cause lost: %v", bad.Err)
	}
	if bad.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", bad.Attempts)
	}
	if !out["GOOD"].HasData() {
		t.Fatalf("GOOD must not be affected by BAD")
	}
}

func TestBatchFetcherPermanentAndEmptyNotRetried(t *testing.T) {
	var calls atomic.Int32
	src := sourceFunc(func(ctx context.Context, ticker string) ([]models.PriceBar, error) {
		calls.Add(1)
		switch ticker {
		case "GONE":
			return nil, models.NewPermanentError(ticker, models.ErrUnknownSymbol)
		case "EMPTY":
			return nil, nil
		default:
			return nil, errors.New("untyped failure")
		}
	})

	out := testFetcher(src, newFakeMetrics()).FetchAll(context.Background(), []string{"GONE", "EMPTY", "ODD"})

	if calls.Load() != 3 {
		t.Fatalf("calls = %d, permanent failures must not retry", calls.Load())
	}
	if !errors.Is(out["GONE"].Err, models.ErrUnknownSymbol) {
		t.Fatalf("GONE err = %v", out["GONE"].Err)
	}
	if !errors.Is(out["EMPTY"].Err, models.ErrNoData) {
		t.Fatalf("EMPTY err = %v", out["EMPTY"].Err)
	}
	if out["ODD"].HasData() {
		t.Fatalf("ODD should have no data")
	}
}

func TestBatchFetcherUsesCache(t *testing.T) {
	var calls atomic.Int32
	src := sourceFunc(func(ctx context.Context, ticker string) ([]models.PriceBar, error) {
		calls.Add(1)
		return flatBars(4, 10), nil
	})

	m := newFakeMetrics()
	f := NewBatchFetcher(src, icache.NewBarCache(time.Minute), m, nopLogger(), WithBatchDelay(0))
	f.FetchAll(context.Background(), []string{"AAPL"})
	out := f.FetchAll(context.Background(), []string{"AAPL"})

	if calls.Load() != 1 {
		t.Fatalf("source calls = %d, want 1", calls.Load())
	}
	if !out["AAPL"].Cached || !out["AAPL"].HasData() {
		t.Fatalf("second fetch should be served from cache")
	}
	if m.fetches["cached"] != 1 || m.fetches["ok"] != 1 {
		t.Fatalf("fetch metrics = %v", m.fetches)
	}
}

func TestBatchFetcherCancelledContext(t *testing.T) {
	src := sourceFunc(func(ctx context.Context, ticker string) ([]models.PriceBar, error) {
		return flatBars(4, 10), nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := testFetcher(src, newFakeMetrics()).FetchAll(ctx, []string{"A", "B"})
	for _, tk := range []string{"A", "B"} {
		if !errors.Is(out[tk].Err, context.Canceled) {
			t.Fatalf("%s err = %v", tk, out[tk].Err)
		}
	}
}

func TestBatchFetcherRetryPolicyDoublesAndCaps(t *testing.T) {
	f := NewBatchFetcher(nil, nil, newFakeMetrics(), nopLogger(),
		WithRetry(5, 10*time.Millisecond, 25*time.Millisecond),
		WithJitter(0),
	)
	b := f.retryPolicy(context.Background())

	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 25 * time.Millisecond, 25 * time.Millisecond}
	for i, w := range want {
		if got := b.NextBackOff(); got != w {
			t.Fatalf("delay %d = %v, want %v", i+1, got, w)
		}
	}
	if got := b.NextBackOff(); got != backoff.Stop {
		t.Fatalf("after %d retries got %v, want Stop", len(want), got)
	}

	single := NewBatchFetcher(nil, nil, newFakeMetrics(), nopLogger(), WithRetry(1, time.Millisecond, time.Millisecond))
	if got := single.retryPolicy(context.Background()).NextBackOff(); got != backoff.Stop {
		t.Fatalf("one attempt must not retry, got %v", got)
	}
}

func TestBatchFetcherPausesBetweenBatches(t *testing.T) {
	const delay = 25 * time.Millisecond
	var mu sync.Mutex
	started := map[string]time.Time{}
	src := sourceFunc(func(ctx context.Context, ticker string) ([]models.PriceBar, error) {
		mu.Lock()
		started[ticker] = time.Now()
		mu.Unlock()
		return flatBars(4, 10), nil
	})

	tickers := []string{"A", "B", "C", "D", "E", "F"}
	f := testFetcher(src, newFakeMetrics(), WithBatchSize(2), WithBatchDelay(delay))
	f.FetchAll(context.Background(), tickers)

	batchStart := func(i int) time.Time {
		a, b := started[tickers[i]], started[tickers[i+1]]
		if b.Before(a) {
			return b
		}
		return a
	}
	batchEnd := func(i int) time.Time {
		a, b := started[tickers[i]], started[tickers[i+1]]
		if b.After(a) {
			return b
		}
		return a
	}
	for i := 2; i < len(tickers); i += 2 {
		if gap := batchStart(i).Sub(batchEnd(i - 2)); gap < delay {
			t.Fatalf("batch at %d started %v after the previous one, want >= %v", i, gap, delay)
		}
	}
}

func TestBatchFetcherCancelDuringPause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := sourceFunc(func(context.Context, string) ([]models.PriceBar, error) {
		cancel()
		return flatBars(4, 10), nil
	})

	f := testFetcher(src, newFakeMetrics(), WithBatchSize(1), WithBatchDelay(time.Hour))
	out := f.FetchAll(ctx, []string{"A", "B"})
	if !out["A"].HasData() {
		t.Fatalf("first batch should complete: %v", out["A"].Err)
	}
	if !errors.Is(out["B"].Err, context.Canceled) {
		t.Fatalf("B err = %v, want context.Canceled", out["B"].Err)
	}
}
