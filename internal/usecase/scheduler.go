package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"VolScan/internal/domain/models"
	drepo "VolScan/internal/domain/repository"
	"VolScan/internal/domain/service"
	applogger "VolScan/pkg/logger"
)

// State is the scan scheduler's lifecycle stage.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateComputing
	StateAlerting
	StateSleeping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateComputing:
		return "computing"
	case StateAlerting:
		return "alerting"
	case StateSleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}

// Fetcher retrieves bars for a whole universe.
type Fetcher interface {
	FetchAll(ctx context.Context, tickers []string) map[string]FetchOutcome
}

// Stats are cumulative scheduler counters.
type Stats struct {
	State      string `json:"state"`
	ScanCount  int64  `json:"scan_count"`
	AlertsSent int64  `json:"alerts_sent"`
	Errors     int64  `json:"errors"`
}

// SchedulerOption configures ScanScheduler.
type SchedulerOption func(*ScanScheduler)

// WithInterval sets the sleep between cycles.
func WithInterval(d time.Duration) SchedulerOption {
	return func(s *ScanScheduler) { s.interval = d }
}

// WithUniverseRefresh rebuilds the universe when it is older than d. Zero keeps it forever.
func WithUniverseRefresh(d time.Duration) SchedulerOption {
	return func(s *ScanScheduler) { s.refresh = d }
}

// WithScanStores adds snapshot sinks that receive every cycle's results.
func WithScanStores(stores ...drepo.ScanStore) SchedulerOption {
	return func(s *ScanScheduler) { s.stores = append(s.stores, stores...) }
}

// WithCache lets the scheduler purge expired bars between cycles.
func WithCache(p interface{ Purge() int }) SchedulerOption {
	return func(s *ScanScheduler) { s.cache = p }
}

// ScanScheduler runs fetch, compute and alert cycles back to back, sleeping
// for the interval between them. Cycles never overlap.
type ScanScheduler struct {
	universeSrc drepo.UniverseProvider
	fetcher     Fetcher
	scorer      service.Scorer
	alerts      *AlertEngine
	dispatcher  *AlertDispatcher
	board       *ScanBoard
	stores      []drepo.ScanStore
	cache       interface{ Purge() int }
	metrics     drepo.Metrics
	logger      *applogger.Logger
	interval    time.Duration
	refresh     time.Duration

	state      atomic.Int32
	cycle      atomic.Int64
	alertsSent atomic.Int64
	errs       atomic.Int64

	mu         sync.RWMutex
	universe   []string
	universeAt time.Time
}

func NewScanScheduler(
	universeSrc drepo.UniverseProvider,
	fetcher Fetcher,
	scorer service.Scorer,
	alerts *AlertEngine,
	dispatcher *AlertDispatcher,
	board *ScanBoard,
	metrics drepo.Metrics,
	logger *applogger.Logger,
	opts ...SchedulerOption,
) *ScanScheduler {
	s := &ScanScheduler{
		universeSrc: universeSrc,
		fetcher:     fetcher,
		scorer:      scorer,
		alerts:      alerts,
		dispatcher:  dispatcher,
		board:       board,
		metrics:     metrics,
		logger:      logger,
		interval:    60 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run loads the universe and loops until ctx is cancelled.
// It returns an error only when no universe can be obtained.
func (s *ScanScheduler) Run(ctx context.Context) error {
	if err := s.LoadUniverse(ctx); err != nil {
		return err
	}
	for {
		report := s.RunCycle(ctx)
		if ctx.Err() != nil {
			s.setState(StateIdle)
			return nil
		}
		s.setState(StateSleeping)
		if err := sleepCtx(ctx, cycleDelay(s.interval, report.Duration)); err != nil {
			s.setState(StateIdle)
			return nil
		}
	}
}

// cycleDelay is the pause that starts the next cycle one interval after the
// previous one started. A cycle that overran the interval is followed immediately.
func cycleDelay(interval, elapsed time.Duration) time.Duration {
	if elapsed >= interval {
		return 0
	}
	return interval - elapsed
}

// LoadUniverse builds the ticker universe. It fails when the provider fails
// or returns no tickers.
func (s *ScanScheduler) LoadUniverse(ctx context.Context) error {
	tickers, err := s.universeSrc.Provide(ctx)
	if err == nil && len(tickers) == 0 {
		err = models.ErrNoUniverse
	}
	if err != nil {
		return fmt.Errorf("load universe: %w", err)
	}

	s.mu.Lock()
	s.universe = tickers
	s.universeAt = time.Now()
	s.mu.Unlock()

	s.board.SetUniverseSize(len(tickers))
	s.logger.Info("ticker universe loaded",
		applogger.String("source", s.universeSrc.Name()),
		applogger.Int("tickers", len(tickers)),
	)
	return nil
}

// Universe returns the current ticker universe.
func (s *ScanScheduler) Universe() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.universe
}

// RunCycle performs one fetch, compute and alert pass over the universe.
func (s *ScanScheduler) RunCycle(ctx context.Context) models.CycleReport {
	s.maybeRefreshUniverse(ctx)
	tickers := s.Universe()

	start := time.Now()
	report := models.CycleReport{
		Cycle:     s.cycle.Add(1),
		StartedAt: start,
		Universe:  len(tickers),
	}

	s.setState(StateFetching)
	outcomes := s.fetcher.FetchAll(ctx, tickers)

	s.setState(StateComputing)
	results := make([]models.ScanResult, 0, len(outcomes))
	for _, ticker := range tickers {
		o, ok := outcomes[ticker]
		if !ok || !o.HasData() {
			report.NoData++
			continue
		}
		report.Fetched++
		if o.Cached {
			report.Cached++
		}

		res, err := s.scorer.Evaluate(ticker, o.Bars)
		switch {
		case errors.Is(err, models.ErrInsufficientBars):
			report.Insufficient++
			s.metrics.RecordSkip("insufficient")
			continue
		case errors.Is(err, models.ErrDegenerateVariance):
			report.Degenerate++
			s.metrics.RecordSkip("degenerate")
			continue
		case err != nil:
			s.errs.Add(1)
			s.logger.Error("evaluate failed", applogger.String("ticker", ticker), applogger.Error(err))
			continue
		}
		results = append(results, res)
	}
	report.Evaluated = len(results)

	s.board.PublishResults(results)
	report.SinkErrors = s.saveResults(ctx, report.Cycle, results)

	s.setState(StateAlerting)
	for _, res := range results {
		alert, fire := s.alerts.Evaluate(res)
		if !fire {
			continue
		}
		report.AlertsFired++
		s.alertsSent.Add(1)
		s.metrics.RecordAlert(string(alert.Direction))
		s.board.RecordAlert(alert)
		s.logger.Info("volatility alert",
			applogger.String("ticker", alert.Ticker),
			applogger.Float64("z_score", alert.ZScore),
			applogger.Float64("move_pct", alert.PercentMove),
			applogger.String("severity", string(alert.Severity)),
		)

		if err := s.dispatcher.Dispatch(ctx, alert); err != nil {
			report.NotifyErrors++
			s.errs.Add(1)
			s.logger.Error("alert delivery failed", applogger.String("ticker", alert.Ticker), applogger.Error(err))
		}
	}

	if s.cache != nil {
		s.cache.Purge()
	}

	report.Duration = time.Since(start)
	s.board.SetReport(report)
	s.metrics.RecordCycle(report.Duration.Seconds(), report.Universe)
	s.logger.Info("scan cycle complete",
		applogger.Int64("cycle", report.Cycle),
		applogger.Duration("duration_ms", report.Duration),
		applogger.Int("universe", report.Universe),
		applogger.Int("evaluated", report.Evaluated),
		applogger.Int("no_data", report.NoData),
		applogger.Int("skipped", report.Insufficient+report.Degenerate),
		applogger.Int("alerts", report.AlertsFired),
		applogger.Int64("alerts_total", s.alertsSent.Load()),
	)
	return report
}

func (s *ScanScheduler) saveResults(ctx context.Context, cycle int64, results []models.ScanResult) int {
	failed := 0
	for _, st := range s.stores {
		if err := st.SaveResults(ctx, cycle, results); err != nil {
			failed++
			s.metrics.RecordSinkError(st.Name())
			s.logger.Warn("scan snapshot export failed", applogger.String("sink", st.Name()), applogger.Error(err))
		}
	}
	return failed
}

func (s *ScanScheduler) maybeRefreshUniverse(ctx context.Context) {
	s.mu.RLock()
	due := s.refresh > 0 && time.Since(s.universeAt) >= s.refresh
	s.mu.RUnlock()
	if !due {
		return
	}
	if err := s.LoadUniverse(ctx); err != nil {
		s.errs.Add(1)
		s.logger.Warn("universe refresh failed, keeping previous", applogger.Error(err))
		s.mu.Lock()
		s.universeAt = time.Now()
		s.mu.Unlock()
	}
}

func (s *ScanScheduler) setState(st State) {
	s.state.Store(int32(st))
	s.metrics.RecordState(st.String())
}

// State returns the current lifecycle stage.
func (s *ScanScheduler) State() State {
	return State(s.state.Load())
}

// Stats returns cumulative counters.
func (s *ScanScheduler) Stats() Stats {
	return Stats{
		State:      s.State().String(),
		ScanCount:  s.cycle.Load(),
		AlertsSent: s.alertsSent.Load(),
		Errors:     s.errs.Load(),
	}
}
