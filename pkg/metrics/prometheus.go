package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var schedulerStates = []string{"idle", "fetching", "computing", "alerting", "sleeping"}

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetches      *prometheus.CounterVec
	retries      prometheus.Counter
	skips        *prometheus.CounterVec
	alerts       *prometheus.CounterVec
	notifyErrors *prometheus.CounterVec
	sinkErrors   *prometheus.CounterVec
	cycleSeconds prometheus.Histogram
	universe     prometheus.Gauge
	state        *prometheus.GaugeVec
}

// New registers the recorder on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the recorder on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volscan_fetch_total",
				Help: "Ticker fetch outcomes",
			},
			[]string{"result"},
		),
		retries: f.NewCounter(prometheus.CounterOpts{
			Name: "volscan_fetch_retries_total",
			Help: "Fetch attempts retried after a transient failure",
		}),
		skips: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volscan_computation_skips_total",
				Help: "Tickers excluded from alerting",
			},
			[]string{"reason"},
		),
		alerts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volscan_alerts_total",
				Help: "Volatility alerts fired",
			},
			[]string{"direction"},
		),
		notifyErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volscan_notify_errors_total",
				Help: "Alert deliveries that failed",
			},
			[]string{"channel"},
		),
		sinkErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volscan_sink_errors_total",
				Help: "Export sink write failures",
			},
			[]string{"sink"},
		),
		cycleSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "volscan_cycle_duration_seconds",
			Help:    "Duration of a full scan cycle",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		universe: f.NewGauge(prometheus.GaugeOpts{
			Name: "volscan_universe_size",
			Help: "Tickers in the last scan cycle",
		}),
		state: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "volscan_scheduler_state",
				Help: "1 for the scheduler's current state",
			},
			[]string{"state"},
		),
	}
}

func (r *Recorder) RecordFetch(result string) {
	r.fetches.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordRetry() {
	r.retries.Inc()
}

func (r *Recorder) RecordSkip(reason string) {
	r.skips.WithLabelValues(reason).Inc()
}

func (r *Recorder) RecordAlert(direction string) {
	r.alerts.WithLabelValues(direction).Inc()
}

func (r *Recorder) RecordNotifyError(channel string) {
	r.notifyErrors.WithLabelValues(channel).Inc()
}

func (r *Recorder) RecordSinkError(sink string) {
	r.sinkErrors.WithLabelValues(sink).Inc()
}

// RecordCycle records a cycle's duration in seconds and its universe size.
func (r *Recorder) RecordCycle(seconds float64, universe int) {
	r.cycleSeconds.Observe(seconds)
	r.universe.Set(float64(universe))
}

func (r *Recorder) RecordState(state string) {
	for _, s := range schedulerStates {
		v := 0.0
		if s == state {
			v = 1
		}
		r.state.WithLabelValues(s).Set(v)
	}
}
