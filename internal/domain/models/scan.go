package models

import "time"

// VolatilityState is the rolling return statistic behind a Z-score.
type VolatilityState struct {
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	SampleSize int     `json:"sample_size"`
	Window     int     `json:"window"`
}

// ScanResult is the per-ticker output of one evaluation.
type ScanResult struct {
	Ticker        string          `json:"ticker"`
	LatestReturn  float64         `json:"latest_return"`
	ZScore        float64         `json:"z_score"`
	LatestPrice   float64         `json:"latest_price"`
	PreviousClose float64         `json:"previous_close"`
	PercentMove   float64         `json:"percent_move"`
	Timestamp     time.Time       `json:"timestamp"`
	Volatility    VolatilityState `json:"volatility"`
}

// CycleReport summarizes one scan cycle.
type CycleReport struct {
	Cycle        int64         `json:"cycle"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
	Universe     int           `json:"universe"`
	Fetched      int           `json:"fetched"`
	Cached       int           `json:"cached"`
	NoData       int           `json:"no_data"`
	Evaluated    int           `json:"evaluated"`
	Insufficient int           `json:"insufficient"`
	Degenerate   int           `json:"degenerate"`
	AlertsFired  int           `json:"alerts_fired"`
	NotifyErrors int           `json:"notify_errors"`
	SinkErrors   int           `json:"sink_errors"`
}
