package models

import "time"

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// CriticalZ is the |Z| above which an alert is critical.
const CriticalZ = 3.0

// Alert is the payload of a fired volatility alert.
type Alert struct {
	Ticker      string    `json:"ticker"`
	ZScore      float64   `json:"z_score"`
	PercentMove float64   `json:"percent_move"`
	Direction   Direction `json:"direction"`
	Severity    Severity  `json:"severity"`
	Timestamp   time.Time `json:"timestamp"`
	LatestPrice float64   `json:"latest_price"`
}

// CooldownEntry records when a ticker last alerted.
type CooldownEntry struct {
	Ticker    string    `json:"ticker"`
	LastAlert time.Time `json:"last_alert"`
}

// CooldownStatus is a ledger entry still inside its cooldown window.
type CooldownStatus struct {
	CooldownEntry
	Remaining time.Duration `json:"remaining"`
}
