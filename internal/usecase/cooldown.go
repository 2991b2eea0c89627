package usecase

import (
	"sort"
	"sync"
	"time"

	"VolScan/internal/domain/models"
)

// CooldownLedger remembers the last alert time per ticker.
// Entries are never removed; expiry is checked on read.
type CooldownLedger struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     map[string]time.Time
}

func NewCooldownLedger(cooldown time.Duration) *CooldownLedger {
	return &CooldownLedger{cooldown: cooldown, last: make(map[string]time.Time)}
}

// TryAcquire records now for ticker and returns true when the ticker has no
// entry or its entry is at least one cooldown old. Otherwise the ledger is
// left untouched and false is returned.
func (l *CooldownLedger) TryAcquire(ticker string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.last[ticker]; ok && now.Sub(last) < l.cooldown {
		return false
	}
	l.last[ticker] = now
	return true
}

// Last returns the last alert time for ticker.
func (l *CooldownLedger) Last(ticker string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.last[ticker]
	return t, ok
}

// Active lists entries still inside their window, soonest to expire first.
func (l *CooldownLedger) Active(now time.Time) []models.CooldownStatus {
	l.mu.Lock()
	out := make([]models.CooldownStatus, 0, len(l.last))
	for ticker, last := range l.last {
		if remaining := l.cooldown - now.Sub(last); remaining > 0 {
			out = append(out, models.CooldownStatus{
				CooldownEntry: models.CooldownEntry{Ticker: ticker, LastAlert: last},
				Remaining:     remaining,
			})
		}
	}
	l.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Remaining == out[j].Remaining {
			return out[i].Ticker < out[j].Ticker
		}
		return out[i].Remaining < out[j].Remaining
	})
	return out
}

func (l *CooldownLedger) Cooldown() time.Duration { return l.cooldown }

func (l *CooldownLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.last)
}
