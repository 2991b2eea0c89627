package repository

import (
	"context"
	"fmt"
	"time"

	"VolScan/internal/domain/models"
	domrepo "VolScan/internal/domain/repository"
	pkgcache "VolScan/pkg/cache"
)

// RedisScanStore keeps the latest result per ticker under scan:{ticker}.
// It is write-only; entries expire after ttl.
type RedisScanStore struct {
	cache pkgcache.Service
	ttl   time.Duration
}

var _ domrepo.ScanStore = (*RedisScanStore)(nil)

func NewRedisScanStore(cache pkgcache.Service, ttl time.Duration) *RedisScanStore {
	return &RedisScanStore{cache: cache, ttl: ttl}
}

func (s *RedisScanStore) Name() string { return "redis" }

func ScanKey(ticker string) string { return "scan:" + ticker }

func (s *RedisScanStore) SaveResults(ctx context.Context, cycle int64, results []models.ScanResult) error {
	if len(results) == 0 {
		return nil
	}
	values := make(map[string]interface{}, len(results)+1)
	for _, r := range results {
		values[ScanKey(r.Ticker)] = r
	}
	values["scan:last_cycle"] = fmt.Sprintf("%d", cycle)
	if err := s.cache.MSet(ctx, values, s.ttl); err != nil {
		return fmt.Errorf("redis snapshot: %w", err)
	}
	return nil
}
