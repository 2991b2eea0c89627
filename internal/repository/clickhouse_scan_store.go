package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"VolScan/internal/domain/models"
	domrepo "VolScan/internal/domain/repository"
	pkgch "VolScan/pkg/clickhouse"
)

const scanResultColumns = "cycle, ts, ticker, latest_return, z_score, latest_price, previous_close, percent_move, mean, std_dev, sample_size"

// ClickHouseSchema returns the DDL for the scan results table.
func ClickHouseSchema(table string) []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            cycle          UInt64,
            ts             DateTime64(3, 'UTC'),
            ticker         LowCardinality(String),
            latest_return  Float64,
            z_score        Float64,
            latest_price   Float64,
            previous_close Float64,
            percent_move   Float64,
            mean           Float64,
            std_dev        Float64,
            sample_size    UInt32
        ) ENGINE = MergeTree
        PARTITION BY toYYYYMMDD(ts)
        ORDER BY (ticker, ts)
    `, table)}
}

// ClickHouseScanStore appends every evaluated result of a cycle.
type ClickHouseScanStore struct {
	db    *sql.DB
	table string
}

var _ domrepo.ScanStore = (*ClickHouseScanStore)(nil)

func NewClickHouseScanStore(client *pkgch.Client, table string) *ClickHouseScanStore {
	return &ClickHouseScanStore{db: client.DB(), table: table}
}

func (s *ClickHouseScanStore) Name() string { return "clickhouse" }

func (s *ClickHouseScanStore) SaveResults(ctx context.Context, cycle int64, results []models.ScanResult) error {
	const chunkSize = 2000
	for start := 0; start < len(results); start += chunkSize {
		end := start + chunkSize
		if end > len(results) {
			end = len(results)
		}
		q, args := buildScanInsert(s.table, cycle, results[start:end])
		if q == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert scan results: %w", err)
		}
	}
	return nil
}

// buildScanInsert renders one multi-row INSERT; rows without a ticker are skipped.
func buildScanInsert(table string, cycle int64, results []models.ScanResult) (string, []interface{}) {
	values := make([]string, 0, len(results))
	args := make([]interface{}, 0, len(results)*11)
	for _, r := range results {
		if r.Ticker == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			uint64(cycle),
			r.Timestamp.UTC(),
			r.Ticker,
			r.LatestReturn,
			r.ZScore,
			r.LatestPrice,
			r.PreviousClose,
			r.PercentMove,
			r.Volatility.Mean,
			r.Volatility.StdDev,
			uint32(r.Volatility.SampleSize),
		)
	}
	if len(values) == 0 {
		return "", nil
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, scanResultColumns, strings.Join(values, ","))
	return q, args
}
