package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"VolScan/internal/domain/models"
	domrepo "VolScan/internal/domain/repository"
)

var csvHeader = []string{
	"cycle", "timestamp", "ticker", "z_score", "percent_move",
	"latest_price", "previous_close", "latest_return", "mean", "std_dev", "sample_size",
}

// CSVScanStore writes one report file per cycle into dir.
type CSVScanStore struct {
	dir string
	now func() time.Time
}

var _ domrepo.ScanStore = (*CSVScanStore)(nil)

func NewCSVScanStore(dir string) *CSVScanStore {
	return &CSVScanStore{dir: dir, now: time.Now}
}

func (s *CSVScanStore) Name() string { return "csv" }

func (s *CSVScanStore) SaveResults(ctx context.Context, cycle int64, results []models.ScanResult) error {
	if len(results) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	name := fmt.Sprintf("scan_%s_%06d.csv", s.now().UTC().Format("20060102_150405"), cycle)
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	w := csv.NewWriter(f)
	_ = w.Write(csvHeader)
	for _, r := range results {
		_ = w.Write(csvRow(cycle, r))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close report: %w", err)
	}
	return os.Rename(tmp, path)
}

func csvRow(cycle int64, r models.ScanResult) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		strconv.FormatInt(cycle, 10),
		r.Timestamp.UTC().Format(time.RFC3339),
		r.Ticker,
		f(r.ZScore),
		f(r.PercentMove),
		f(r.LatestPrice),
		f(r.PreviousClose),
		f(r.LatestReturn),
		f(r.Volatility.Mean),
		f(r.Volatility.StdDev),
		strconv.Itoa(r.Volatility.SampleSize),
	}
}
