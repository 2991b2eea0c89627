package repository

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"VolScan/internal/domain/models"
	pkgkafka "VolScan/pkg/kafka"
)

var testResults = []models.ScanResult{
	{Ticker: "AAPL", ZScore: 2.5, PercentMove: 1.1, LatestPrice: 190, Timestamp: time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC),
		Volatility: models.VolatilityState{Mean: 0.0001, StdDev: 0.002, SampleSize: 390, Window: 1560}},
	{Ticker: "MSFT", ZScore: -0.4, PercentMove: -0.1, LatestPrice: 410, Timestamp: time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)},
}

func TestBuildScanInsert(t *testing.T) {
	rows := append([]models.ScanResult{{}}, testResults...)
	q, args := buildScanInsert("scan_results", 7, rows)
	if !strings.HasPrefix(q, "INSERT INTO scan_results ("+scanResultColumns+") VALUES ") {
		t.Fatalf("query = %s", q)
	}
	if strings.Count(q, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)") != 2 {
		t.Fatalf("empty ticker should be skipped: %s", q)
	}
	if len(args) != 22 || args[0] != uint64(7) || args[2] != "AAPL" || args[10] != uint32(390) {
		t.Fatalf("args = %v", args)
	}
	if q, _ := buildScanInsert("t", 1, nil); q != "" {
		t.Fatalf("no rows should yield no query")
	}
}

type fakeProducer struct {
	msg pkgkafka.Message
	err error
}

func (p *fakeProducer) Send(_ context.Context, msg pkgkafka.Message) error {
	p.msg = msg
	return p.err
}

func TestKafkaAlertPublisher(t *testing.T) {
	fp := &fakeProducer{}
	pub := NewKafkaAlertPublisher(fp, "volscan.alerts")
	a := models.Alert{Ticker: "TSLA", ZScore: -3.4, Direction: models.DirectionDown, Severity: models.SeverityCritical}
	if err := pub.PublishAlert(context.Background(), a); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if fp.msg.Topic != "volscan.alerts" || string(fp.msg.Key) != "TSLA" {
		t.Fatalf("topic=%s key=%s", fp.msg.Topic, fp.msg.Key)
	}
	if fp.msg.Headers["event-type"] != "volatility_alert" || fp.msg.Headers["severity"] != "critical" {
		t.Fatalf("headers = %v", fp.msg.Headers)
	}
	var event map[string]interface{}
	if err := json.Unmarshal(fp.msg.Value, &event); err != nil {
		t.Fatalf("payload is not json: %s", fp.msg.Value)
	}
	if event["type"] != "volatility_alert" || event["direction"] != "down" || event["ticker"] != "TSLA" {
		t.Fatalf("payload = %s", fp.msg.Value)
	}

	fp.err = errors.New("broker down")
	if err := pub.PublishAlert(context.Background(), a); err == nil {
		t.Fatalf("expected error")
	}
}

type fakeCache struct {
	values map[string]interface{}
	ttl    time.Duration
}

func (c *fakeCache) Close() error { return nil }

func (c *fakeCache) MSet(_ context.Context, values map[string]interface{}, ttl time.Duration) error {
	c.values, c.ttl = values, ttl
	return nil
}

func TestRedisScanStore(t *testing.T) {
	fc := &fakeCache{}
	s := NewRedisScanStore(fc, 2*time.Hour)
	if err := s.SaveResults(context.Background(), 3, testResults); err != nil {
		t.Fatalf("save: %v", err)
	}
	if fc.ttl != 2*time.Hour || len(fc.values) != 3 {
		t.Fatalf("ttl=%v values=%v", fc.ttl, fc.values)
	}
	if r, ok := fc.values[ScanKey("AAPL")].(models.ScanResult); !ok || r.ZScore != 2.5 {
		t.Fatalf("AAPL snapshot = %v", fc.values[ScanKey("AAPL")])
	}
	if fc.values["scan:last_cycle"] != "3" {
		t.Fatalf("last cycle = %v", fc.values["scan:last_cycle"])
	}
}

func TestCSVScanStoreWritesReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	s := NewCSVScanStore(dir)
	s.now = func() time.Time { return time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC) }

	if err := s.SaveResults(context.Background(), 12, testResults); err != nil {
		t.Fatalf("save: %v", err)
	}
	path := filepath.Join(dir, "scan_20240301_153000_000012.csv")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "cycle" || rows[1][2] != "AAPL" || rows[1][3] != "2.5" {
		t.Fatalf("rows = %v", rows)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %v", entries)
	}
}

func TestPostgresAlertLogQuotesTable(t *testing.T) {
	l := NewPostgresAlertLog(nil, "alert_log")
	if l.table != `"alert_log"` || unquote(l.table) != "alert_log" {
		t.Fatalf("table = %s", l.table)
	}
}
