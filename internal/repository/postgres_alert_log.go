package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"VolScan/internal/domain/models"
	domrepo "VolScan/internal/domain/repository"

	"github.com/lib/pq"
)

// PostgresAlertLog is an insert-only audit trail of fired alerts.
type PostgresAlertLog struct {
	db    *sql.DB
	table string
}

var _ domrepo.AlertPublisher = (*PostgresAlertLog)(nil)

// OpenPostgresAlertLog connects with lib/pq and verifies the connection.
func OpenPostgresAlertLog(ctx context.Context, dsn, table string) (*PostgresAlertLog, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresAlertLog(db, table), nil
}

func NewPostgresAlertLog(db *sql.DB, table string) *PostgresAlertLog {
	return &PostgresAlertLog{db: db, table: pq.QuoteIdentifier(table)}
}

func (l *PostgresAlertLog) Name() string { return "postgres" }

func (l *PostgresAlertLog) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		id SERIAL PRIMARY KEY,
		ticker VARCHAR(16) NOT NULL,
		z_score DOUBLE PRECISION NOT NULL,
		percent_move DOUBLE PRECISION NOT NULL,
		direction VARCHAR(8) NOT NULL,
		severity VARCHAR(16) NOT NULL,
		latest_price DOUBLE PRECISION NOT NULL,
		alerted_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s (ticker, alerted_at);
	`, l.table, pq.QuoteIdentifier("idx_"+unquote(l.table)+"_ticker_ts"))
	if _, err := l.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("init alert log schema: %w", err)
	}
	return nil
}

func (l *PostgresAlertLog) PublishAlert(ctx context.Context, a models.Alert) error {
	q := fmt.Sprintf(`INSERT INTO %s (ticker, z_score, percent_move, direction, severity, latest_price, alerted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`, l.table)
	_, err := l.db.ExecContext(ctx, q,
		a.Ticker,
		a.ZScore,
		a.PercentMove,
		string(a.Direction),
		string(a.Severity),
		a.LatestPrice,
		a.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert alert %s: %w", a.Ticker, err)
	}
	return nil
}

func (l *PostgresAlertLog) Close() error {
	return l.db.Close()
}

func unquote(ident string) string {
	if len(ident) >= 2 && ident[0] == '"' && ident[len(ident)-1] == '"' {
		return ident[1 : len(ident)-1]
	}
	return ident
}
