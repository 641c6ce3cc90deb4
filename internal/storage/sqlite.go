package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"denki-watcher/internal/localday"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS daily_usage (
    usage_date     TEXT PRIMARY KEY,
    kwh            TEXT NOT NULL,
    estimated_cost TEXT NOT NULL,
    created_at     TEXT NOT NULL,
    updated_at     TEXT NOT NULL
);
`

// SQLiteStore persists daily usage in a local SQLite file. It is the
// default backend so the tool works without a database server.
type SQLiteStore struct {
	conn *sql.DB
}

// NewSQLiteStore opens (or creates) the database and initialises the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("database.path is required for the sqlite driver")
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := conn.Exec(sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialise sqlite schema: %w", err)
	}

	return &SQLiteStore{conn: conn}, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// UpsertDailyUsage inserts or overwrites the record for one date.
func (s *SQLiteStore) UpsertDailyUsage(ctx context.Context, rec DailyUsage) error {
	if s == nil || s.conn == nil {
		return ErrNotConfigured
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.conn.ExecContext(ctx, `
	INSERT INTO daily_usage (usage_date, kwh, estimated_cost, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(usage_date) DO UPDATE
	SET kwh = excluded.kwh,
	    estimated_cost = excluded.estimated_cost,
	    updated_at = excluded.updated_at;`,
		rec.Date.In(localday.JST).Format(localday.DateLayout),
		rec.Kwh.Round(3).String(),
		rec.EstimatedCost.Round(2).String(),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert daily usage: %w", err)
	}
	return nil
}

// ListUsageBetween lists records with dates in [from, to], ascending.
func (s *SQLiteStore) ListUsageBetween(ctx context.Context, from, to time.Time) ([]DailyUsage, error) {
	if s == nil || s.conn == nil {
		return nil, ErrNotConfigured
	}

	rows, err := s.conn.QueryContext(ctx, `
	SELECT usage_date, kwh, estimated_cost, created_at, updated_at
	FROM daily_usage
	WHERE usage_date >= ? AND usage_date <= ?
	ORDER BY usage_date;`,
		from.In(localday.JST).Format(localday.DateLayout),
		to.In(localday.JST).Format(localday.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("list usage between: %w", err)
	}
	defer rows.Close()

	return collectSQLiteRows(rows)
}

// ListRecentUsage lists the newest records ordered by descending date.
func (s *SQLiteStore) ListRecentUsage(ctx context.Context, limit int) ([]DailyUsage, error) {
	if s == nil || s.conn == nil {
		return nil, ErrNotConfigured
	}

	rows, err := s.conn.QueryContext(ctx, `
	SELECT usage_date, kwh, estimated_cost, created_at, updated_at
	FROM daily_usage
	ORDER BY usage_date DESC
	LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent usage: %w", err)
	}
	defer rows.Close()

	return collectSQLiteRows(rows)
}

func collectSQLiteRows(rows *sql.Rows) ([]DailyUsage, error) {
	records := make([]DailyUsage, 0)
	for rows.Next() {
		var dateStr, kwhStr, costStr, createdStr, updatedStr string
		if err := rows.Scan(&dateStr, &kwhStr, &costStr, &createdStr, &updatedStr); err != nil {
			return nil, fmt.Errorf("scan daily usage: %w", err)
		}

		date, err := localday.Parse(dateStr)
		if err != nil {
			return nil, err
		}
		kwh, err := decimal.NewFromString(kwhStr)
		if err != nil {
			return nil, fmt.Errorf("parse kwh: %w", err)
		}
		cost, err := decimal.NewFromString(costStr)
		if err != nil {
			return nil, fmt.Errorf("parse estimated cost: %w", err)
		}

		rec := DailyUsage{
			Date:          date,
			Kwh:           kwh,
			EstimatedCost: cost,
		}
		if created, err := time.Parse(time.RFC3339, createdStr); err == nil {
			rec.CreatedAt = created
		}
		if updated, err := time.Parse(time.RFC3339, updatedStr); err == nil {
			rec.UpdatedAt = updated
		}

		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

var _ DailyUsageStore = (*SQLiteStore)(nil)
