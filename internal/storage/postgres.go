package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"denki-watcher/internal/localday"
)

// ErrNotConfigured indicates the store was used before initialisation.
var ErrNotConfigured = errors.New("storage: store not configured")

const (
	upsertDailyUsageSQL = `INSERT INTO daily_usage (
        usage_date,
        kwh,
        estimated_cost
    ) VALUES (
        $1,$2,$3
    )
    ON CONFLICT (usage_date) DO UPDATE
    SET
        kwh            = EXCLUDED.kwh,
        estimated_cost = EXCLUDED.estimated_cost,
        updated_at     = now();`

	listUsageBetweenSQL = `SELECT
        usage_date,
        kwh,
        estimated_cost,
        created_at,
        updated_at
    FROM daily_usage
    WHERE usage_date >= $1
      AND usage_date <= $2
    ORDER BY usage_date;`

	listRecentUsageSQL = `SELECT
        usage_date,
        kwh,
        estimated_cost,
        created_at,
        updated_at
    FROM daily_usage
    ORDER BY usage_date DESC
    LIMIT $1;`
)

// PostgresStore persists daily usage in PostgreSQL via pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// PoolSettings tune the pgx connection pool.
type PoolSettings struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewPostgresStore opens a pgx pool and wraps it as a DailyUsageStore.
func NewPostgresStore(ctx context.Context, settings PoolSettings) (*PostgresStore, error) {
	if settings.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}

	poolConfig, err := pgxpool.ParseConfig(settings.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}

	if settings.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(settings.MaxOpenConns)
	}
	if settings.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(settings.MaxIdleConns)
	}
	if settings.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = settings.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *PostgresStore) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}

func (s *PostgresStore) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// UpsertDailyUsage inserts or overwrites the record for one date.
func (s *PostgresStore) UpsertDailyUsage(ctx context.Context, rec DailyUsage) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	_, execErr := pool.Exec(ctx, upsertDailyUsageSQL,
		rec.Date.In(localday.JST).Format(localday.DateLayout),
		rec.Kwh.Round(3).String(),
		rec.EstimatedCost.Round(2).String(),
	)
	if execErr != nil {
		return fmt.Errorf("upsert daily usage: %w", execErr)
	}
	return nil
}

// ListUsageBetween lists records with dates in [from, to], ascending.
func (s *PostgresStore) ListUsageBetween(ctx context.Context, from, to time.Time) ([]DailyUsage, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listUsageBetweenSQL,
		from.In(localday.JST).Format(localday.DateLayout),
		to.In(localday.JST).Format(localday.DateLayout),
	)
	if queryErr != nil {
		return nil, fmt.Errorf("list usage between: %w", queryErr)
	}
	defer rows.Close()

	return collectUsageRows(rows)
}

// ListRecentUsage lists the newest records ordered by descending date.
func (s *PostgresStore) ListRecentUsage(ctx context.Context, limit int) ([]DailyUsage, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentUsageSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent usage: %w", queryErr)
	}
	defer rows.Close()

	return collectUsageRows(rows)
}

func collectUsageRows(rows pgx.Rows) ([]DailyUsage, error) {
	records := make([]DailyUsage, 0)
	for rows.Next() {
		rec, scanErr := scanDailyUsage(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

func scanDailyUsage(rows pgx.Rows) (DailyUsage, error) {
	var (
		date      time.Time
		kwhStr    string
		costStr   string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := rows.Scan(&date, &kwhStr, &costStr, &createdAt, &updatedAt); err != nil {
		return DailyUsage{}, err
	}

	kwh, err := decimal.NewFromString(kwhStr)
	if err != nil {
		return DailyUsage{}, fmt.Errorf("parse kwh: %w", err)
	}
	cost, err := decimal.NewFromString(costStr)
	if err != nil {
		return DailyUsage{}, fmt.Errorf("parse estimated cost: %w", err)
	}

	return DailyUsage{
		Date:          localday.Truncate(date),
		Kwh:           kwh,
		EstimatedCost: cost,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

var _ DailyUsageStore = (*PostgresStore)(nil)
