package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the SQL files under database.migrations_path in name
// order. Only the postgres backend needs this; sqlite creates its schema on
// open. Files are expected to be idempotent (IF NOT EXISTS).
func (a *App) Migrate(ctx context.Context) error {
	if a.Config.Database.Driver != "postgres" {
		return errors.New("migrate only applies to the postgres driver")
	}

	entries, err := filepath.Glob(filepath.Join(a.Config.Database.MigrationsPath, "*.sql"))
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no migrations found under %s", a.Config.Database.MigrationsPath)
	}
	sort.Strings(entries)

	poolConfig, err := pgxpool.ParseConfig(a.Config.Database.DSN)
	if err != nil {
		return fmt.Errorf("parse database dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("create pgx pool: %w", err)
	}
	defer pool.Close()

	for _, path := range entries {
		sql, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", path, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", path, err)
		}
		a.Logger.Info().Str("migration", filepath.Base(path)).Msg("migration applied")
	}

	return nil
}
