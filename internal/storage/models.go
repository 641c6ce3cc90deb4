package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DailyUsage is one persisted record per JST calendar day. Date is the
// unique key; re-processing a day overwrites kwh and cost.
type DailyUsage struct {
	Date          time.Time
	Kwh           decimal.Decimal
	EstimatedCost decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DailyUsageStore defines the keyed mapping this system needs: point upsert
// by date plus inclusive ascending range scans.
type DailyUsageStore interface {
	UpsertDailyUsage(ctx context.Context, rec DailyUsage) error
	ListUsageBetween(ctx context.Context, from, to time.Time) ([]DailyUsage, error)
	ListRecentUsage(ctx context.Context, limit int) ([]DailyUsage, error)
	Close() error
}
