package fetcher

import (
	"context"
	"errors"
	"time"

	"denki-watcher/internal/usage"
)

var (
	// ErrAuthFailed indicates the provider rejected the credentials or
	// returned no token. Fatal for the whole invocation.
	ErrAuthFailed = errors.New("fetcher: authentication failed")
	// ErrAccountNotFound indicates the token resolved to no account.
	// Fatal for the date being processed only.
	ErrAccountNotFound = errors.New("fetcher: no account for token")
)

// UsageFetcher retrieves interval readings from the utility provider.
// An empty readings slice is not an error; it means the provider has no
// data for the window yet.
type UsageFetcher interface {
	Authenticate(ctx context.Context) (string, error)
	AccountNumber(ctx context.Context, token string) (string, error)
	HalfHourlyReadings(ctx context.Context, token, accountNumber string, fromUTC, toUTC time.Time) ([]usage.IntervalReading, error)
}
