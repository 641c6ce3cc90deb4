package app

import (
	"context"
	"fmt"
	"time"

	"denki-watcher/internal/localday"
	"denki-watcher/internal/service"
)

// RunDay processes a single JST day (default: yesterday). Authentication or
// account-resolution failure is fatal and surfaces as a non-zero exit.
func (a *App) RunDay(ctx context.Context, opts RunOptions) error {
	if err := a.Config.RequireProviderCredentials(); err != nil {
		return err
	}

	day := localday.Yesterday(time.Now())
	if opts.Date != nil {
		day = localday.Truncate(*opts.Date)
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := a.newService(a.newFetcher(), store, a.newNotifier())

	if err := svc.Authenticate(ctx); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	status, err := svc.ProcessDay(ctx, day)
	if err != nil {
		return err
	}

	if status == service.StatusSkipped {
		a.Logger.Info().Str("date", day.Format(localday.DateLayout)).Msg("provider has no data for this day yet")
	}
	return nil
}
