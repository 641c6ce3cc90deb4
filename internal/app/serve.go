package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"denki-watcher/internal/scheduler"
	"denki-watcher/internal/service"
)

// Serve runs the daily processing loop until interrupted. Each day the
// scheduler fires at the configured JST time and processes the previous day;
// the token is re-acquired per run since provider JWTs are short-lived.
func (a *App) Serve(ctx context.Context) error {
	if err := a.Config.RequireProviderCredentials(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := a.newService(a.newFetcher(), store, a.newNotifier())

	hour, minute := a.Config.RunAtClock()
	sched := scheduler.New(scheduler.Options{
		Hour:         hour,
		Minute:       minute,
		StartupDelay: a.Config.Schedule.StartupDelay,
	}, a.Logger)

	a.Logger.Info().Str("run_at", a.Config.Schedule.RunAt).Msg("starting daily usage service")

	err = sched.Run(ctx, func(ctx context.Context, day time.Time) error {
		if err := svc.Authenticate(ctx); err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}
		status, err := svc.ProcessDay(ctx, day)
		if err != nil {
			return err
		}
		if status == service.StatusSkipped {
			a.Logger.Info().Msg("provider has no data yet; will retry tomorrow or via backfill")
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("daily usage service terminated with error")
		return err
	}

	a.Logger.Info().Msg("daily usage service stopped")
	return nil
}
