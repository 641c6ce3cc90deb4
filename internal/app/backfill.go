package app

import (
	"context"
	"errors"
	"fmt"

	"denki-watcher/internal/localday"
)

// Backfill processes an inclusive range of JST days sequentially。The token
// is acquired once; a single day's failure does not halt the range, and the
// run still exits zero — re-running later fills the gaps idempotently.
func (a *App) Backfill(ctx context.Context, opts BackfillOptions) error {
	if err := a.Config.RequireProviderCredentials(); err != nil {
		return err
	}

	from := localday.Truncate(opts.From)
	to := localday.Truncate(opts.To)
	if from.After(to) {
		return errors.New("回填范围为空，请检查 --from/--to")
	}

	delay := a.Config.Runner.DayDelay
	if opts.Delay >= 0 {
		delay = opts.Delay
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

	res, err := svc.ProcessRange(ctx, from, to, delay)
	if err != nil {
		return err
	}

	a.Logger.Info().
		Int("processed", res.Processed).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("回填完成")
	return nil
}
