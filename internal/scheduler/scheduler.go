package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"denki-watcher/internal/localday"
)

// TickFunc is invoked once per day with the JST date to process.
type TickFunc func(ctx context.Context, day time.Time) error

// Options tune scheduler behaviour.
type Options struct {
	// Hour and Minute are the JST wall-clock time of the daily run.
	Hour         int
	Minute       int
	StartupDelay time.Duration
}

// Scheduler fires once per local day at a fixed wall-clock time, handing the
// previous JST day to the tick function (the provider typically publishes a
// full day's readings only after it ends).
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	return &Scheduler{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks, invoking the tick function each day until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, tick TickFunc) error {
	if s.opts.StartupDelay > 0 {
		timer := time.NewTimer(s.opts.StartupDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	for {
		next := s.NextRun(time.Now())
		s.logger.Debug().Time("next_run", next).Msg("waiting for next daily run")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			timer.Stop()
		}

		day := localday.Yesterday(next)
		s.logger.Info().Str("date", day.Format(localday.DateLayout)).Msg("executing daily run")

		if err := tick(ctx, day); err != nil {
			s.logger.Error().Err(err).Str("date", day.Format(localday.DateLayout)).Msg("daily run failed")
		}
	}
}

// NextRun computes the next JST wall-clock occurrence after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	local := now.In(localday.JST)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.opts.Hour, s.opts.Minute, 0, 0, localday.JST)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
