package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"denki-watcher/internal/billing"
	"denki-watcher/internal/config"
	"denki-watcher/internal/fetcher"
	"denki-watcher/internal/localday"
	"denki-watcher/internal/notify"
	"denki-watcher/internal/pricing"
	"denki-watcher/internal/storage"
	"denki-watcher/internal/usage"
)

// Status is the terminal state of one processed day.
type Status string

const (
	// StatusProcessed means readings were aggregated and persisted.
	StatusProcessed Status = "processed"
	// StatusSkipped means the provider had no data yet; nothing was
	// persisted and no notification was sent. Not a failure.
	StatusSkipped Status = "skipped"
)

// Service drives the per-day pipeline: account → fetch → filter → sum →
// price → persist → cycle summary → notify.
type Service struct {
	fetcher    fetcher.UsageFetcher
	aggregator *usage.Aggregator
	tariff     pricing.Tariff
	store      storage.DailyUsageStore
	notifier   notify.Notifier
	logger     zerolog.Logger

	cycleStartDay int
	token         string
}

// New constructs the usage service. The notifier may be nil (disabled).
func New(cfg *config.Config, f fetcher.UsageFetcher, store storage.DailyUsageStore, notifier notify.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		fetcher:       f,
		aggregator:    usage.NewAggregator(logger),
		tariff:        cfg.Tariff.Schedule(),
		store:         store,
		notifier:      notifier,
		logger:        logger.With().Str("component", "service").Logger(),
		cycleStartDay: cfg.Billing.CycleStartDay,
	}
}

// Authenticate acquires the provider token once; it is reused for every
// subsequent ProcessDay call (single day or whole range).
func (s *Service) Authenticate(ctx context.Context) error {
	token, err := s.fetcher.Authenticate(ctx)
	if err != nil {
		return err
	}
	s.token = token
	return nil
}

// ProcessDay runs the pipeline for one JST calendar day.
func (s *Service) ProcessDay(ctx context.Context, day time.Time) (Status, error) {
	if s.token == "" {
		return "", fmt.Errorf("service: not authenticated")
	}

	day = localday.Truncate(day)
	logger := s.logger.With().Str("date", day.Format(localday.DateLayout)).Logger()

	accountNumber, err := s.fetcher.AccountNumber(ctx, s.token)
	if err != nil {
		return "", fmt.Errorf("resolve account: %w", err)
	}

	startUTC, endUTC := localday.Window(day)
	readings, err := s.fetcher.HalfHourlyReadings(ctx, s.token, accountNumber, startUTC, endUTC)
	if err != nil {
		return "", fmt.Errorf("fetch readings: %w", err)
	}

	filtered := s.aggregator.FilterToLocalDay(readings, day)
	if len(filtered) == 0 {
		logger.Info().Int("fetched", len(readings)).Msg("no readings for local day yet; skipping")
		return StatusSkipped, nil
	}

	totalKwh := s.aggregator.SumKwh(filtered)
	estimatedCost := s.tariff.EstimateCost(totalKwh)

	rec := storage.DailyUsage{
		Date:          day,
		Kwh:           totalKwh.Round(3),
		EstimatedCost: estimatedCost,
	}
	if err := s.store.UpsertDailyUsage(ctx, rec); err != nil {
		return "", fmt.Errorf("persist daily usage: %w", err)
	}

	logger.Info().
		Int("readings", len(filtered)).
		Str("kwh", rec.Kwh.String()).
		Str("estimated_cost", rec.EstimatedCost.String()).
		Msg("daily usage recorded")

	summary, err := s.SummarizeCycle(ctx, day)
	if err != nil {
		// the daily record is already durable; a summary failure only
		// degrades the notification
		logger.Error().Err(err).Msg("failed to summarize billing cycle")
	}

	if s.notifier != nil {
		report := notify.Report{
			Date:          day,
			Kwh:           rec.Kwh,
			EstimatedCost: rec.EstimatedCost,
			CycleStart:    summary.Cycle.Start,
			CycleEnd:      summary.Cycle.End,
			CycleKwh:      summary.TotalKwh,
			CycleCost:     summary.TotalCost,
		}
		if err := s.notifier.Notify(ctx, report); err != nil {
			logger.Error().Err(err).Msg("failed to dispatch notification")
		}
	}

	return StatusProcessed, nil
}

// RangeResult tallies the outcome of a ProcessRange sweep.
type RangeResult struct {
	Processed int
	Skipped   int
	Failed    int
}

// ProcessRange runs ProcessDay over an inclusive range of JST days. One
// day's failure is logged and counted; only context cancellation aborts the
// sweep early. Every day after the first waits delay before its request.
func (s *Service) ProcessRange(ctx context.Context, from, to time.Time, delay time.Duration) (RangeResult, error) {
	from = localday.Truncate(from)
	to = localday.Truncate(to)

	var res RangeResult
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if day.After(from) && delay > 0 {
			// anti-burst pacing against the upstream API
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return res, ctx.Err()
			case <-timer.C:
			}
		}

		status, err := s.ProcessDay(ctx, day)
		if err != nil {
			res.Failed++
			s.logger.Error().Err(err).Str("date", day.Format(localday.DateLayout)).Msg("day failed, continuing range")
			continue
		}
		if status == StatusSkipped {
			res.Skipped++
			continue
		}
		res.Processed++
	}
	return res, nil
}

// SummarizeCycle aggregates persisted records over the billing cycle
// enclosing the given day.
func (s *Service) SummarizeCycle(ctx context.Context, day time.Time) (billing.Summary, error) {
	cycle := billing.CycleFor(day, s.cycleStartDay)
	records, err := s.store.ListUsageBetween(ctx, cycle.Start, cycle.End)
	if err != nil {
		return billing.Summary{Cycle: cycle}, fmt.Errorf("list cycle usage: %w", err)
	}
	return billing.Summarize(cycle, records), nil
}
