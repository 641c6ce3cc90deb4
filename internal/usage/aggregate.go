package usage

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"denki-watcher/internal/localday"
)

// IntervalReading is one 30-minute measurement as returned by the provider.
// Value stays a string until summation; the API serialises decimals as text.
type IntervalReading struct {
	StartAt time.Time
	Value   string
}

// Aggregator filters raw readings down to one JST day and sums them.
type Aggregator struct {
	logger zerolog.Logger
}

// NewAggregator constructs an Aggregator.
func NewAggregator(logger zerolog.Logger) *Aggregator {
	return &Aggregator{logger: logger.With().Str("component", "aggregator").Logger()}
}

// FilterToLocalDay keeps only readings belonging to the target JST day,
// preserving order. The query window intentionally over-fetches, so dropped
// readings are expected and not logged individually.
func (a *Aggregator) FilterToLocalDay(readings []IntervalReading, day time.Time) []IntervalReading {
	filtered := make([]IntervalReading, 0, len(readings))
	for _, r := range readings {
		if localday.SameDay(r.StartAt, day) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// SumKwh adds up reading values as decimals. A value that fails to parse
// counts as zero; the provider has shipped blank values during outages and
// losing one half-hour slot beats losing the whole day.
func (a *Aggregator) SumKwh(readings []IntervalReading) decimal.Decimal {
	total := decimal.Zero
	for _, r := range readings {
		value, err := decimal.NewFromString(r.Value)
		if err != nil {
			a.logger.Warn().
				Time("start_at", r.StartAt).
				Str("value", r.Value).
				Msg("unparseable reading value treated as zero")
			continue
		}
		total = total.Add(value)
	}
	return total
}
