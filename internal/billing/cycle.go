package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"denki-watcher/internal/localday"
	"denki-watcher/internal/storage"
)

// DefaultCycleStartDay is the contract's monthly boundary: each billing
// cycle runs from the 23rd through the 22nd of the following month.
const DefaultCycleStartDay = 23

// Cycle is one monthly billing period, inclusive local-date bounds.
type Cycle struct {
	Start time.Time
	End   time.Time
}

// Summary aggregates persisted daily records across one cycle. Days without
// a record contribute zero, so mid-cycle summaries under-report by design.
type Summary struct {
	Cycle     Cycle
	TotalKwh  decimal.Decimal
	TotalCost decimal.Decimal
	Days      int
}

// CycleFor resolves the billing cycle enclosing the given JST date.
// time.Date normalises out-of-range months, which handles the December and
// January rollovers.
func CycleFor(day time.Time, startDay int) Cycle {
	if startDay <= 0 {
		startDay = DefaultCycleStartDay
	}

	local := day.In(localday.JST)
	year, month := local.Year(), local.Month()

	var start time.Time
	if local.Day() < startDay {
		start = time.Date(year, month-1, startDay, 0, 0, 0, 0, localday.JST)
	} else {
		start = time.Date(year, month, startDay, 0, 0, 0, 0, localday.JST)
	}

	end := start.AddDate(0, 1, -1)
	return Cycle{Start: start, End: end}
}

// Contains reports whether a date falls inside the cycle, bounds inclusive.
func (c Cycle) Contains(day time.Time) bool {
	d := localday.Truncate(day)
	return !d.Before(c.Start) && !d.After(c.End)
}

// Summarize folds daily records into a cycle total. Records outside the
// cycle are ignored so callers may pass a generously fetched range.
func Summarize(c Cycle, records []storage.DailyUsage) Summary {
	summary := Summary{Cycle: c}
	for _, rec := range records {
		if !c.Contains(rec.Date) {
			continue
		}
		summary.TotalKwh = summary.TotalKwh.Add(rec.Kwh)
		summary.TotalCost = summary.TotalCost.Add(rec.EstimatedCost)
		summary.Days++
	}
	return summary
}
