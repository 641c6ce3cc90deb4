package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"denki-watcher/internal/localday"
	"denki-watcher/internal/storage"
)

func TestCycleFor(t *testing.T) {
	tests := []struct {
		name      string
		day       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "before boundary",
			day:       localday.Date(2024, time.March, 10),
			wantStart: localday.Date(2024, time.February, 23),
			wantEnd:   localday.Date(2024, time.March, 22),
		},
		{
			name:      "on boundary",
			day:       localday.Date(2024, time.March, 23),
			wantStart: localday.Date(2024, time.March, 23),
			wantEnd:   localday.Date(2024, time.April, 22),
		},
		{
			name:      "january rolls back to december",
			day:       localday.Date(2024, time.January, 10),
			wantStart: localday.Date(2023, time.December, 23),
			wantEnd:   localday.Date(2024, time.January, 22),
		},
		{
			name:      "december rolls forward to january",
			day:       localday.Date(2024, time.December, 25),
			wantStart: localday.Date(2024, time.December, 23),
			wantEnd:   localday.Date(2025, time.January, 22),
		},
		{
			name:      "day 22 is the last day of the previous cycle",
			day:       localday.Date(2024, time.March, 22),
			wantStart: localday.Date(2024, time.February, 23),
			wantEnd:   localday.Date(2024, time.March, 22),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cycle := CycleFor(tt.day, DefaultCycleStartDay)
			if !cycle.Start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", cycle.Start, tt.wantStart)
			}
			if !cycle.End.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", cycle.End, tt.wantEnd)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	cycle := CycleFor(localday.Date(2024, time.March, 10), DefaultCycleStartDay)

	records := []storage.DailyUsage{
		{
			Date:          localday.Date(2024, time.February, 23),
			Kwh:           decimal.NewFromFloat(10.5),
			EstimatedCost: decimal.NewFromFloat(245.61),
		},
		{
			Date:          localday.Date(2024, time.March, 22),
			Kwh:           decimal.NewFromFloat(8.0),
			EstimatedCost: decimal.NewFromFloat(194.06),
		},
		{
			// outside the cycle, must be ignored
			Date:          localday.Date(2024, time.March, 23),
			Kwh:           decimal.NewFromFloat(99),
			EstimatedCost: decimal.NewFromFloat(9999),
		},
	}

	summary := Summarize(cycle, records)

	if summary.Days != 2 {
		t.Errorf("days = %d, want 2", summary.Days)
	}
	if summary.TotalKwh.StringFixed(3) != "18.500" {
		t.Errorf("total kwh = %s, want 18.500", summary.TotalKwh.StringFixed(3))
	}
	if summary.TotalCost.StringFixed(2) != "439.67" {
		t.Errorf("total cost = %s, want 439.67", summary.TotalCost.StringFixed(2))
	}
}

func TestSummarizeEmpty(t *testing.T) {
	cycle := CycleFor(localday.Date(2024, time.March, 10), DefaultCycleStartDay)
	summary := Summarize(cycle, nil)
	if summary.Days != 0 || !summary.TotalKwh.IsZero() || !summary.TotalCost.IsZero() {
		t.Errorf("empty summarize should be all zero, got %+v", summary)
	}
}
