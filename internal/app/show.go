package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"denki-watcher/internal/billing"
	"denki-watcher/internal/localday"
)

// Show prints recent daily records.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListRecentUsage(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "no usage records found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Date (JST)\tkWh\tEstimated Cost (JPY)")
	for _, rec := range records {
		fmt.Fprintf(writer, "%s\t%s\t%s\n",
			rec.Date.In(localday.JST).Format(localday.DateLayout),
			rec.Kwh.StringFixed(3),
			rec.EstimatedCost.StringFixed(2),
		)
	}
	writer.Flush()
	return nil
}

// Summary prints the billing-cycle totals for the cycle enclosing a date
// (default: today). Missing days contribute zero, so a mid-cycle summary is
// a running partial total.
func (a *App) Summary(ctx context.Context, opts SummaryOptions) error {
	day := localday.Truncate(time.Now())
	if opts.Date != nil {
		day = localday.Truncate(*opts.Date)
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	cycle := billing.CycleFor(day, a.Config.Billing.CycleStartDay)
	records, err := store.ListUsageBetween(ctx, cycle.Start, cycle.End)
	if err != nil {
		return err
	}
	summary := billing.Summarize(cycle, records)

	fmt.Fprintf(os.Stdout, "Billing cycle %s ~ %s\n",
		cycle.Start.Format(localday.DateLayout),
		cycle.End.Format(localday.DateLayout),
	)
	fmt.Fprintf(os.Stdout, "Days recorded:  %d\n", summary.Days)
	fmt.Fprintf(os.Stdout, "Total usage:    %s kWh\n", summary.TotalKwh.StringFixed(3))
	fmt.Fprintf(os.Stdout, "Estimated cost: %s JPY\n", summary.TotalCost.StringFixed(2))
	return nil
}
