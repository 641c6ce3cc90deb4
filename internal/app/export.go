package app

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"denki-watcher/internal/localday"
	"denki-watcher/internal/storage"
)

// Export renders daily usage history as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	to := localday.Truncate(time.Now())
	if opts.To != nil {
		to = localday.Truncate(*opts.To)
	}

	from := to.AddDate(0, -3, 0)
	if opts.From != nil {
		from = localday.Truncate(*opts.From)
	}

	if from.After(to) {
		return errors.New("from must not be after to")
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListUsageBetween(ctx, from, to)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		a.Logger.Info().Msg("no usage records found for export window")
		return nil
	}

	a.Logger.Info().Int("records", len(records)).Msg("exporting daily usage")

	if opts.CSVPath != "" {
		if err := writeUsageCSV(opts.CSVPath, records); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeUsagePNG(opts.PNGPath, records); err != nil {
			return err
		}
	}

	return nil
}

func writeUsageCSV(path string, records []storage.DailyUsage) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"date", "kwh", "estimated_cost"}); err != nil {
		return err
	}

	for _, rec := range records {
		row := []string{
			rec.Date.In(localday.JST).Format(localday.DateLayout),
			rec.Kwh.StringFixed(3),
			rec.EstimatedCost.StringFixed(2),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeUsagePNG(path string, records []storage.DailyUsage) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(records))
	kwh := make([]float64, len(records))
	cost := make([]float64, len(records))
	for i, rec := range records {
		x[i] = rec.Date
		kwh[i] = rec.Kwh.InexactFloat64()
		cost[i] = rec.EstimatedCost.InexactFloat64()
	}

	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Usage (kWh)",
		},
		YAxisSecondary: chart.YAxis{
			Name: "Estimated cost (JPY)",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "kWh",
				XValues: x,
				YValues: kwh,
			},
			chart.TimeSeries{
				Name:    "Cost",
				XValues: x,
				YValues: cost,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
