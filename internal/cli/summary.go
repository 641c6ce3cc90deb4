package cli

import (
	"github.com/spf13/cobra"

	"denki-watcher/internal/app"
	"denki-watcher/internal/localday"
)

var summaryDate string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the billing-cycle summary enclosing a date (default: today)",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.SummaryOptions{}
		if summaryDate != "" {
			day, err := localday.Parse(summaryDate)
			if err != nil {
				return err
			}
			opts.Date = &day
		}
		return getApp().Summary(cmd.Context(), opts)
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryDate, "date", "", "Local date inside the cycle (YYYY-MM-DD, JST)")
}
