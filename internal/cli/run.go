package cli

import (
	"github.com/spf13/cobra"

	"denki-watcher/internal/app"
	"denki-watcher/internal/localday"
)

var runDate string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch and record usage for one day (default: yesterday)",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.RunOptions{}
		if runDate != "" {
			day, err := localday.Parse(runDate)
			if err != nil {
				return err
			}
			opts.Date = &day
		}
		return getApp().RunDay(cmd.Context(), opts)
	},
}

func init() {
	runCmd.Flags().StringVar(&runDate, "date", "", "Local date to process (YYYY-MM-DD, JST)")
}
