package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"denki-watcher/internal/app"
	"denki-watcher/internal/localday"
)

var (
	backfillFrom  string
	backfillTo    string
	backfillDelay time.Duration
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Process an inclusive range of past days",
	RunE: func(cmd *cobra.Command, args []string) error {
		if backfillFrom == "" || backfillTo == "" {
			return fmt.Errorf("--from and --to must be provided")
		}

		from, err := localday.Parse(backfillFrom)
		if err != nil {
			return fmt.Errorf("invalid --from value: %w", err)
		}

		to, err := localday.Parse(backfillTo)
		if err != nil {
			return fmt.Errorf("invalid --to value: %w", err)
		}

		if from.After(to) {
			return fmt.Errorf("--from must not be after --to")
		}

		opts := app.BackfillOptions{
			From:  from,
			To:    to,
			Delay: backfillDelay,
		}
		return getApp().Backfill(cmd.Context(), opts)
	},
}

func init() {
	backfillCmd.Flags().StringVar(&backfillFrom, "from", "", "First local date (YYYY-MM-DD, JST, inclusive)")
	backfillCmd.Flags().StringVar(&backfillTo, "to", "", "Last local date (YYYY-MM-DD, JST, inclusive)")
	backfillCmd.Flags().DurationVar(&backfillDelay, "delay", -1, "Inter-day throttle (default: runner.day_delay from config)")
}
