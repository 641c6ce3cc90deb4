package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"denki-watcher/internal/app"
	"denki-watcher/internal/localday"
)

var (
	exportFrom    string
	exportTo      string
	exportPNGPath string
	exportCSVPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export daily usage as CSV and/or PNG chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			PNGPath: exportPNGPath,
			CSVPath: exportCSVPath,
		}

		if exportFrom != "" {
			from, err := localday.Parse(exportFrom)
			if err != nil {
				return fmt.Errorf("invalid --from value: %w", err)
			}
			opts.From = &from
		}

		if exportTo != "" {
			to, err := localday.Parse(exportTo)
			if err != nil {
				return fmt.Errorf("invalid --to value: %w", err)
			}
			opts.To = &to
		}

		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First local date (YYYY-MM-DD, JST, inclusive)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last local date (YYYY-MM-DD, JST, inclusive)")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Write a PNG chart to this path")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Write CSV data to this path")
}
