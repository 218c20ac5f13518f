package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-dwh-etl/internal/report"
)

var reportLimit int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print analytical reports over the star schema",
	Long: `Print row counts of every table, the most played songs and artists,
plays by hour of day and by subscription level, and how many plays matched
the song catalog.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportLimit > 0 {
			cfg.Report.Limit = reportLimit
		}

		ctx := context.Background()
		wh, err := connect(ctx)
		if err != nil {
			return err
		}
		defer wh.Close()

		tables, err := report.New(wh.DB, cfg.Report.Limit).Run(ctx)
		if err != nil {
			return err
		}
		report.Render(cmd.OutOrStdout(), tables)
		return nil
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportLimit, "limit", 0,
		"rows in ranked reports (default: 10)")
}
