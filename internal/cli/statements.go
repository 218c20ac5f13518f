package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-dwh-etl/internal/etl"
	"github.com/pgEdge/pgedge-dwh-etl/internal/pipeline"
	"github.com/pgEdge/pgedge-dwh-etl/internal/warehouse"
)

var statementsPhase string

var statementsCmd = &cobra.Command{
	Use:   "statements",
	Short: "Print the SQL each pipeline phase executes",
	Long: `Print the statements of one phase, or of every phase, as they would be
sent to the warehouse. No connection is made.

With the postgres dialect the copy phase is carried out by a local loader;
its sources are printed as comments.

Example:
  pgedge-dwh-etl statements --phase insert
  pgedge-dwh-etl statements --config dwh.cfg --phase copy`,
	RunE: runStatements,
}

func init() {
	statementsCmd.Flags().StringVar(&statementsPhase, "phase", "all",
		"phase to print: drop, create, copy, insert (or all)")
}

func runStatements(cmd *cobra.Command, args []string) error {
	plan, err := pipeline.ParsePlan(statementsPhase)
	if err != nil {
		return err
	}
	d, err := cfg.WarehouseDialect()
	if err != nil {
		return err
	}
	return writeStatements(cmd.OutOrStdout(), plan, d, cfg.CopyParams())
}

func writeStatements(w io.Writer, plan pipeline.Plan, d warehouse.Dialect, params etl.CopyParams) error {
	for _, phase := range plan {
		fmt.Fprintf(w, "-- %s\n", phase)

		var stmts []etl.Statement
		switch phase {
		case pipeline.Drop:
			stmts = etl.DropTableQueries()
		case pipeline.Create:
			stmts = etl.CreateTableQueries(d)
		case pipeline.Copy:
			if d == warehouse.Postgres {
				for _, src := range etl.CopySources(params) {
					fmt.Fprintf(w, "-- load %s from %s (json %s)\n",
						src.Table.Name, src.URI, src.JSONPaths)
				}
				fmt.Fprintln(w)
				continue
			}
			copies, err := etl.CopyTableQueries(params)
			if err != nil {
				return err
			}
			stmts = copies
		case pipeline.Insert:
			stmts = etl.InsertTableQueries()
		}
		writeSQL(w, stmts)
	}
	return nil
}

func writeSQL(w io.Writer, stmts []etl.Statement) {
	for _, s := range stmts {
		fmt.Fprintf(w, "-- %s\n%s;\n\n", s.Name, s.SQL)
	}
}
