package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-dwh-etl/internal/logging"
	"github.com/pgEdge/pgedge-dwh-etl/internal/pipeline"
	"github.com/pgEdge/pgedge-dwh-etl/internal/staging"
	"github.com/pgEdge/pgedge-dwh-etl/internal/warehouse"
)

var (
	runPhases string
	runForce  bool
)

var createTablesCmd = &cobra.Command{
	Use:   "create-tables",
	Short: "Drop and recreate the staging and star schema tables",
	Long: `Drop all seven tables if they exist and create them again, empty.
Running it twice in a row leaves the same empty schema.

Example:
  pgedge-dwh-etl create-tables --config dwh.cfg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlan(cmd, pipeline.PlanCreateTables)
	},
}

var etlCmd = &cobra.Command{
	Use:   "etl",
	Short: "Load the staging tables and populate the star schema",
	Long: `Bulk-load the event logs and song metadata into the staging tables,
then populate songplays, users, songs, artists and time from them.

The tables must have been created with 'create-tables' first. Running etl
again without recreating the tables appends duplicate rows.

Example:
  pgedge-dwh-etl etl --config dwh.cfg
  pgedge-dwh-etl etl --dialect postgres --connection "postgres://..."`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlan(cmd, pipeline.PlanETL)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an arbitrary ascending sequence of pipeline phases",
	Long: `Run the given pipeline phases in order. Phases are drop, create, copy
and insert; they must be listed in that order, each at most once.

Example:
  pgedge-dwh-etl run
  pgedge-dwh-etl run --phases insert --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := pipeline.ParsePlan(runPhases)
		if err != nil {
			return err
		}
		return runPlan(cmd, plan)
	},
}

func init() {
	for _, c := range []*cobra.Command{createTablesCmd, etlCmd, runCmd} {
		c.Flags().BoolVar(&runForce, "force", false,
			"skip the check that earlier phases have completed")
	}
	runCmd.Flags().StringVar(&runPhases, "phases", "all",
		"comma-separated phases: drop, create, copy, insert (or all)")
}

func runPlan(cmd *cobra.Command, plan pipeline.Plan) error {
	if err := plan.Validate(); err != nil {
		return err
	}

	// Validate configuration
	if slices.Contains(plan, pipeline.Copy) {
		if err := cfg.ValidateCopy(); err != nil {
			return err
		}
	} else if err := cfg.Validate(); err != nil {
		return err
	}
	d, _ := cfg.WarehouseDialect()

	ctx, cancel := signalContext()
	defer cancel()

	wh, err := connect(ctx)
	if err != nil {
		return err
	}
	defer wh.Close()

	// Every statement of the run shares one session.
	conn, err := wh.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	pcfg := pipeline.Config{
		Dialect:    d,
		CopyParams: cfg.CopyParams(),
		State:      pipeline.NewMetadataState(conn, d),
		Force:      runForce,
	}
	if d == warehouse.Postgres {
		pcfg.StagingLoader = staging.NewLoader(objectStore())
	}

	report, err := pipeline.New(pcfg).Run(ctx, conn, plan)
	if report != nil {
		report.Write(cmd.OutOrStdout())
	}
	if err != nil {
		if ctx.Err() != nil {
			logging.Info().Msg("Pipeline stopped")
			return fmt.Errorf("pipeline interrupted: %w", err)
		}
		return err
	}
	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
