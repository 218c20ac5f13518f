//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-dwh-etl/internal/db"
	"github.com/pgEdge/pgedge-dwh-etl/internal/etl"
	"github.com/pgEdge/pgedge-dwh-etl/internal/logging"
	"github.com/pgEdge/pgedge-dwh-etl/internal/warehouse"
)

// Config holds everything a pipeline run needs. It is built by the caller
// from configuration and passed in explicitly.
type Config struct {
	Dialect warehouse.Dialect

	// CopyParams feeds the staging loads of the copy phase.
	CopyParams etl.CopyParams

	// StagingLoader, when set, fills the staging tables in the copy phase
	// instead of server-side COPY statements.
	StagingLoader StagingLoader

	// State records progress between invocations. Nil disables both the
	// prerequisite check and recording.
	State StateStore

	// Force skips the prerequisite check.
	Force bool
}

// Pipeline runs plans against a warehouse connection.
type Pipeline struct {
	dialect warehouse.Dialect
	params  etl.CopyParams
	loader  StagingLoader
	state   StateStore
	force   bool
}

// New creates a pipeline.
func New(cfg Config) *Pipeline {
	dialect := cfg.Dialect
	if dialect == "" {
		dialect = warehouse.Redshift
	}
	return &Pipeline{
		dialect: dialect,
		params:  cfg.CopyParams,
		loader:  cfg.StagingLoader,
		state:   cfg.State,
		force:   cfg.Force,
	}
}

// Steps returns the steps of a phase in execution order.
func (p *Pipeline) Steps(phase Phase) ([]Step, error) {
	switch phase {
	case Drop:
		return StatementSteps(etl.DropTableQueries()), nil
	case Create:
		return StatementSteps(etl.CreateTableQueries(p.dialect)), nil
	case Copy:
		if p.loader != nil {
			sources := etl.CopySources(p.params)
			steps := make([]Step, len(sources))
			for i, src := range sources {
				steps[i] = LoadStep{Source: src, Loader: p.loader}
			}
			return steps, nil
		}
		stmts, err := etl.CopyTableQueries(p.params)
		if err != nil {
			return nil, err
		}
		return StatementSteps(stmts), nil
	case Insert:
		return StatementSteps(etl.InsertTableQueries()), nil
	}
	return nil, fmt.Errorf("%s is not a runnable phase", phase)
}

// Run executes the plan on conn, one step at a time. It stops at the first
// failing step and returns a *StepError wrapping the cause; the report
// returned alongside covers the steps that completed. Completed phases stay
// applied.
func (p *Pipeline) Run(ctx context.Context, conn db.Conn, plan Plan) (*Report, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	// Resolve every step before touching the warehouse so configuration
	// errors surface first.
	steps := make(map[Phase][]Step, len(plan))
	for _, phase := range plan {
		s, err := p.Steps(phase)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare %s phase: %w", phase, err)
		}
		steps[phase] = s
	}

	if err := p.checkState(ctx, plan); err != nil {
		return nil, err
	}

	report := &Report{Dialect: p.dialect, Plan: plan, Started: time.Now()}

	logging.Info().
		Str("plan", plan.String()).
		Str("dialect", string(p.dialect)).
		Msg("Starting pipeline")

	for _, phase := range plan {
		result, err := p.runPhase(ctx, conn, phase, steps[phase])
		report.Phases = append(report.Phases, result)
		report.Duration = time.Since(report.Started)
		if err != nil {
			return report, err
		}

		if p.state != nil {
			if err := p.state.RecordPhase(ctx, phase); err != nil {
				return report, fmt.Errorf("failed to record %s phase: %w", phase, err)
			}
		}
	}

	logging.Info().
		Str("plan", plan.String()).
		Dur("duration", report.Duration).
		Msg("Pipeline complete")

	return report, nil
}

func (p *Pipeline) checkState(ctx context.Context, plan Plan) error {
	if p.state == nil {
		return nil
	}
	if p.force {
		logging.Warn().
			Str("plan", plan.String()).
			Msg("Skipping phase prerequisite check")
		return nil
	}

	state, err := p.state.LastPhase(ctx)
	if err != nil {
		return fmt.Errorf("failed to read pipeline state: %w", err)
	}
	return plan.Check(state)
}

func (p *Pipeline) runPhase(ctx context.Context, conn db.Conn, phase Phase, steps []Step) (PhaseResult, error) {
	result := PhaseResult{Phase: phase}
	start := time.Now()

	logging.Info().
		Str("phase", phase.String()).
		Int("steps", len(steps)).
		Msg("Starting phase")

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, &StepError{Phase: phase, Step: step.Name(), Table: step.Table(), Err: err}
		}

		stepStart := time.Now()
		rows, err := step.Run(ctx, conn)
		elapsed := time.Since(stepStart)
		if err != nil {
			logging.Error().
				Err(err).
				Str("phase", phase.String()).
				Str("step", step.Name()).
				Msg("Step failed")
			result.Duration = time.Since(start)
			return result, &StepError{Phase: phase, Step: step.Name(), Table: step.Table(), Err: err}
		}

		result.Steps = append(result.Steps, StepResult{
			Name:     step.Name(),
			Table:    step.Table(),
			Rows:     rows,
			Duration: elapsed,
		})

		logging.Debug().
			Str("phase", phase.String()).
			Str("step", step.Name()).
			Str("table", step.Table()).
			Int64("rows", rows).
			Dur("duration", elapsed).
			Msg("Step complete")
	}

	result.Duration = time.Since(start)
	logging.Info().
		Str("phase", phase.String()).
		Dur("duration", result.Duration).
		Msg("Phase complete")

	return result, nil
}
