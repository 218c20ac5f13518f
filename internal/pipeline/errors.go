//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package pipeline

import "fmt"

// StepError reports the step a run stopped at. Err is the error returned by
// the database driver or loader, unchanged.
type StepError struct {
	Phase Phase
	Step  string
	Table string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s phase failed at %s: %v", e.Phase, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// PrerequisiteError reports a phase that cannot run from the recorded
// warehouse state.
type PrerequisiteError struct {
	Phase Phase
	State Phase
	Hint  string
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("cannot run %s phase after %s: %s (use --force to override)",
		e.Phase, e.State, e.Hint)
}
