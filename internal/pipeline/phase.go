//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pipeline runs the warehouse phases in their fixed order: drop,
// create, copy, insert.
package pipeline

import (
	"fmt"
	"strings"
)

// Phase is one stage of the pipeline. Phases are ordered; a plan may only
// run them in ascending order.
type Phase int

const (
	// None is the state of a warehouse no phase has run against.
	None Phase = iota
	Drop
	Create
	Copy
	Insert
)

var phaseNames = map[Phase]string{
	None:   "none",
	Drop:   "drop",
	Create: "create",
	Copy:   "copy",
	Insert: "insert",
}

// String returns the phase name.
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Phases returns every runnable phase in order.
func Phases() []Phase {
	return []Phase{Drop, Create, Copy, Insert}
}

// ParsePhase parses a phase name. "none" is accepted because it is a valid
// recorded state.
func ParsePhase(s string) (Phase, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for p, n := range phaseNames {
		if n == name {
			return p, nil
		}
	}
	return None, fmt.Errorf("unknown phase: %q (valid: drop, create, copy, insert)", s)
}

// Plan is an ordered list of phases to run.
type Plan []Phase

// Named plans.
var (
	PlanCreateTables = Plan{Drop, Create}
	PlanETL          = Plan{Copy, Insert}
	PlanAll          = Plan{Drop, Create, Copy, Insert}
)

// NewPlan builds a plan from the given phases and validates it.
func NewPlan(phases ...Phase) (Plan, error) {
	plan := Plan(phases)
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// ParsePlan parses a comma-separated list of phase names, or "all".
func ParsePlan(s string) (Plan, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return PlanAll, nil
	}

	var phases []Phase
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		p, err := ParsePhase(part)
		if err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}
	return NewPlan(phases...)
}

// Validate checks that the plan is non-empty, holds only runnable phases and
// is strictly ascending.
func (p Plan) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("plan has no phases")
	}
	for i, phase := range p {
		if phase <= None || phase > Insert {
			return fmt.Errorf("%s is not a runnable phase", phase)
		}
		if i > 0 && phase <= p[i-1] {
			return fmt.Errorf("phase %s cannot run after %s", phase, p[i-1])
		}
	}
	return nil
}

// String returns the plan as a comma-separated list.
func (p Plan) String() string {
	names := make([]string, len(p))
	for i, phase := range p {
		names[i] = phase.String()
	}
	return strings.Join(names, ",")
}

// Check simulates the plan from the given recorded state and reports the
// first phase whose prerequisite is not met.
func (p Plan) Check(state Phase) error {
	for _, phase := range p {
		if err := checkTransition(state, phase); err != nil {
			return err
		}
		state = phase
	}
	return nil
}

// checkTransition reports whether phase may run when state is the last
// completed phase. Drop may always run. Create needs a schema that was
// never created or was just dropped; copy needs the tables; insert needs
// loaded staging tables.
func checkTransition(state, phase Phase) error {
	switch phase {
	case Drop:
		return nil
	case Create:
		if state != None && state != Drop {
			return &PrerequisiteError{Phase: phase, State: state,
				Hint: "tables already exist; run drop first"}
		}
	case Copy:
		if state < Create {
			return &PrerequisiteError{Phase: phase, State: state,
				Hint: "tables have not been created"}
		}
	case Insert:
		if state < Copy {
			return &PrerequisiteError{Phase: phase, State: state,
				Hint: "staging tables have not been loaded"}
		}
	}
	return nil
}
