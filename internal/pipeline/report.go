package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/pgEdge/pgedge-dwh-etl/internal/warehouse"
)

// StepResult is the outcome of one completed step.
type StepResult struct {
	Name     string
	Table    string
	Rows     int64
	Duration time.Duration
}

// PhaseResult collects the steps completed in one phase.
type PhaseResult struct {
	Phase    Phase
	Steps    []StepResult
	Duration time.Duration
}

// Report summarizes a pipeline run.
type Report struct {
	Dialect  warehouse.Dialect
	Plan     Plan
	Phases   []PhaseResult
	Started  time.Time
	Duration time.Duration
}

// StepCount returns the number of completed steps.
func (r *Report) StepCount() int {
	n := 0
	for _, p := range r.Phases {
		n += len(p.Steps)
	}
	return n
}

// Rows returns the rows affected by the named step, and whether it ran.
func (r *Report) Rows(step string) (int64, bool) {
	for _, p := range r.Phases {
		for _, s := range p.Steps {
			if s.Name == step {
				return s.Rows, true
			}
		}
	}
	return 0, false
}

// Write renders the report as a table.
func (r *Report) Write(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Phase", "Step", "Table", "Rows", "Duration"})

	for _, p := range r.Phases {
		for _, s := range p.Steps {
			rows := "-"
			if s.Rows >= 0 {
				rows = fmt.Sprintf("%d", s.Rows)
			}
			table.Append([]string{
				p.Phase.String(),
				s.Name,
				s.Table,
				rows,
				s.Duration.Round(time.Millisecond).String(),
			})
		}
	}
	table.SetFooter([]string{"", "", "", "Total", r.Duration.Round(time.Millisecond).String()})
	table.Render()
}
