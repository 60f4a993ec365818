package sim

import (
	"fmt"

	"github.com/google/uuid"
)

// Transaction identifies the set of Requests created by a single firing
// of a Workflow — one per WorkflowChain in the workflow's definition.
type Transaction struct {
	ID          string
	RequestTime int
	Workflow    *Workflow
}

// NewTransaction creates a Transaction for workflow, firing at clock.
func NewTransaction(clock int, workflow *Workflow) *Transaction {
	return &Transaction{ID: uuid.NewString(), RequestTime: clock, Workflow: workflow}
}

// SolutionStep is one unit of work a Request must pass through a
// Calculator to complete. Produced by the planner; consumed one at a
// time as the Request moves through the scheduler.
type SolutionStep struct {
	Calculator    Calculator
	IsResponse    bool
	DataSizeKB    int
	Chatter       int
	ComputeTimeMs int
}

// Solution is the ordered list of SolutionSteps a Request must complete,
// built once by the planner and then drained one step at a time.
type Solution struct {
	Steps []SolutionStep
}

// IsFinished reports whether every step of the Solution has been
// completed.
func (s *Solution) IsFinished() bool {
	return len(s.Steps) == 0
}

// CurrentStep returns the first remaining step, or nil if finished.
func (s *Solution) CurrentStep() *SolutionStep {
	if len(s.Steps) == 0 {
		return nil
	}
	return &s.Steps[0]
}

// GotoNextStep drops the first remaining step, moving the Solution
// forward.
func (s *Solution) GotoNextStep() {
	if len(s.Steps) > 0 {
		s.Steps = s.Steps[1:]
	}
}

// Request represents a single chain of work generated by a Workflow's
// firing, moving through a Solution one step at a time as the scheduler
// processes it.
type Request struct {
	Name             string
	Description      string
	WorkflowName     string
	RequestClock     int
	Solution         *Solution
	TransactionID    string
	AccumulatedMetrics []RequestMetric
}

// NewRequest creates a Request with a unique name.
func NewRequest(desc, workflowName string, requestClock int, solution *Solution, txID string) *Request {
	return &Request{
		Name:          fmt.Sprintf("CR-%s", uuid.NewString()),
		Description:   desc,
		WorkflowName:  workflowName,
		RequestClock:  requestClock,
		Solution:      solution,
		TransactionID: txID,
	}
}

// CurrentStep is a convenience accessor on the underlying Solution.
func (r *Request) CurrentStep() *SolutionStep {
	return r.Solution.CurrentStep()
}

// GotoNextStep is a convenience accessor on the underlying Solution.
func (r *Request) GotoNextStep() {
	r.Solution.GotoNextStep()
}

// IsFinished reports whether the Request's Solution is finished.
func (r *Request) IsFinished() bool {
	return r.Solution.IsFinished()
}

// RecordMetric appends a per-step metric to the Request's running total.
func (r *Request) RecordMetric(m RequestMetric) {
	r.AccumulatedMetrics = append(r.AccumulatedMetrics, m)
}

// SummaryMetric sums every metric recorded against this Request into a
// single RequestMetric with Source "Summary", using the clock of the
// first recorded metric.
func (r *Request) SummaryMetric() RequestMetric {
	summary := RequestMetric{Source: "Summary", RequestName: r.Name, WorkflowName: r.WorkflowName}
	if len(r.AccumulatedMetrics) > 0 {
		summary.Clock = r.AccumulatedMetrics[0].Clock
		for _, m := range r.AccumulatedMetrics {
			summary.ServiceTime += m.ServiceTime
			summary.QueueTime += m.QueueTime
			summary.LatencyTime += m.LatencyTime
		}
	}
	return summary
}
