package sim

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// WorkflowKind selects how a Workflow's transaction rate is computed.
type WorkflowKind int

const (
	// UserWorkflow computes its rate from UserCount * Productivity.
	UserWorkflow WorkflowKind = iota
	// TransactionalWorkflow uses TPH (transactions per hour) directly.
	TransactionalWorkflow
)

func (k WorkflowKind) String() string {
	if k == TransactionalWorkflow {
		return "TRANSACTIONAL"
	}
	return "USER"
}

// Workflow is a configured instance of a WorkflowDef with the
// productivity stats that determine how often it fires.
type Workflow struct {
	Name         string
	Description  string
	Definition   *WorkflowDef
	Kind         WorkflowKind
	UserCount    int
	Productivity int // transactions per minute per user, only for UserWorkflow
	TPH          int // transactions per hour, only for TransactionalWorkflow
}

func (w *Workflow) String() string {
	return fmt.Sprintf("%s %s workflow with tx rate %d", w.Kind, w.Definition.Name, w.TransactionRate())
}

// TransactionRate is the number of transactions per hour this Workflow
// fires at.
func (w *Workflow) TransactionRate() int {
	if w.Kind == UserWorkflow {
		return w.UserCount * w.Productivity * 60
	}
	return w.TPH
}

// CalculateNextEventTime picks the clock time of this Workflow's next
// firing. The mean inter-arrival time (ms) is derived from the hourly
// transaction rate; a Normal distribution scaled to 25% of that mean
// gives arrivals a more natural, non-uniform spread. The original
// formula permits drawing a time at or below zero (a same-tick or
// retrograde event); since the scheduler's ordering assumes
// strictly-forward event times, the draw is clamped to a 1ms minimum.
func (w *Workflow) CalculateNextEventTime(clock int, rng *PartitionedRNG) int {
	msPerEvent := 3600000.0 / float64(w.TransactionRate())
	dist := distuv.Normal{Mu: msPerEvent, Sigma: msPerEvent * 0.25, Src: rng.ForSubsystem(SubsystemWorkflows)}
	draw := int(dist.Rand())
	if draw < 1 {
		draw = 1
	}
	return clock + draw
}

// IsValid reports whether Validate returns no messages.
func (w *Workflow) IsValid() bool {
	return len(w.Validate()) == 0
}

// Validate checks the Workflow has at least one chain, that every chain
// is individually valid, and that its transaction rate is non-negative.
func (w *Workflow) Validate() []ValidationMessage {
	var result []ValidationMessage

	if len(w.Definition.Chains) == 0 {
		result = append(result, ValidationMessage{Message: "need at least one configured workflow chain", Source: w.Name})
	}
	for _, chain := range w.Definition.Chains {
		if !chain.IsValid() {
			result = append(result, ValidationMessage{Message: fmt.Sprintf("workflow chain %s is invalid", chain.Name), Source: w.Name})
		}
	}
	if w.TransactionRate() < 0 {
		result = append(result, ValidationMessage{Message: "transaction rate must be greater than or equal to zero", Source: w.Name})
	}

	return result
}

// CreateClientRequests fires this Workflow at clock: every chain in its
// definition is solved independently into a Request, all sharing one
// Transaction.
func (w *Workflow) CreateClientRequests(network []*Link, clock int) (*Transaction, []*Request, error) {
	tx := NewTransaction(clock, w)
	requests := make([]*Request, 0, len(w.Definition.Chains))

	for _, chain := range w.Definition.Chains {
		solution, err := Plan(chain, network)
		if err != nil {
			return nil, nil, fmt.Errorf("planning chain %s: %w", chain.Name, err)
		}
		req := NewRequest("", w.Name, clock, solution, tx.ID)
		requests = append(requests, req)
	}

	return tx, requests, nil
}
