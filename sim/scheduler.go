package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// RequestMeteringMode controls how much detail Scheduler records about
// a finished Request.
type RequestMeteringMode int

const (
	// SummaryMetering records one RequestMetric per finished Request,
	// summing every step it passed through.
	SummaryMetering RequestMeteringMode = iota
	// DebugMetering records every per-step RequestMetric a Request
	// accumulated.
	DebugMetering
)

// Scheduler drives the discrete-event simulation: it advances a logical
// clock, firing Workflows and draining MultiQueues in strict clock
// order; when a Workflow firing and a queue completion fall on the same
// clock, the queue completion goes first.
type Scheduler struct {
	Name        string
	Description string
	Design      *Design

	RequestMeteringMode RequestMeteringMode

	clock                   int
	generatingNewRequests   bool
	finishedRequests        []*Request
	queues                  []*MultiQueue
	nextEventTimeByWorkflow map[string]int
	queueMetrics            []QueueMetric
	requestMetrics          []RequestMetric

	rng *PartitionedRNG
}

// NewScheduler constructs a Scheduler against design, seeded with key.
func NewScheduler(name, desc string, design *Design, key SimulationKey) *Scheduler {
	return &Scheduler{
		Name:        name,
		Description: desc,
		Design:      design,
		rng:         NewPartitionedRNG(key),
	}
}

// Clock is the current simulation time, in ms.
func (s *Scheduler) Clock() int {
	return s.clock
}

// FinishedRequests returns every Request that has completed its
// Solution.
func (s *Scheduler) FinishedRequests() []*Request {
	return s.finishedRequests
}

// RequestMetrics returns the metrics recorded for finished Requests, per
// RequestMeteringMode.
func (s *Scheduler) RequestMetrics() []RequestMetric {
	return s.requestMetrics
}

// QueueMetrics returns every QueueMetric gathered by GatherQueueMetrics
// calls so far.
func (s *Scheduler) QueueMetrics() []QueueMetric {
	return s.queueMetrics
}

// Start validates the Design, resets the clock, and seeds the first
// firing time for every configured Workflow. Returns an error (a
// configuration problem, not a bug) if no Design is set or the Design
// fails validation.
func (s *Scheduler) Start() error {
	if s.Design == nil {
		return fmt.Errorf("scheduler %s: design has not been set", s.Name)
	}
	if !s.Design.IsValid() {
		for _, vm := range s.Design.Validate() {
			logrus.Warnf("design %s", vm)
		}
		return fmt.Errorf("scheduler %s: design is not valid", s.Name)
	}

	s.reset()
	s.generatingNewRequests = true
	for _, wf := range s.Design.AllWorkflows() {
		s.nextEventTimeByWorkflow[wf.Name] = wf.CalculateNextEventTime(s.clock, s.rng)
	}
	return nil
}

// Stop halts the generation of new Workflow-triggered Requests; already
// in-flight Requests continue draining through the queues.
func (s *Scheduler) Stop() {
	s.generatingNewRequests = false
}

// reset clears all run state and re-derives the queue list from the
// Design.
func (s *Scheduler) reset() {
	s.clock = 0
	s.finishedRequests = nil
	s.nextEventTimeByWorkflow = make(map[string]int)
	s.queueMetrics = nil
	s.requestMetrics = nil
	if s.Design != nil {
		s.queues = s.Design.ProvideQueues()
	} else {
		s.queues = nil
	}
}

// workflowEvent pairs a Workflow with the clock time it next fires.
type workflowEvent struct {
	workflow *Workflow
	time     int
}

// queueEvent pairs a MultiQueue with the clock time its next channel
// frees up.
type queueEvent struct {
	queue *MultiQueue
	time  int
}

// nextWorkflow finds the Workflow with the earliest pending firing time,
// or nil if new request generation is stopped or there is none pending.
func (s *Scheduler) nextWorkflow() *workflowEvent {
	if s.Design == nil || !s.generatingNewRequests {
		return nil
	}
	var result *workflowEvent
	for name, t := range s.nextEventTimeByWorkflow {
		wf := s.Design.GetWorkflow(name)
		if wf == nil {
			panic(fmt.Sprintf("scheduler %s: could not find workflow named %s in design workflows", s.Name, name))
		}
		if result == nil || t < result.time {
			result = &workflowEvent{workflow: wf, time: t}
		}
	}
	return result
}

// nextQueue finds the MultiQueue whose next occupied channel finishes
// earliest, or nil if no queue has anything in flight.
func (s *Scheduler) nextQueue() *queueEvent {
	var result *queueEvent
	for _, q := range s.queues {
		if t := q.NextEventTime(); t != nil {
			if result == nil || *t < result.time {
				result = &queueEvent{queue: q, time: *t}
			}
		}
	}
	return result
}

// NextEventTime is the clock time of whichever happens first: the next
// Workflow firing or the next queue completion. Returns nil if the
// simulation has nothing left to do.
func (s *Scheduler) NextEventTime() *int {
	wf := s.nextWorkflow()
	q := s.nextQueue()
	if wf == nil && q == nil {
		return nil
	}
	if wf == nil {
		return &q.time
	}
	if q == nil {
		return &wf.time
	}
	if wf.time < q.time {
		return &wf.time
	}
	return &q.time
}

// AdvanceTimeBy advances the clock by ms milliseconds, processing every
// event up to and including the new clock value. ms must be positive.
func (s *Scheduler) AdvanceTimeBy(ms int) (int, error) {
	if ms <= 0 {
		return s.clock, fmt.Errorf("scheduler %s: cannot advance time by a negative amount or zero", s.Name)
	}
	return s.AdvanceTimeTo(s.clock + ms)
}

// AdvanceTimeTo advances the clock to clock, processing every pending
// event whose time is at or before it. clock must be strictly after the
// current clock.
func (s *Scheduler) AdvanceTimeTo(clock int) (int, error) {
	if clock <= s.clock {
		return s.clock, fmt.Errorf("scheduler %s: cannot set clock to %d, which is before or equal to current clock (%d)", s.Name, clock, s.clock)
	}

	for t := s.NextEventTime(); t != nil && *t <= clock; t = s.NextEventTime() {
		s.doNextTask()
	}

	s.clock = clock
	return s.clock, nil
}

// doNextTask processes exactly one event: either a Workflow firing (new
// Requests enter the system) or a queue draining its finished channels
// (Requests move to their next Solution step, or finish). On a clock
// tie, the queue event wins — matching the original engine's tie-break
// of preferring queue drains over new arrivals.
func (s *Scheduler) doNextTask() {
	if s.Design == nil {
		return
	}
	nextWork := s.nextWorkflow()
	nextQ := s.nextQueue()

	var requests []*Request
	now := 0

	switch {
	case nextWork != nil && (nextQ == nil || nextWork.time < nextQ.time):
		_, reqs, err := nextWork.workflow.CreateClientRequests(s.Design.Network, nextWork.time)
		if err != nil {
			logrus.Warnf("scheduler %s: firing workflow %s: %v", s.Name, nextWork.workflow.Name, err)
			s.nextEventTimeByWorkflow[nextWork.workflow.Name] = nextWork.workflow.CalculateNextEventTime(nextWork.time, s.rng)
			return
		}
		requests = reqs
		now = nextWork.time
		s.nextEventTimeByWorkflow[nextWork.workflow.Name] = nextWork.workflow.CalculateNextEventTime(now, s.rng)

	case nextQ != nil:
		for _, fr := range nextQ.queue.RemoveFinishedRequests(nextQ.time) {
			fr.Request.GotoNextStep()
			requests = append(requests, fr.Request)
		}
		now = nextQ.time

	default:
		panic(fmt.Sprintf("scheduler %s: doNextTask called with no pending workflow or queue event", s.Name))
	}

	if len(requests) == 0 {
		panic(fmt.Sprintf("scheduler %s: doNextTask produced no requests to route", s.Name))
	}

	for _, req := range requests {
		if req.IsFinished() {
			s.finishedRequests = append(s.finishedRequests, req)
			if s.RequestMeteringMode == DebugMetering {
				s.requestMetrics = append(s.requestMetrics, req.AccumulatedMetrics...)
			} else {
				s.requestMetrics = append(s.requestMetrics, req.SummaryMetric())
			}
			continue
		}

		step := req.CurrentStep()
		if step == nil {
			panic(fmt.Sprintf("scheduler %s: request %s has an unfinished solution with no current step", s.Name, req.Name))
		}
		queue := s.FindQueue(step.Calculator)
		if queue == nil {
			panic(fmt.Sprintf("scheduler %s: could not find queue for calculator %s", s.Name, step.Calculator.Name()))
		}
		queue.Enqueue(req, now)
	}
}

// FindQueue returns the MultiQueue owned by calc, or nil if none of the
// scheduler's queues is driven by it. Calculator identity is by pointer,
// so two value-equal but distinct *Links resolve to different queues.
func (s *Scheduler) FindQueue(calc Calculator) *MultiQueue {
	for _, q := range s.queues {
		if q.Calculator == calc {
			return q
		}
	}
	return nil
}

// ActiveRequests returns every WaitingRequest currently in channels or
// main queues across the whole scheduler.
func (s *Scheduler) ActiveRequests() []*WaitingRequest {
	var result []*WaitingRequest
	for _, q := range s.queues {
		result = append(result, q.AllWaitingRequests()...)
	}
	return result
}

// GatherQueueMetrics samples every queue's current performance and
// appends the result to QueueMetrics. Virtual-server queues are sampled
// before physical-server queues: each virtual's reported work is
// credited to its physical host's queue first, so a host's utilization
// reflects the work its hosted virtuals absorbed during the same round.
func (s *Scheduler) GatherQueueMetrics() {
	var virtualQueues, physicalQueues, otherQueues []*MultiQueue
	for _, q := range s.queues {
		node, isNode := q.Calculator.(*ComputeNode)
		switch {
		case isNode && node.Kind == VirtualNode:
			virtualQueues = append(virtualQueues, q)
		case isNode && node.Kind == PhysicalNode:
			physicalQueues = append(physicalQueues, q)
		default:
			otherQueues = append(otherQueues, q)
		}
	}

	hostCredit := make(map[*ComputeNode]int)
	for _, q := range virtualQueues {
		vnode := q.Calculator.(*ComputeNode)
		qm := q.GetPerformanceMetric(s.clock)
		s.queueMetrics = append(s.queueMetrics, qm)
		if host := s.physicalHostOf(vnode); host != nil {
			hostCredit[host] += qm.WorkDone
		}
	}

	for _, q := range physicalQueues {
		pnode := q.Calculator.(*ComputeNode)
		if credit, ok := hostCredit[pnode]; ok {
			q.CreditWork(credit)
		}
		s.queueMetrics = append(s.queueMetrics, q.GetPerformanceMetric(s.clock))
	}

	for _, q := range otherQueues {
		s.queueMetrics = append(s.queueMetrics, q.GetPerformanceMetric(s.clock))
	}
}

// physicalHostOf returns the physical ComputeNode hosting vnode, or nil
// if none of the design's compute nodes hosts it.
func (s *Scheduler) physicalHostOf(vnode *ComputeNode) *ComputeNode {
	if s.Design == nil {
		return nil
	}
	for _, host := range s.Design.ComputeNodes() {
		if host.IsPhysicalHostFor(vnode) {
			return host
		}
	}
	return nil
}
