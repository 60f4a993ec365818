package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScheduler_Start_NilDesign_ReturnsError(t *testing.T) {
	s := NewScheduler("sched", "", nil, NewSimulationKey(1))
	if err := s.Start(); err == nil {
		t.Errorf("expected error when starting a scheduler with no design")
	}
}

func TestScheduler_Start_InvalidDesign_ReturnsError(t *testing.T) {
	s := NewScheduler("sched", "", NewDesign("Empty", ""), NewSimulationKey(1))
	if err := s.Start(); err == nil {
		t.Errorf("expected error when starting a scheduler with an invalid design")
	}
}

func TestScheduler_AdvanceTimeTo_RejectsNonForwardClock(t *testing.T) {
	s := NewScheduler("sched", "", minimalValidDesign(), NewSimulationKey(1))
	if err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := s.AdvanceTimeTo(0); err == nil {
		t.Errorf("expected error advancing to the current clock")
	}
}

func TestScheduler_AdvanceTimeBy_RejectsNonPositiveDelta(t *testing.T) {
	s := NewScheduler("sched", "", minimalValidDesign(), NewSimulationKey(1))
	if err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := s.AdvanceTimeBy(0); err == nil {
		t.Errorf("expected error advancing time by zero")
	}
}

func TestScheduler_FindQueue_IdentityNotValue(t *testing.T) {
	// GIVEN two distinct, value-equal Links
	z1, z2 := zone("A"), zone("B")
	l1 := &Link{Source: z1, Destination: z2, BandwidthMbps: 100, LatencyMs: 5}
	l2 := &Link{Source: z1, Destination: z2, BandwidthMbps: 100, LatencyMs: 5}

	d := NewDesign("D", "")
	d.Network = []*Link{l1, l2}
	s := NewScheduler("sched", "", d, NewSimulationKey(1))
	s.queues = []*MultiQueue{l1.ProvideQueue(), l2.ProvideQueue()}

	// THEN each Link's queue is found by pointer identity, not value
	q1 := s.FindQueue(l1)
	q2 := s.FindQueue(l2)
	if q1 == q2 {
		t.Errorf("expected distinct queues for value-equal but pointer-distinct Links")
	}
	if q1.Calculator != Calculator(l1) {
		t.Errorf("expected FindQueue(l1) to resolve l1's own queue")
	}
}

// spec.md §4.6 requires virtual-server queues to be sampled before their
// physical host, crediting the host's work-done total with whatever the
// virtual reported, so a host's utilization reflects work done by its
// virtuals even when the host's own queue never directly processed
// anything this window.
func TestScheduler_GatherQueueMetrics_CreditsVirtualWorkToPhysicalHost(t *testing.T) {
	z := zone("Z")
	hw := HardwareProfile{Processor: "generic", Cores: 4, SPECintRate2017: 40}
	p := NewComputeNode("P", "", hw, 64, z, PhysicalNode)
	v := p.AddVirtualHost("V", 2, 16)

	d := NewDesign("D", "")
	d.AddZone(z, 1000, 0)
	d.AddComputeNode(p)

	s := NewScheduler("sched", "", d, NewSimulationKey(1))
	s.queues = d.ProvideQueues()

	vq := v.ProvideQueue()
	req := newTestRequest(1)
	req.Solution.Steps[0].ComputeTimeMs = 10
	vq.Enqueue(req, 0)
	s.clock = 10

	s.GatherQueueMetrics()

	var virtualMetric, physicalMetric *QueueMetric
	for i := range s.queueMetrics {
		qm := s.queueMetrics[i]
		switch qm.CalculatorKind {
		case "V_SERVER":
			virtualMetric = &qm
		case "P_SERVER":
			physicalMetric = &qm
		}
	}
	if virtualMetric == nil || physicalMetric == nil {
		t.Fatalf("expected both a virtual and a physical QueueMetric, got %+v", s.queueMetrics)
	}
	if virtualMetric.Utilization <= 0 {
		t.Fatalf("expected the virtual queue to report nonzero utilization")
	}
	if physicalMetric.Utilization <= 0 {
		t.Errorf("expected the physical host's utilization to reflect its virtual's work, got %f", physicalMetric.Utilization)
	}
}

// End-to-end smoke test grounded on Scenario A: a single-zone round trip
// with one node should run to completion and report a summary metric
// whose service time equals the sum of the chain's per-step compute
// times with no latency contribution.
func TestScheduler_RunToCompletion_SingleZoneRoundTrip(t *testing.T) {
	l := zone("L")
	d := NewDesign("D", "")
	d.AddZone(l, 1000, 0)

	hw := HardwareProfile{Processor: "generic", Cores: 10, SPECintRate2017: 100}
	p := NewComputeNode("P", "", hw, 16, l, PhysicalNode)
	p.Threading = Physical // per-core 10.0 == baseline, so compute times are unadjusted
	d.AddComputeNode(p)

	sd := ServiceDef{Name: "web", ServiceType: "web", BalancingPolicy: Single}
	d.AddServiceDef(sd)
	sp := NewServiceProvider("S_web", "", sd, []*ComputeNode{p}, nil)
	d.AddServiceProvider(sp)

	steps := []WorkflowStep{
		{Name: "client-step", ServiceType: "web", ComputeTimeMs: 20, RequestSizeKB: 100, ResponseSizeKB: 2134},
		{Name: "web-step", ServiceType: "web", ComputeTimeMs: 18, RequestSizeKB: 100, ResponseSizeKB: 2134},
	}
	chain := NewWorkflowChain("chain", "", steps, map[string]*ServiceProvider{"web": sp}, nil)
	wdef := &WorkflowDef{Name: "wdef", Chains: []*WorkflowChain{chain}}
	d.AddWorkflowDef(wdef)
	d.AddTransactionalWorkflow("wf", "", wdef, 3600) // fires roughly every second

	// A single zone has no other zone to route to or from, so it can
	// never be "fully connected" under Design.Validate's rule; drive the
	// scheduler directly off a hand-built Solution instead of Start/
	// AdvanceTimeTo, which require a valid Design.
	solution, err := Plan(chain, d.Network)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	s := NewScheduler("sched", "", d, NewSimulationKey(1))
	s.queues = d.ProvideQueues()

	req := NewRequest("", "wf", 0, solution, "tx-1")
	step := req.CurrentStep()
	queue := s.FindQueue(step.Calculator)
	if queue == nil {
		t.Fatalf("expected a queue for the first solution step")
	}
	queue.Enqueue(req, 0)

	for !req.IsFinished() {
		next := queue.NextEventTime()
		if next == nil {
			t.Fatalf("expected a pending completion while the request is unfinished")
		}
		for _, fr := range queue.RemoveFinishedRequests(*next) {
			fr.Request.GotoNextStep()
		}
		if !req.IsFinished() {
			step = req.CurrentStep()
			queue = s.FindQueue(step.Calculator)
			if queue == nil {
				t.Fatalf("expected a queue for step calculator %s", step.Calculator.Name())
			}
			queue.Enqueue(req, *next)
		}
	}

	summary := req.SummaryMetric()
	require.Equal(t, 76, summary.ServiceTime, "summary service time should be the sum of forward+retrace compute times")
	require.Equal(t, 0, summary.LatencyTime, "a single-zone round trip contributes no link latency")
	require.Equal(t, "wf", summary.WorkflowName)
}
