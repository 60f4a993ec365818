package sim

import "testing"

// stubCalculator is a minimal Calculator for queue tests that don't need
// a real ComputeNode or Link.
type stubCalculator struct {
	name        string
	serviceTime int
	latency     int
	hasLatency  bool
}

func (s *stubCalculator) CalculateServiceTime(req *Request) (int, bool) {
	if req.CurrentStep() == nil {
		return 0, false
	}
	return s.serviceTime, true
}

func (s *stubCalculator) CalculateLatency(req *Request) (int, bool) {
	return s.latency, s.hasLatency
}

func (s *stubCalculator) ProvideQueue() *MultiQueue {
	return NewMultiQueue(s, Processing, 1)
}

func (s *stubCalculator) Name() string { return s.name }

func newTestRequest(serviceSteps int) *Request {
	steps := make([]SolutionStep, serviceSteps)
	return NewRequest("", "wf", 0, &Solution{Steps: steps}, "tx-1")
}

func TestMultiQueue_Enqueue_FillsChannelBeforeMainQueue(t *testing.T) {
	// GIVEN a MultiQueue with 2 channels
	calc := &stubCalculator{name: "calc", serviceTime: 10}
	q := NewMultiQueue(calc, Processing, 2)

	// WHEN 3 requests are enqueued at clock 0
	r1, r2, r3 := newTestRequest(1), newTestRequest(1), newTestRequest(1)
	q.Enqueue(r1, 0)
	q.Enqueue(r2, 0)
	q.Enqueue(r3, 0)

	// THEN the first two occupy channels and the third waits in the main queue
	if q.AvailableChannelCount() != 0 {
		t.Errorf("expected 0 available channels, got %d", q.AvailableChannelCount())
	}
	if len(q.MainQueue) != 1 {
		t.Fatalf("expected 1 request in main queue, got %d", len(q.MainQueue))
	}
	if q.MainQueue[0].Request != r3 {
		t.Errorf("expected r3 to be the queued request")
	}
}

func TestMultiQueue_RemoveFinishedRequests_BackfillsFromMainQueue(t *testing.T) {
	// GIVEN a single-channel queue with one request processing and one waiting
	calc := &stubCalculator{name: "calc", serviceTime: 10}
	q := NewMultiQueue(calc, Processing, 1)
	r1, r2 := newTestRequest(1), newTestRequest(1)
	q.Enqueue(r1, 0)
	q.Enqueue(r2, 0)

	// WHEN the clock advances past r1's finish time
	finished := q.RemoveFinishedRequests(10)

	// THEN r1 is reported finished and r2 moves into the freed channel
	if len(finished) != 1 || finished[0].Request != r1 {
		t.Fatalf("expected r1 to be reported finished, got %+v", finished)
	}
	if q.Channels[0] == nil || q.Channels[0].Request != r2 {
		t.Errorf("expected r2 to have moved into the channel")
	}
	if len(q.MainQueue) != 0 {
		t.Errorf("expected main queue to be empty after backfill")
	}
}

func TestMultiQueue_NextEventTime_IsEarliestChannelFinish(t *testing.T) {
	calc := &stubCalculator{name: "calc", serviceTime: 10}
	q := NewMultiQueue(calc, Processing, 2)
	r1, r2 := newTestRequest(1), newTestRequest(1)
	q.Enqueue(r1, 0)
	q.Enqueue(r2, 5)

	next := q.NextEventTime()
	if next == nil {
		t.Fatalf("expected a next event time")
	}
	if *next != 10 {
		t.Errorf("expected next event time 10 (r1 finishing), got %d", *next)
	}
}

func TestMultiQueue_Utilization_FullyBusyWindow(t *testing.T) {
	// GIVEN a single-channel queue continuously busy from clock 0 to 10
	calc := &stubCalculator{name: "calc", serviceTime: 10}
	q := NewMultiQueue(calc, Processing, 1)
	r1 := newTestRequest(1)
	q.Enqueue(r1, 0)

	// WHEN the metric is sampled exactly at the request's finish time
	qm := q.GetPerformanceMetric(10)

	// THEN utilization is 100% for the fully-busy window
	if qm.Utilization != 1.0 {
		t.Errorf("expected utilization 1.0, got %f", qm.Utilization)
	}
}

// spec.md's stable CalculatorKind values are CLIENT/P_SERVER/V_SERVER/
// CONNECTION/UNKNOWN; ComputeNodeKind.String()'s display names
// (PHYSICAL/VIRTUAL) must never leak into this field.
func TestMultiQueue_GetPerformanceMetric_CalculatorKindIsStable(t *testing.T) {
	z := zone("Z")
	hw := HardwareProfile{Processor: "generic", Cores: 4, SPECintRate2017: 40}

	physical := NewComputeNode("P", "", hw, 16, z, PhysicalNode)
	if qm := physical.ProvideQueue().GetPerformanceMetric(0); qm.CalculatorKind != "P_SERVER" {
		t.Errorf("expected P_SERVER, got %s", qm.CalculatorKind)
	}

	virtual := physical.AddVirtualHost("V", 2, 8)
	if qm := virtual.ProvideQueue().GetPerformanceMetric(0); qm.CalculatorKind != "V_SERVER" {
		t.Errorf("expected V_SERVER, got %s", qm.CalculatorKind)
	}

	client := NewComputeNode("C", "", hw, 16, z, ClientNode)
	if qm := client.ProvideQueue().GetPerformanceMetric(0); qm.CalculatorKind != "CLIENT" {
		t.Errorf("expected CLIENT, got %s", qm.CalculatorKind)
	}

	link := &Link{Source: z, Destination: z, BandwidthMbps: 100, LatencyMs: 0}
	if qm := link.ProvideQueue().GetPerformanceMetric(0); qm.CalculatorKind != "CONNECTION" {
		t.Errorf("expected CONNECTION, got %s", qm.CalculatorKind)
	}
}

func TestWaitingRequest_WaitEnd_NilWhileQueueing(t *testing.T) {
	st := 5
	wr := &WaitingRequest{WaitStart: 0, ServiceTime: &st, WaitMode: Queueing}
	if wr.WaitEnd() != nil {
		t.Errorf("expected nil WaitEnd while queueing")
	}
}
