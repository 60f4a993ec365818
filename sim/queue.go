package sim

// WaitMode records what state a WaitingRequest is in.
type WaitMode int

const (
	Transmitting WaitMode = iota // a Link is moving this request
	Processing                   // a ComputeNode is processing this request
	Queueing                     // waiting in the main queue for a channel
)

func (m WaitMode) String() string {
	switch m {
	case Transmitting:
		return "TRANSMITTING"
	case Processing:
		return "PROCESSING"
	default:
		return "QUEUEING"
	}
}

// WaitingRequest wraps a Request while it occupies a channel or sits in
// a MultiQueue's main queue, tracking the timings needed to produce a
// RequestMetric once it finishes.
type WaitingRequest struct {
	Request     *Request
	WaitStart   int
	ServiceTime *int
	Latency     *int
	WaitMode    WaitMode
	QueueTime   int
}

// QueueEnded transitions a WaitingRequest out of the main queue and into
// a channel, recording how long it waited.
func (w *WaitingRequest) QueueEnded(clock int, mode WaitMode) {
	w.WaitMode = mode
	w.QueueTime = clock - w.WaitStart
}

// WaitEnd returns the simulation clock at which this WaitingRequest will
// finish, or nil if it is still queueing or has no service time.
func (w *WaitingRequest) WaitEnd() *int {
	if w.WaitMode == Queueing || w.ServiceTime == nil {
		return nil
	}
	lat := 0
	if w.Latency != nil {
		lat = *w.Latency
	}
	end := w.WaitStart + *w.ServiceTime + lat + w.QueueTime
	return &end
}

// MultiQueue is one or more parallel channels of work plus a single FIFO
// queue for requests waiting for a channel to free up. Every Calculator
// (a *ComputeNode or a *Link) owns exactly one MultiQueue, created via
// Calculator.ProvideQueue.
//
// Analogy: several bank tellers (channels) and one line (main queue)
// waiting to see a teller.
type MultiQueue struct {
	Calculator      Calculator
	WaitModeKind    WaitMode
	Channels        []*WaitingRequest
	MainQueue       []*WaitingRequest
	lastMetricClock int
	workDone        int
}

// NewMultiQueue builds a MultiQueue with channelCount empty channels.
func NewMultiQueue(calc Calculator, waitMode WaitMode, channelCount int) *MultiQueue {
	return &MultiQueue{
		Calculator:   calc,
		WaitModeKind: waitMode,
		Channels:     make([]*WaitingRequest, channelCount),
	}
}

// Name is the name of the Calculator driving this queue.
func (q *MultiQueue) Name() string {
	return q.Calculator.Name()
}

// AvailableChannelCount is the number of empty channels.
func (q *MultiQueue) AvailableChannelCount() int {
	count := 0
	for _, c := range q.Channels {
		if c == nil {
			count++
		}
	}
	return count
}

// FirstAvailableChannel returns the index of the first empty channel, or
// -1 if all channels are occupied.
func (q *MultiQueue) FirstAvailableChannel() int {
	for i, c := range q.Channels {
		if c == nil {
			return i
		}
	}
	return -1
}

// ChannelsWithRequests returns the indexes of occupied channels.
func (q *MultiQueue) ChannelsWithRequests() []int {
	var result []int
	for i, c := range q.Channels {
		if c != nil {
			result = append(result, i)
		}
	}
	return result
}

// ChannelsWithFinishedRequests returns the indexes of occupied channels
// whose WaitingRequest has finished as of clock.
func (q *MultiQueue) ChannelsWithFinishedRequests(clock int) []int {
	var result []int
	for _, i := range q.ChannelsWithRequests() {
		wr := q.Channels[i]
		if end := wr.WaitEnd(); end != nil && *end <= clock {
			result = append(result, i)
		}
	}
	return result
}

// RequestCount is the total number of requests in channels and the main
// queue.
func (q *MultiQueue) RequestCount() int {
	return len(q.MainQueue) + len(q.Channels) - q.AvailableChannelCount()
}

// NextEventTime returns the clock value when the next occupied channel
// will finish, or nil if nothing is being processed.
func (q *MultiQueue) NextEventTime() *int {
	var result *int
	for _, i := range q.ChannelsWithRequests() {
		if end := q.Channels[i].WaitEnd(); end != nil {
			if result == nil || *end < *result {
				result = end
			}
		}
	}
	return result
}

// FinishedRequest pairs a Request that has completed a step with the
// metric describing that step.
type FinishedRequest struct {
	Request *Request
	Metric  RequestMetric
}

// RemoveFinishedRequests advances the clock: every channel whose request
// has finished is unwrapped and returned along with its metric, and
// backfilled from the main queue if anything is waiting there.
func (q *MultiQueue) RemoveFinishedRequests(clock int) []FinishedRequest {
	finished := q.ChannelsWithFinishedRequests(clock)
	var result []FinishedRequest

	for _, i := range finished {
		wr := q.Channels[i]
		if wr == nil {
			continue
		}
		st := 0
		if wr.ServiceTime != nil {
			st = *wr.ServiceTime
		}
		lt := 0
		if wr.Latency != nil {
			lt = *wr.Latency
		}
		metric := RequestMetric{
			Source:       q.Name(),
			Clock:        clock,
			RequestName:  wr.Request.Name,
			WorkflowName: wr.Request.WorkflowName,
			ServiceTime:  st,
			QueueTime:    wr.QueueTime,
			LatencyTime:  lt,
		}
		result = append(result, FinishedRequest{Request: wr.Request, Metric: metric})
		wr.Request.RecordMetric(metric)
		q.logWorkDone(wr, clock)

		if len(q.MainQueue) > 0 {
			queued := q.MainQueue[0]
			q.MainQueue = q.MainQueue[1:]
			queued.QueueEnded(clock, q.WaitModeKind)
			q.Channels[i] = queued
		} else {
			q.Channels[i] = nil
		}
	}

	return result
}

// Enqueue wraps request's current step's service/latency time and places
// it in the first available channel, or at the back of the main queue if
// every channel is occupied. No-op if request has no current step.
func (q *MultiQueue) Enqueue(request *Request, clock int) {
	if request.CurrentStep() == nil {
		return
	}

	st, stOK := q.Calculator.CalculateServiceTime(request)
	lt, ltOK := q.Calculator.CalculateLatency(request)
	var stPtr, ltPtr *int
	if stOK {
		stPtr = &st
	}
	if ltOK {
		ltPtr = &lt
	}

	if idx := q.FirstAvailableChannel(); idx >= 0 {
		q.Channels[idx] = &WaitingRequest{Request: request, WaitStart: clock, ServiceTime: stPtr, Latency: ltPtr, WaitMode: q.WaitModeKind}
	} else {
		q.MainQueue = append(q.MainQueue, &WaitingRequest{Request: request, WaitStart: clock, ServiceTime: stPtr, Latency: ltPtr, WaitMode: Queueing})
	}
}

// AllWaitingRequests returns every WaitingRequest in channels and the
// main queue.
func (q *MultiQueue) AllWaitingRequests() []*WaitingRequest {
	result := make([]*WaitingRequest, 0, len(q.Channels)+len(q.MainQueue))
	for _, c := range q.Channels {
		if c != nil {
			result = append(result, c)
		}
	}
	return append(result, q.MainQueue...)
}

// GetPerformanceMetric produces a QueueMetric describing how busy this
// queue has been since the last call, and resets the work-done window.
func (q *MultiQueue) GetPerformanceMetric(clock int) QueueMetric {
	waiting := q.AllWaitingRequests()
	for _, wr := range waiting {
		q.logWorkDone(wr, clock)
	}

	kind := "UNKNOWN"
	switch calc := q.Calculator.(type) {
	case *ComputeNode:
		kind = calc.Kind.MetricKind()
	case *Link:
		kind = "CONNECTION"
	}

	qm := QueueMetric{
		Source:         q.Name(),
		CalculatorKind: kind,
		Clock:          clock,
		ChannelCount:   len(q.Channels),
		RequestCount:   len(waiting),
		Utilization:    q.calcUtilization(clock),
		WorkDone:       q.workDone,
	}
	q.workDone = 0
	q.lastMetricClock = clock
	return qm
}

// CreditWork adds externally-reported work (e.g. rolled up from a
// hosted virtual node's queue) to this queue's work-done total for the
// current sampling window, before GetPerformanceMetric is called.
func (q *MultiQueue) CreditWork(amount int) {
	q.workDone += amount
}

// logWorkDone credits the work a WaitingRequest has contributed to this
// queue's busy time since the last metric sample, clipping to the
// sampling window on both ends so work outside [lastMetricClock, clock]
// is not double counted.
func (q *MultiQueue) logWorkDone(wr *WaitingRequest, clock int) {
	end := wr.WaitEnd()
	if wr.ServiceTime == nil || end == nil {
		return
	}
	totalWork := *wr.ServiceTime
	if wr.WaitStart < q.lastMetricClock {
		totalWork -= q.lastMetricClock - wr.WaitStart
	}
	if clock < *end {
		totalWork -= *end - clock
	}
	if totalWork < 0 {
		totalWork = 0
	}
	q.workDone += totalWork
}

// calcUtilization is the fraction (1.0 == 100%) of available channel-time
// that was spent doing work since the last metric sample.
func (q *MultiQueue) calcUtilization(clock int) float64 {
	window := clock - q.lastMetricClock
	maxWork := window * len(q.Channels)
	if maxWork == 0 {
		return 0
	}
	return float64(q.workDone) / float64(maxWork)
}
