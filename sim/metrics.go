package sim

// QueueMetric reports how busy a MultiQueue is as of clock. Produced by
// MultiQueue.GetPerformanceMetric and consumed by the scheduler's
// periodic metric gathering.
type QueueMetric struct {
	Source        string
	CalculatorKind string
	Clock         int
	ChannelCount  int
	RequestCount  int
	Utilization   float64
	// WorkDone is the raw work-done total credited during this sampling
	// window (before the window reset). The scheduler uses it to roll a
	// virtual node's queue work up into its physical host's queue before
	// the host is sampled.
	WorkDone int
}

// RequestMetric reports the service, queue and latency time a Request
// experienced at one MultiQueue, or the accumulated total across every
// queue it passed through (Source == "Summary").
type RequestMetric struct {
	Source       string
	Clock        int
	RequestName  string
	WorkflowName string
	ServiceTime  int
	QueueTime    int
	LatencyTime  int
}
