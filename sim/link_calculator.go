package sim

// CalculateServiceTime implements Calculator for *Link.
//
// service_time = (data_size_kB * 8) / bandwidth_mbps, integer-truncated.
// The factor-of-1000 Mbps<->kbps conversions cancel (spec.md §9 Open
// Questions), so this is the dimensionally-simplified form rather than
// the original's no-op `bandwidth*1000/1000`.
func (l *Link) CalculateServiceTime(req *Request) (int, bool) {
	step := req.CurrentStep()
	if step == nil {
		return 0, false
	}
	return (step.DataSizeKB * 8) / l.BandwidthMbps, true
}

// CalculateLatency implements Calculator for *Link: latency_ms * chatter.
func (l *Link) CalculateLatency(req *Request) (int, bool) {
	step := req.CurrentStep()
	if step == nil {
		return 0, false
	}
	return l.LatencyMs * step.Chatter, true
}

// ProvideQueue implements Calculator for *Link: 2 channels, TRANSMITTING.
func (l *Link) ProvideQueue() *MultiQueue {
	return NewMultiQueue(l, Transmitting, 2)
}
