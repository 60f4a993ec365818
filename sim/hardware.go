package sim

import "fmt"

// baselinePerCore is the calibration constant workflow step service times
// are expressed relative to (spec.md §4.3).
const baselinePerCore = 10.0

// HardwareProfile describes a processor: its core count and its
// SPECintRate2017 score. Immutable once constructed.
type HardwareProfile struct {
	Processor        string
	Cores            int
	SPECintRate2017  float64
}

func (h HardwareProfile) String() string {
	return fmt.Sprintf("HW %s cores:%d spec:%.1f", h.Processor, h.Cores, h.SPECintRate2017)
}

// PerCoreScore is the SPECintRate2017 score divided across cores.
func (h HardwareProfile) PerCoreScore() float64 {
	return h.SPECintRate2017 / float64(h.Cores)
}

// ThreadingPolicy affects the effective per-core score of a ComputeNode.
type ThreadingPolicy int

const (
	Physical ThreadingPolicy = iota
	Hyperthreaded
)

// Factor is the multiplier applied to per-core performance for this policy.
func (t ThreadingPolicy) Factor() float64 {
	if t == Hyperthreaded {
		return 0.5
	}
	return 1.0
}
