package sim

import (
	"hash/fnv"
	"math/rand"
)

// SimulationKey seeds a simulation run's random streams. Two simulations
// run with the same SimulationKey and an identical Design draw the same
// sequence of workflow inter-arrival times. Request and Transaction IDs
// are random UUIDs and differ between runs.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// SubsystemWorkflows is the RNG subsystem used by Workflow.CalculateNextEventTime.
const SubsystemWorkflows = "workflows"

// PartitionedRNG provides deterministic, isolated RNG instances per
// subsystem, so that one subsystem's random draws can never perturb
// another's by drawing an extra number. Not safe for concurrent use.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{key: key, subsystems: make(map[string]*rand.Rand)}
}

// ForSubsystem returns a deterministically-seeded *rand.Rand for the
// named subsystem, derived by XOR-ing the master seed with an FNV-1a64
// hash of the subsystem name. The same name always returns the same
// cached instance. Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	derivedSeed := int64(p.key) ^ fnv1a64(name)
	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
