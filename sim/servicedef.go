package sim

import (
	"fmt"
	"strings"
)

// BalancingPolicy is the strategy a ServiceProvider uses to pick which of
// its ComputeNodes handles the next request.
type BalancingPolicy int

const (
	Single BalancingPolicy = iota
	RoundRobin
	Failover
	Containerized
	OtherPolicy
)

func (b BalancingPolicy) String() string {
	switch b {
	case Single:
		return "SINGLE"
	case RoundRobin:
		return "ROUND_ROBIN"
	case Failover:
		return "FAILOVER"
	case Containerized:
		return "CONTAINERIZED"
	default:
		return "OTHER"
	}
}

// BalancingPolicyFromString parses a string into a BalancingPolicy,
// falling back to OtherPolicy for anything unrecognized.
func BalancingPolicyFromString(value string) BalancingPolicy {
	switch strings.ToUpper(value) {
	case "1", "SINGLE":
		return Single
	case "ROUNDROBIN", "ROUND_ROBIN":
		return RoundRobin
	case "FAILOVER":
		return Failover
	case "CONTAINER", "CONTAINERIZED":
		return Containerized
	default:
		return OtherPolicy
	}
}

// ServiceDef tags a ServiceProvider with the type of service it offers
// and how requests directed at it are balanced across nodes.
type ServiceDef struct {
	Name            string
	Description     string
	ServiceType     string
	BalancingPolicy BalancingPolicy
}

func (s ServiceDef) String() string {
	return fmt.Sprintf("ServiceDef %s (%s, %s)", s.Name, s.ServiceType, s.BalancingPolicy)
}
