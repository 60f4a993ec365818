package sim

import "fmt"

// ServiceProvider is one or more ComputeNodes assigned to handle a
// particular ServiceDef's requests, balanced across nodes per its
// BalancingPolicy.
type ServiceProvider struct {
	Name        string
	Description string
	Service     ServiceDef
	Nodes       []*ComputeNode
	Tags        map[string]struct{}

	primary int
}

// NewServiceProvider constructs a ServiceProvider with an empty tag set
// if tags is nil.
func NewServiceProvider(name, desc string, service ServiceDef, nodes []*ComputeNode, tags map[string]struct{}) *ServiceProvider {
	if tags == nil {
		tags = make(map[string]struct{})
	}
	return &ServiceProvider{Name: name, Description: desc, Service: service, Nodes: nodes, Tags: tags}
}

// Primary is the index of the ComputeNode that will handle the next
// request. Always 0 for BalancingPolicy Single.
func (p *ServiceProvider) Primary() int {
	if p.Service.BalancingPolicy == Single {
		return 0
	}
	return p.primary
}

// SetPrimary changes the primary index. Out-of-range values are ignored.
func (p *ServiceProvider) SetPrimary(value int) {
	if value < 0 || value >= len(p.Nodes) {
		return
	}
	p.primary = value
}

// RotatePrimary advances the primary index to the next node, wrapping
// around, and returns the new index.
func (p *ServiceProvider) RotatePrimary() int {
	p.primary = (p.primary + 1) % len(p.Nodes)
	return p.primary
}

// HandlerNode returns the ComputeNode currently designated to handle the
// next request. For BalancingPolicy RoundRobin, the primary rotates
// every call — so successive calls (e.g. a forward hop and its retrace)
// may return different nodes. Returns nil if no nodes are assigned.
func (p *ServiceProvider) HandlerNode() *ComputeNode {
	if len(p.Nodes) == 0 {
		return nil
	}
	result := p.Nodes[p.primary]
	if p.Service.BalancingPolicy == RoundRobin {
		p.RotatePrimary()
	}
	return result
}

// AddNode appends node to the provider's node list, unless doing so would
// violate the BalancingPolicy's node-count constraints (SINGLE allows at
// most one node, FAILOVER at most two).
func (p *ServiceProvider) AddNode(node *ComputeNode) {
	if p.Service.BalancingPolicy == Single && len(p.Nodes) > 0 {
		return
	}
	if p.Service.BalancingPolicy == Failover && len(p.Nodes) > 1 {
		return
	}
	p.Nodes = append(p.Nodes, node)
}

// RemoveNode removes node from the provider's node list and resets the
// primary index to 0. No-op if node is not present.
func (p *ServiceProvider) RemoveNode(node *ComputeNode) {
	for i, n := range p.Nodes {
		if n == node {
			p.Nodes = append(p.Nodes[:i], p.Nodes[i+1:]...)
			p.primary = 0
			return
		}
	}
}

// IsValid reports whether Validate returns no messages.
func (p *ServiceProvider) IsValid() bool {
	return len(p.Validate()) == 0
}

// Validate checks that the provider has at least one node and that a
// handler node can be produced.
func (p *ServiceProvider) Validate() []ValidationMessage {
	var messages []ValidationMessage
	if len(p.Nodes) == 0 {
		messages = append(messages, ValidationMessage{Message: "service provider must have at least one node", Source: p.Name})
	}
	if p.HandlerNode() == nil {
		messages = append(messages, ValidationMessage{Message: "service provider handler node is nil", Source: p.Name})
	}
	return messages
}

func (p *ServiceProvider) String() string {
	return fmt.Sprintf("ServiceProvider %s (%s)", p.Name, p.Service.ServiceType)
}
