package sim

import "fmt"

// Design is the complete configuration of a simulation: the zones and
// network that form its topology, the compute nodes attached to it, the
// service types and providers that handle requests, and the workflow
// definitions and configured workflows that drive traffic through it.
//
// Design owns CRUD for every entity it aggregates, including the
// cascading updates needed to keep dependents consistent when something
// they reference is removed (a removed Zone prunes the compute nodes in
// it; a removed ComputeNode is pruned from every ServiceProvider's node
// list; a removed ServiceDef drops the ServiceProviders built on it; a
// removed ServiceProvider prunes chain assignments
// that referenced it; a removed WorkflowDef prunes configured Workflows
// built from it).
type Design struct {
	Name        string
	Description string

	Zones               []Zone
	Network             []*Link
	Services            map[string]ServiceDef
	ServiceProviders    []*ServiceProvider
	WorkflowDefinitions []*WorkflowDef

	workflows    []*Workflow
	computeNodes []*ComputeNode
}

// NewDesign constructs an empty Design ready to have zones, nodes,
// services and workflows added to it.
func NewDesign(name, desc string) *Design {
	return &Design{Name: name, Description: desc, Services: make(map[string]ServiceDef)}
}

// ComputeNodes returns every physical ComputeNode plus the virtual nodes
// hosted on it. Virtual nodes are never stored directly in the Design;
// they are reached only through their physical host.
func (d *Design) ComputeNodes() []*ComputeNode {
	var result []*ComputeNode
	for _, node := range d.computeNodes {
		switch node.Kind {
		case VirtualNode:
			panic(fmt.Sprintf("virtual node %s should not be in Design.computeNodes", node.NodeName))
		default:
			result = append(result, node)
			result = append(result, node.virtualHosts()...)
		}
	}
	return result
}

// IsValid reports whether Validate returns no messages.
func (d *Design) IsValid() bool {
	return len(d.Validate()) == 0
}

// Validate checks the Design is internally consistent and complete
// enough to run: every ServiceProvider and configured Workflow is valid,
// every Zone is fully connected, every node a ServiceProvider references
// sits in a Zone that is part of the network, and every required
// collection (zones, network, compute nodes, service types, workflow
// definitions, configured workflows) is non-empty.
func (d *Design) Validate() []ValidationMessage {
	var messages []ValidationMessage

	allSPsValid := true
	for _, sp := range d.ServiceProviders {
		if !sp.IsValid() {
			allSPsValid = false
			break
		}
	}
	allZonesConnected := true
	for _, z := range d.Zones {
		if !z.IsFullyConnected(d.Network) {
			allZonesConnected = false
			break
		}
	}
	allWorkflowsValid := true
	for _, w := range d.workflows {
		if !w.IsValid() {
			allWorkflowsValid = false
			break
		}
	}

	zones := AllZones(d.Network)
	for _, w := range d.AllWorkflows() {
		for _, chain := range w.Definition.Chains {
			for _, sp := range chain.ServiceProviders {
				for _, node := range sp.Nodes {
					if _, inNet := zones[node.Zone]; !inNet {
						messages = append(messages, ValidationMessage{
							Message: fmt.Sprintf("node %s is in zone %s which is not in network", node.NodeName, node.Zone.Name),
							Source:  sp.Name,
						})
					}
				}
			}
		}
	}

	if !allSPsValid {
		messages = append(messages, ValidationMessage{Message: "not all service providers are valid", Source: d.Name})
	}
	if !allZonesConnected {
		messages = append(messages, ValidationMessage{Message: "not all zones are fully connected", Source: d.Name})
	}
	if !allWorkflowsValid {
		messages = append(messages, ValidationMessage{Message: "one or more invalid workflows", Source: d.Name})
	}
	if len(d.Zones) == 0 {
		messages = append(messages, ValidationMessage{Message: "no zones defined", Source: d.Name})
	}
	if len(d.Network) == 0 {
		messages = append(messages, ValidationMessage{Message: "no network defined", Source: d.Name})
	}
	if len(d.ComputeNodes()) == 0 {
		messages = append(messages, ValidationMessage{Message: "no compute nodes configured", Source: d.Name})
	}
	if len(d.WorkflowDefinitions) == 0 {
		messages = append(messages, ValidationMessage{Message: "no workflows defined", Source: d.Name})
	}
	if len(d.workflows) == 0 {
		messages = append(messages, ValidationMessage{Message: "no workflows configured", Source: d.Name})
	}
	if len(d.Services) == 0 {
		messages = append(messages, ValidationMessage{Message: "no service types defined", Source: d.Name})
	}

	return messages
}

// AddZone adds zone to the Design along with its self-loop Link, unless
// zone is already present.
func (d *Design) AddZone(zone Zone, localBandwidthMbps, localLatencyMs int) {
	for _, z := range d.Zones {
		if z == zone {
			return
		}
	}
	d.Zones = append(d.Zones, zone)
	d.Network = append(d.Network, &Link{Source: zone, Destination: zone, BandwidthMbps: localBandwidthMbps, LatencyMs: localLatencyMs})
}

// RemoveZone removes zone, every Link touching it, and every
// ComputeNode in it, then cascades the removal to ServiceProviders and
// WorkflowDefinitions that may now reference gone nodes.
func (d *Design) RemoveZone(zone Zone) {
	for i, z := range d.Zones {
		if z == zone {
			d.Zones = append(d.Zones[:i], d.Zones[i+1:]...)
			break
		}
	}
	var remainingNetwork []*Link
	for _, l := range d.Network {
		if l.Source != zone && l.Destination != zone {
			remainingNetwork = append(remainingNetwork, l)
		}
	}
	d.Network = remainingNetwork

	var remainingNodes []*ComputeNode
	for _, n := range d.computeNodes {
		if n.Zone != zone {
			remainingNodes = append(remainingNodes, n)
		}
	}
	d.computeNodes = remainingNodes

	d.updateServiceProviders()
	d.updateWorkflowDefinitions()
}

// GetZone finds a Zone by name.
func (d *Design) GetZone(name string) *Zone {
	for i := range d.Zones {
		if d.Zones[i].Name == name {
			return &d.Zones[i]
		}
	}
	return nil
}

// AddLink appends link to the network, optionally also appending its
// inverse.
func (d *Design) AddLink(link *Link, addReciprocal bool) {
	d.Network = append(d.Network, link)
	if addReciprocal {
		d.Network = append(d.Network, link.Inverted())
	}
}

// RemoveLink removes the first Link pointer-equal to link.
func (d *Design) RemoveLink(link *Link) {
	for i, l := range d.Network {
		if l == link {
			d.Network = append(d.Network[:i], d.Network[i+1:]...)
			return
		}
	}
}

// AddComputeNode registers a physical ComputeNode with the Design.
// Virtual nodes must be attached to their physical host instead of
// added here directly.
func (d *Design) AddComputeNode(node *ComputeNode) {
	if node.Kind == VirtualNode {
		panic("cannot add a virtual node to Design; add it to its physical host")
	}
	d.computeNodes = append(d.computeNodes, node)
}

// RemoveComputeNode removes a physical ComputeNode and cascades the
// removal to ServiceProviders and WorkflowDefinitions.
func (d *Design) RemoveComputeNode(node *ComputeNode) {
	if node.Kind == VirtualNode {
		panic("cannot remove a virtual node from Design; remove it from its physical host")
	}
	for i, n := range d.computeNodes {
		if n == node {
			d.computeNodes = append(d.computeNodes[:i], d.computeNodes[i+1:]...)
			break
		}
	}
	d.updateServiceProviders()
	d.updateWorkflowDefinitions()
}

// GetComputeNode finds a ComputeNode (physical or virtual) by name.
func (d *Design) GetComputeNode(name string) *ComputeNode {
	for _, n := range d.ComputeNodes() {
		if n.NodeName == name {
			return n
		}
	}
	return nil
}

// AddServiceDef registers a ServiceDef, keyed by its service type.
func (d *Design) AddServiceDef(sd ServiceDef) {
	d.Services[sd.ServiceType] = sd
}

// RemoveServiceDef unregisters the ServiceDef for serviceType and
// cascades the removal to ServiceProviders and WorkflowDefinitions.
func (d *Design) RemoveServiceDef(serviceType string) {
	delete(d.Services, serviceType)
	d.updateServiceProviders()
	d.updateWorkflowDefinitions()
}

// AddServiceProvider registers sp, unless an identical pointer is
// already present.
func (d *Design) AddServiceProvider(sp *ServiceProvider) {
	for _, existing := range d.ServiceProviders {
		if existing == sp {
			return
		}
	}
	d.ServiceProviders = append(d.ServiceProviders, sp)
}

// RemoveServiceProvider removes sp and cascades the removal to
// WorkflowDefinitions.
func (d *Design) RemoveServiceProvider(sp *ServiceProvider) {
	for i, existing := range d.ServiceProviders {
		if existing == sp {
			d.ServiceProviders = append(d.ServiceProviders[:i], d.ServiceProviders[i+1:]...)
			break
		}
	}
	d.updateWorkflowDefinitions()
}

// AddWorkflowDef registers wdef.
func (d *Design) AddWorkflowDef(wdef *WorkflowDef) {
	d.WorkflowDefinitions = append(d.WorkflowDefinitions, wdef)
}

// RemoveWorkflowDef removes wdef and cascades the removal to configured
// Workflows built from it.
func (d *Design) RemoveWorkflowDef(wdef *WorkflowDef) {
	for i, existing := range d.WorkflowDefinitions {
		if existing == wdef {
			d.WorkflowDefinitions = append(d.WorkflowDefinitions[:i], d.WorkflowDefinitions[i+1:]...)
			break
		}
	}
	d.updateConfiguredWorkflows()
}

// GetWorkflowDef finds a WorkflowDef by name.
func (d *Design) GetWorkflowDef(name string) *WorkflowDef {
	for _, wdef := range d.WorkflowDefinitions {
		if wdef.Name == name {
			return wdef
		}
	}
	return nil
}

// AddClientWorkflow configures a UserWorkflow instance of wdef.
func (d *Design) AddClientWorkflow(name, desc string, wdef *WorkflowDef, users, productivity int) *Workflow {
	w := &Workflow{Name: name, Description: desc, Definition: wdef, Kind: UserWorkflow, UserCount: users, Productivity: productivity}
	d.workflows = append(d.workflows, w)
	return w
}

// AddTransactionalWorkflow configures a TransactionalWorkflow instance of
// wdef.
func (d *Design) AddTransactionalWorkflow(name, desc string, wdef *WorkflowDef, tph int) *Workflow {
	w := &Workflow{Name: name, Description: desc, Definition: wdef, Kind: TransactionalWorkflow, TPH: tph}
	d.workflows = append(d.workflows, w)
	return w
}

// RemoveWorkflow removes a configured Workflow.
func (d *Design) RemoveWorkflow(w *Workflow) {
	for i, existing := range d.workflows {
		if existing == w {
			d.workflows = append(d.workflows[:i], d.workflows[i+1:]...)
			return
		}
	}
}

// GetWorkflow finds a configured Workflow by name.
func (d *Design) GetWorkflow(name string) *Workflow {
	for _, w := range d.workflows {
		if w.Name == name {
			return w
		}
	}
	return nil
}

// AllWorkflows returns a copy of the configured Workflow list.
func (d *Design) AllWorkflows() []*Workflow {
	result := make([]*Workflow, len(d.workflows))
	copy(result, d.workflows)
	return result
}

// updateServiceProviders drops ServiceProviders whose ServiceDef no
// longer exists, and prunes any node from a surviving provider that is
// no longer part of the Design. Called after a ServiceDef or
// ComputeNode is removed.
func (d *Design) updateServiceProviders() {
	var remaining []*ServiceProvider
	for _, sp := range d.ServiceProviders {
		if _, ok := d.Services[sp.Service.ServiceType]; ok {
			remaining = append(remaining, sp)
		}
	}

	allNodes := make(map[*ComputeNode]struct{})
	for _, n := range d.ComputeNodes() {
		allNodes[n] = struct{}{}
	}
	for _, sp := range remaining {
		var remainingNodes []*ComputeNode
		for _, n := range sp.Nodes {
			if _, ok := allNodes[n]; ok {
				remainingNodes = append(remainingNodes, n)
			}
		}
		sp.Nodes = remainingNodes
	}

	d.ServiceProviders = remaining
}

// updateWorkflowDefinitions drops chain-to-provider assignments whose
// ServiceProvider is no longer part of the Design. Called after a
// ServiceProvider is removed.
func (d *Design) updateWorkflowDefinitions() {
	known := make(map[*ServiceProvider]struct{})
	for _, sp := range d.ServiceProviders {
		known[sp] = struct{}{}
	}
	for _, wdef := range d.WorkflowDefinitions {
		for _, chain := range wdef.Chains {
			remaining := make(map[string]*ServiceProvider)
			for _, sp := range chain.ServiceProviders {
				if _, ok := known[sp]; ok {
					remaining[sp.Service.ServiceType] = sp
				}
			}
			chain.ServiceProviders = remaining
		}
	}
}

// updateConfiguredWorkflows drops configured Workflows whose
// WorkflowDef is no longer part of the Design. Called after a
// WorkflowDef is removed.
func (d *Design) updateConfiguredWorkflows() {
	known := make(map[*WorkflowDef]struct{})
	for _, wdef := range d.WorkflowDefinitions {
		known[wdef] = struct{}{}
	}
	var remaining []*Workflow
	for _, w := range d.workflows {
		if _, ok := known[w.Definition]; ok {
			remaining = append(remaining, w)
		}
	}
	d.workflows = remaining
}

// ProvideQueues returns the MultiQueue for every Link and every
// ComputeNode in the Design.
func (d *Design) ProvideQueues() []*MultiQueue {
	var result []*MultiQueue
	for _, l := range d.Network {
		result = append(result, l.ProvideQueue())
	}
	// ComputeNodes already lists each physical node's virtual hosts.
	for _, n := range d.ComputeNodes() {
		result = append(result, n.ProvideQueue())
	}
	return result
}
