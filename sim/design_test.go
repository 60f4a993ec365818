package sim

import "testing"

func minimalValidDesign() *Design {
	d := NewDesign("D", "")
	z := zone("Z")
	other := zone("Other")
	d.AddZone(z, 1000, 1)
	d.AddZone(other, 1000, 1)
	// A fully-connected zone needs at least one non-local entry and exit
	// link, even if nothing ever actually routes through them.
	d.AddLink(&Link{Source: z, Destination: other, BandwidthMbps: 100, LatencyMs: 5}, true)

	hw := HardwareProfile{Processor: "generic", Cores: 4, SPECintRate2017: 40}
	node := NewComputeNode("N", "", hw, 16, z, PhysicalNode)
	d.AddComputeNode(node)

	sd := ServiceDef{Name: "web", ServiceType: "web", BalancingPolicy: Single}
	d.AddServiceDef(sd)
	sp := NewServiceProvider("S_web", "", sd, []*ComputeNode{node}, nil)
	d.AddServiceProvider(sp)

	chain := NewWorkflowChain("chain", "", []WorkflowStep{{Name: "step", ServiceType: "web", ComputeTimeMs: 10}},
		map[string]*ServiceProvider{"web": sp}, nil)
	wdef := &WorkflowDef{Name: "wdef", Chains: []*WorkflowChain{chain}}
	d.AddWorkflowDef(wdef)
	d.AddTransactionalWorkflow("wf", "", wdef, 100)

	return d
}

func TestDesign_MinimalDesign_IsValid(t *testing.T) {
	d := minimalValidDesign()
	if !d.IsValid() {
		t.Errorf("expected minimal design to be valid, got messages: %v", d.Validate())
	}
}

func TestDesign_Validate_EmptyDesignReportsEverything(t *testing.T) {
	d := NewDesign("Empty", "")
	messages := d.Validate()
	if len(messages) == 0 {
		t.Fatalf("expected an empty design to report validation messages")
	}
}

func TestDesign_RemoveZone_PrunesNodesAndCascades(t *testing.T) {
	d := minimalValidDesign()
	z := d.Zones[0]

	d.RemoveZone(z)

	if len(d.ComputeNodes()) != 0 {
		t.Errorf("expected removing a zone to prune its compute nodes")
	}
	if len(d.ServiceProviders[0].Nodes) != 0 {
		t.Errorf("expected removing a zone's only node to prune it from the service provider")
	}
}

func TestDesign_RemoveComputeNode_PrunesServiceProviderNodes(t *testing.T) {
	d := minimalValidDesign()
	node := d.ServiceProviders[0].Nodes[0]

	d.RemoveComputeNode(node)

	if len(d.ServiceProviders[0].Nodes) != 0 {
		t.Errorf("expected removing the only node to leave the provider with zero nodes")
	}
}

func TestDesign_RemoveServiceProvider_PrunesChainAssignment(t *testing.T) {
	d := minimalValidDesign()
	sp := d.ServiceProviders[0]

	d.RemoveServiceProvider(sp)

	chain := d.WorkflowDefinitions[0].Chains[0]
	if len(chain.ServiceProviders) != 0 {
		t.Errorf("expected removing a service provider to clear chain assignments referencing it")
	}
}

func TestDesign_RemoveWorkflowDef_PrunesConfiguredWorkflows(t *testing.T) {
	d := minimalValidDesign()
	wdef := d.WorkflowDefinitions[0]

	d.RemoveWorkflowDef(wdef)

	if len(d.AllWorkflows()) != 0 {
		t.Errorf("expected removing a workflow def to prune workflows built from it")
	}
}

func TestDesign_AddComputeNode_PanicsOnVirtualNode(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic when adding a virtual node directly to a design")
		}
	}()
	d := NewDesign("D", "")
	v := &ComputeNode{NodeName: "V", Kind: VirtualNode}
	d.AddComputeNode(v)
}

func TestDesign_ProvideQueues_OneQueuePerLinkAndNode(t *testing.T) {
	d := minimalValidDesign()
	queues := d.ProvideQueues()

	// 2 self-loops + Z->Other + Other->Z + 1 compute node
	if len(queues) != 5 {
		t.Errorf("expected 5 queues (4 links + 1 node), got %d", len(queues))
	}
}
