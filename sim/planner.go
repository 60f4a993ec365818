package sim

import "fmt"

// Plan solves one WorkflowChain into a Solution: a request travels
// forward through the chain's steps in order, then retraces back to the
// originating client in reverse.
//
// For every step, the request is handled by that step's ServiceProvider,
// and zero or more network hops are inserted to cross Zones between one
// step's handler node and the next. Providers are re-resolved at every
// hop (forward and retrace both call HandlerNode), so a ROUND_ROBIN
// provider visited twice in one chain's solving may hand back a
// different node on the way back than it did on the way out — this is
// intentional, not a bug to paper over.
func Plan(chain *WorkflowChain, network []*Link) (*Solution, error) {
	if !chain.IsValid() {
		return nil, fmt.Errorf("workflow chain %s passed to Plan must be valid", chain.Name)
	}

	step := chain.Steps[0]
	sourceSP := chain.ServiceProviderForStep(step)
	if sourceSP == nil {
		return nil, fmt.Errorf("service provider for %s was nil", step.Name)
	}
	sourceNode := sourceSP.HandlerNode()
	if sourceNode == nil {
		return nil, fmt.Errorf("handler node for service provider %s was nil", sourceSP.Name)
	}

	var steps []SolutionStep
	steps = append(steps, SolutionStep{
		Calculator:    sourceNode,
		IsResponse:    false,
		DataSizeKB:    step.RequestSizeKB,
		Chatter:       0,
		ComputeTimeMs: step.ComputeTimeMs,
	})

	for i := 1; i < len(chain.Steps); i++ {
		step = chain.Steps[i]
		destSP := chain.ServiceProviderForStepAtIndex(i)
		if destSP == nil {
			return nil, fmt.Errorf("service provider for %s was nil", step.Name)
		}
		destNode := destSP.HandlerNode()
		if destNode == nil {
			return nil, fmt.Errorf("handler node for service provider %s was nil", destSP.Name)
		}

		if sourceNode.Zone != destNode.Zone {
			route := FindRoute(sourceNode.Zone, destNode.Zone, network)
			if route == nil {
				return nil, fmt.Errorf("could not find route from zone %s to zone %s", sourceNode.Zone.Name, destNode.Zone.Name)
			}
			for _, link := range route.Links {
				steps = append(steps, SolutionStep{
					Calculator: link,
					IsResponse: false,
					DataSizeKB: step.RequestSizeKB,
					Chatter:    step.Chatter,
				})
			}
		}

		steps = append(steps, SolutionStep{
			Calculator:    destNode,
			IsResponse:    false,
			DataSizeKB:    step.RequestSizeKB,
			Chatter:       0,
			ComputeTimeMs: step.ComputeTimeMs,
		})
		sourceNode = destNode
	}

	for i := len(chain.Steps) - 2; i >= 0; i-- {
		step = chain.Steps[i]
		destSP := chain.ServiceProviderForStepAtIndex(i)
		if destSP == nil {
			return nil, fmt.Errorf("service provider for %s was nil", step.Name)
		}
		destNode := destSP.HandlerNode()
		if destNode == nil {
			return nil, fmt.Errorf("handler node for service provider %s was nil", destSP.Name)
		}

		if sourceNode.Zone != destNode.Zone {
			route := FindRoute(sourceNode.Zone, destNode.Zone, network)
			if route == nil {
				return nil, fmt.Errorf("could not find route from zone %s to zone %s", sourceNode.Zone.Name, destNode.Zone.Name)
			}
			for _, link := range route.Links {
				steps = append(steps, SolutionStep{
					Calculator: link,
					IsResponse: true,
					DataSizeKB: step.ResponseSizeKB,
					Chatter:    step.Chatter,
				})
			}
		}

		steps = append(steps, SolutionStep{
			Calculator:    destNode,
			IsResponse:    true,
			DataSizeKB:    step.ResponseSizeKB,
			Chatter:       0,
			ComputeTimeMs: step.ComputeTimeMs,
		})
		sourceNode = destNode
	}

	return &Solution{Steps: steps}, nil
}
