package sim

import "fmt"

// WorkflowChain is an ordered series of WorkflowSteps, each mapped to the
// ServiceProvider that will handle it. Most WorkflowDefs have more than
// one chain, each independent of the others.
//
// Example chain: mobile client -> web adaptor -> portal -> relational
// data store.
type WorkflowChain struct {
	Name             string
	Description      string
	Steps            []WorkflowStep
	ServiceProviders map[string]*ServiceProvider
}

// NewWorkflowChain builds a WorkflowChain, optionally prepending
// additionalClientStep ahead of steps.
func NewWorkflowChain(name, desc string, steps []WorkflowStep, providers map[string]*ServiceProvider, additionalClientStep *WorkflowStep) *WorkflowChain {
	if additionalClientStep != nil {
		steps = append([]WorkflowStep{*additionalClientStep}, steps...)
	}
	if providers == nil {
		providers = make(map[string]*ServiceProvider)
	}
	return &WorkflowChain{Name: name, Description: desc, Steps: steps, ServiceProviders: providers}
}

// IsValid reports whether Validate returns no messages.
func (c *WorkflowChain) IsValid() bool {
	return len(c.Validate()) == 0
}

// Validate reports a ValidationMessage for every service type required by
// the chain's steps that has no configured ServiceProvider.
func (c *WorkflowChain) Validate() []ValidationMessage {
	var result []ValidationMessage
	for _, missing := range c.MissingServiceProviders() {
		result = append(result, ValidationMessage{Message: fmt.Sprintf("missing service provider for %s", missing), Source: c.Name})
	}
	return result
}

// UpdateClientStep replaces the first step of the chain. Useful when
// multiple chains differ only in their originating client.
func (c *WorkflowChain) UpdateClientStep(clientStep WorkflowStep) {
	if len(c.Steps) == 0 {
		c.Steps = []WorkflowStep{clientStep}
		return
	}
	c.Steps[0] = clientStep
}

// AllRequiredServiceTypes is the set of every service type named by the
// chain's steps.
func (c *WorkflowChain) AllRequiredServiceTypes() map[string]struct{} {
	result := make(map[string]struct{})
	for _, step := range c.Steps {
		result[step.ServiceType] = struct{}{}
	}
	return result
}

// ConfiguredServiceTypes is the set of service types with an assigned
// ServiceProvider.
func (c *WorkflowChain) ConfiguredServiceTypes() map[string]struct{} {
	result := make(map[string]struct{})
	for st := range c.ServiceProviders {
		result[st] = struct{}{}
	}
	return result
}

// MissingServiceProviders is the service types required by the chain's
// steps but not satisfied by a configured ServiceProvider.
func (c *WorkflowChain) MissingServiceProviders() []string {
	required := c.AllRequiredServiceTypes()
	configured := c.ConfiguredServiceTypes()
	var missing []string
	for st := range required {
		if _, ok := configured[st]; !ok {
			missing = append(missing, st)
		}
	}
	return missing
}

// ServiceProviderForStep returns the configured ServiceProvider matching
// step's service type, or nil.
func (c *WorkflowChain) ServiceProviderForStep(step WorkflowStep) *ServiceProvider {
	return c.ServiceProviders[step.ServiceType]
}

// ServiceProviderForStepAtIndex returns the configured ServiceProvider
// for the step at index, or nil for an out-of-range index or unmapped
// service type.
func (c *WorkflowChain) ServiceProviderForStepAtIndex(index int) *ServiceProvider {
	if index < 0 || index >= len(c.Steps) {
		return nil
	}
	return c.ServiceProviderForStep(c.Steps[index])
}
