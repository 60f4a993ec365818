package sim

import "strings"

// WorkflowDef is a collection of parallel WorkflowChains and the think
// time expected between a user's requests.
type WorkflowDef struct {
	Name         string
	Description  string
	ThinkTimeSec int
	Chains       []*WorkflowChain
}

// AllRequiredServiceTypes is the union of every chain's required service
// types.
func (d *WorkflowDef) AllRequiredServiceTypes() map[string]struct{} {
	result := make(map[string]struct{})
	for _, chain := range d.Chains {
		for st := range chain.AllRequiredServiceTypes() {
			result[st] = struct{}{}
		}
	}
	return result
}

// AssignServiceProvider assigns provider to every chain, keyed by the
// provider's service type.
func (d *WorkflowDef) AssignServiceProvider(provider *ServiceProvider) {
	for _, chain := range d.Chains {
		chain.ServiceProviders[provider.Service.ServiceType] = provider
	}
}

// MissingServiceProviders is the union of service types required by one
// or more chains but unsatisfied by any assigned ServiceProvider.
func (d *WorkflowDef) MissingServiceProviders() []string {
	result := make(map[string]struct{})
	for _, chain := range d.Chains {
		for _, missing := range chain.MissingServiceProviders() {
			result[missing] = struct{}{}
		}
	}
	out := make([]string, 0, len(result))
	for st := range result {
		out = append(out, st)
	}
	return out
}

// ClearServiceProviders removes every assigned ServiceProvider from every
// chain.
func (d *WorkflowDef) ClearServiceProviders() {
	for _, chain := range d.Chains {
		chain.ServiceProviders = make(map[string]*ServiceProvider)
	}
}

// GetChain finds a chain by case-insensitive name.
func (d *WorkflowDef) GetChain(name string) *WorkflowChain {
	upper := strings.ToUpper(name)
	for _, chain := range d.Chains {
		if strings.ToUpper(chain.Name) == upper {
			return chain
		}
	}
	return nil
}
