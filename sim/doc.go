// Package sim implements a discrete-event performance simulator for
// distributed GIS-style compute topologies: zones joined by directed
// links, compute nodes attached to zones, service providers that balance
// work across nodes, and workflows whose firings expand into chains of
// queueing hops through the topology.
//
// The three load-bearing pieces are the solution planner (Plan), the
// multi-channel queue (MultiQueue) and the event-driven scheduler
// (Scheduler). Everything else — topology, compute, workflow definitions
// — is the data these three operate over.
package sim
