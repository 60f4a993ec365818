package sim

import "fmt"

// Zone is an abstract network region that compute nodes attach to.
// Zones are compared by value: two Zones with the same name and
// description are the same zone.
type Zone struct {
	Name        string
	Description string
}

func (z Zone) String() string {
	return fmt.Sprintf("Zone %s", z.Name)
}

// Link is a one-way channel between two Zones. A two-way connection is
// modelled as two Links with swapped endpoints. Source == Destination
// models a Zone's local (intra-zone) traffic.
//
// Links are held by the design and the scheduler as *Link: a network is
// []*Link, not []Link. A MultiQueue's Calculator identity must be by
// pointer, not value (spec.md §9), so the same *Link instance that sits
// in the design's network list is the one the planner puts into solution
// steps and the one the scheduler looks up a queue by.
type Link struct {
	Source        Zone
	Destination   Zone
	BandwidthMbps int
	LatencyMs     int
}

// Name is the derived display name for the Link.
func (l *Link) Name() string {
	return fmt.Sprintf("%s to %s", l.Source.Name, l.Destination.Name)
}

func (l *Link) String() string {
	return fmt.Sprintf("Link %s", l.Name())
}

// Equal reports whether two Links have identical source, destination,
// bandwidth and latency — the value-equality spec.md §3 requires,
// independent of pointer identity.
func (l *Link) Equal(other *Link) bool {
	return l.Source == other.Source &&
		l.Destination == other.Destination &&
		l.BandwidthMbps == other.BandwidthMbps &&
		l.LatencyMs == other.LatencyMs
}

// IsLocal reports whether this Link is a Zone's self-loop.
func (l *Link) IsLocal() bool {
	return l.Source == l.Destination
}

// Inverted returns a new Link with source and destination swapped, used
// by callers that want to model two-way connections.
func (l *Link) Inverted() *Link {
	return &Link{Source: l.Destination, Destination: l.Source, BandwidthMbps: l.BandwidthMbps, LatencyMs: l.LatencyMs}
}

// localLink finds the self-loop for this Zone in the network, if any.
func (z Zone) localLink(network []*Link) *Link {
	for _, l := range network {
		if l.Source == z && l.Destination == z {
			return l
		}
	}
	return nil
}

// entryLinks returns all non-local Links in network whose destination is z.
func (z Zone) entryLinks(network []*Link) []*Link {
	var result []*Link
	for _, l := range network {
		if !l.IsLocal() && l.Destination == z {
			result = append(result, l)
		}
	}
	return result
}

// exitLinks returns all non-local Links in network whose source is z.
func (z Zone) exitLinks(network []*Link) []*Link {
	var result []*Link
	for _, l := range network {
		if !l.IsLocal() && l.Source == z {
			result = append(result, l)
		}
	}
	return result
}

// isSource reports whether z is the source of any Link in network.
func (z Zone) isSource(network []*Link) bool {
	for _, l := range network {
		if l.Source == z {
			return true
		}
	}
	return false
}

// isDestination reports whether z is the destination of any Link in network.
func (z Zone) isDestination(network []*Link) bool {
	for _, l := range network {
		if l.Destination == z {
			return true
		}
	}
	return false
}

// IsFullyConnected reports whether z has a self-loop and at least one
// entry and one exit Link in network.
func (z Zone) IsFullyConnected(network []*Link) bool {
	return z.localLink(network) != nil &&
		len(z.entryLinks(network)) > 0 &&
		len(z.exitLinks(network)) > 0
}

// AllZones returns the set of unique Zones referenced by network.
func AllZones(network []*Link) map[Zone]struct{} {
	result := make(map[Zone]struct{})
	for _, l := range network {
		result[l.Source] = struct{}{}
		result[l.Destination] = struct{}{}
	}
	return result
}

// Route is an ordered sequence of Links constituting a path through a
// network, usually produced by FindRoute.
type Route struct {
	Links []*Link
}

// Count is the number of Links in the Route.
func (r Route) Count() int {
	return len(r.Links)
}

// FindRoute finds a path through network from start to end.
//
// Fails (returns nil) if start is not the source of any Link, end is not
// the destination of any Link, or start has no self-loop. Otherwise it
// performs a depth-first enumeration of all simple paths (visited set on
// Zones, not Links) from start to end using only non-local Links. Among
// paths reaching end, the fewest-links one wins; ties are broken by DFS
// enumeration order (first one found of the minimal length).
//
// The returned Route always begins with start's self-loop.
func FindRoute(start, end Zone, network []*Link) *Route {
	if !start.isSource(network) || !end.isDestination(network) {
		return nil
	}
	local := start.localLink(network)
	if local == nil {
		return nil
	}

	visited := map[Zone]struct{}{start: {}}
	working := []*Link{local}

	path := findRouteDFS(start, end, network, visited, working)
	if len(path) == 0 {
		return nil
	}
	return &Route{Links: path}
}

func findRouteDFS(start, end Zone, network []*Link, visited map[Zone]struct{}, path []*Link) []*Link {
	if start == end {
		return path
	}

	var candidates [][]*Link
	for _, exit := range start.exitLinks(network) {
		if _, seen := visited[exit.Destination]; seen {
			continue
		}
		nextVisited := make(map[Zone]struct{}, len(visited)+1)
		for z := range visited {
			nextVisited[z] = struct{}{}
		}
		nextVisited[exit.Destination] = struct{}{}

		nextPath := make([]*Link, len(path), len(path)+1)
		copy(nextPath, path)
		nextPath = append(nextPath, exit)

		p := findRouteDFS(exit.Destination, end, network, nextVisited, nextPath)
		if len(p) > 0 && p[len(p)-1].Destination == end {
			candidates = append(candidates, p)
		}
	}

	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c) < len(best) {
			best = c
		}
	}
	return best
}
