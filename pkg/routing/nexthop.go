package routing

import (
	"fmt"
	"sort"

	"github.com/flowplane-net/flowplane/pkg/topology"
)

// NextHop is one forwarding choice out of a switch: the local egress port and
// the MAC the neighbor exposes on its receiving port.
type NextHop struct {
	Port int
	MAC  string
}

// NextHopSet maps each destination switch to its deduplicated next hops,
// sorted by egress port. Member order is observable downstream (ECMP group
// indices), so it must not depend on map iteration order.
type NextHopSet map[string][]NextHop

// ResolveNextHops reduces a path set to next-hop sets. For every destination
// other than the source, the first hop of each minimal path is looked up in
// the graph for its egress port, and the neighbor's receiving-port MAC is
// derived from the topology. Paths sharing a first hop collapse to one entry.
func ResolveNextHops(topo *topology.Topology, source string, paths PathSet) (NextHopSet, error) {
	g := topo.Graph()
	out := make(NextHopSet, len(paths))

	for dest, pathList := range paths {
		if dest == source {
			continue
		}
		seen := make(map[NextHop]bool)
		var hops []NextHop
		for _, p := range pathList {
			if len(p) < 2 {
				return nil, fmt.Errorf("malformed path %v to %s: no first hop", p, dest)
			}
			first := p[1]
			e, ok := g.Edge(source, first)
			if !ok {
				return nil, fmt.Errorf("path %v to %s: %s is not adjacent to %s", p, dest, first, source)
			}
			mac, err := topo.PortMAC(first, e.RemotePort)
			if err != nil {
				return nil, fmt.Errorf("resolving next hop %s for %s: %w", first, dest, err)
			}
			nh := NextHop{Port: e.LocalPort, MAC: mac}
			if !seen[nh] {
				seen[nh] = true
				hops = append(hops, nh)
			}
		}
		// Ports are unique per switch, so port order is total.
		sort.Slice(hops, func(i, j int) bool { return hops[i].Port < hops[j].Port })
		out[dest] = hops
	}

	return out, nil
}
