// Package topology models the static switch fabric: the graph of switches and
// links, host-to-switch bindings, and the runtime endpoint of every switch.
// The model is loaded once from a YAML file and never mutated afterwards.
package topology

import (
	"sort"
)

// Edge is one direction of a link: the egress port on the local switch, the
// ingress port on the remote switch, and the link cost.
type Edge struct {
	LocalPort  int
	RemotePort int
	Cost       int
}

// Graph is the adjacency structure: switch -> neighbor -> edge.
// Both directions of every link are stored explicitly.
type Graph map[string]map[string]Edge

// Neighbors returns the neighbor names of u in sorted order.
func (g Graph) Neighbors(u string) []string {
	adj := g[u]
	names := make([]string, 0, len(adj))
	for n := range adj {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Edge returns the edge from u to v, if one exists.
func (g Graph) Edge(u, v string) (Edge, bool) {
	e, ok := g[u][v]
	return e, ok
}

// Switch holds per-switch identity: a small numeric ID used for deterministic
// MAC derivation, and the address of the switch's runtime endpoint.
type Switch struct {
	ID      int    `yaml:"id"`
	Runtime string `yaml:"runtime"`
}

// HostBinding binds a subnet to its edge switch: the attachment port, the
// host's MAC, and the gateway address the host routes through.
type HostBinding struct {
	Subnet  string `yaml:"subnet"`
	Switch  string `yaml:"switch"`
	Port    int    `yaml:"port"`
	MAC     string `yaml:"mac"`
	Gateway string `yaml:"gateway"`
}

// Topology is the immutable fabric model.
type Topology struct {
	Name     string
	switches map[string]Switch
	graph    Graph
	hosts    map[string]HostBinding // keyed by subnet
}

// Graph returns the adjacency structure.
func (t *Topology) Graph() Graph {
	return t.graph
}

// SwitchNames returns all switch names in sorted order.
func (t *Topology) SwitchNames() []string {
	names := make([]string, 0, len(t.switches))
	for n := range t.switches {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// HasSwitch reports whether the named switch exists.
func (t *Topology) HasSwitch(name string) bool {
	_, ok := t.switches[name]
	return ok
}

// GetSwitch returns the switch record for name.
func (t *Topology) GetSwitch(name string) (Switch, bool) {
	sw, ok := t.switches[name]
	return sw, ok
}

// RuntimeAddr returns the runtime endpoint address of the named switch.
func (t *Topology) RuntimeAddr(name string) (string, bool) {
	sw, ok := t.switches[name]
	if !ok {
		return "", false
	}
	return sw.Runtime, true
}

// Bindings returns all host bindings sorted by subnet.
func (t *Topology) Bindings() []HostBinding {
	out := make([]HostBinding, 0, len(t.hosts))
	for _, hb := range t.hosts {
		out = append(out, hb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subnet < out[j].Subnet })
	return out
}

// BindingsOn returns the host bindings attached to the named switch,
// sorted by subnet.
func (t *Topology) BindingsOn(name string) []HostBinding {
	var out []HostBinding
	for _, hb := range t.Bindings() {
		if hb.Switch == name {
			out = append(out, hb)
		}
	}
	return out
}

// IsEdgeSwitch reports whether the named switch hosts at least one subnet.
func (t *Topology) IsEdgeSwitch(name string) bool {
	for _, hb := range t.hosts {
		if hb.Switch == name {
			return true
		}
	}
	return false
}

// Ports returns every port of the named switch known to the topology:
// inter-switch link ports plus host attachment ports. Sorted, deduplicated.
func (t *Topology) Ports(name string) []int {
	seen := make(map[int]bool)
	for _, e := range t.graph[name] {
		seen[e.LocalPort] = true
	}
	for _, hb := range t.hosts {
		if hb.Switch == name {
			seen[hb.Port] = true
		}
	}
	ports := make([]int, 0, len(seen))
	for p := range seen {
		ports = append(ports, p)
	}
	sort.Ints(ports)
	return ports
}
