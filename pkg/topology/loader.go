package topology

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/flowplane-net/flowplane/pkg/util"
)

// topologyFile is the YAML on-disk representation.
type topologyFile struct {
	Name     string                 `yaml:"name"`
	Switches map[string]Switch      `yaml:"switches"`
	Links    []linkSpec             `yaml:"links"`
	Hosts    map[string]HostBinding `yaml:"hosts"`
}

// linkSpec describes one bidirectional link. Both directed edges are
// constructed from it; symmetry comes from the file format, not from code.
type linkSpec struct {
	A     string `yaml:"a"`
	APort int    `yaml:"a_port"`
	B     string `yaml:"b"`
	BPort int    `yaml:"b_port"`
	Cost  int    `yaml:"cost"` // defaults to 1
}

// Load parses a topology YAML file and validates it.
func Load(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology file: %w", err)
	}
	return Parse(data)
}

// Parse builds a validated Topology from YAML bytes.
func Parse(data []byte) (*Topology, error) {
	var tf topologyFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing topology YAML: %w", err)
	}

	if err := validateFile(&tf); err != nil {
		return nil, err
	}

	t := &Topology{
		Name:     tf.Name,
		switches: tf.Switches,
		graph:    make(Graph, len(tf.Switches)),
		hosts:    make(map[string]HostBinding, len(tf.Hosts)),
	}
	for name := range tf.Switches {
		t.graph[name] = make(map[string]Edge)
	}
	for _, l := range tf.Links {
		cost := l.Cost
		if cost == 0 {
			cost = 1
		}
		t.graph[l.A][l.B] = Edge{LocalPort: l.APort, RemotePort: l.BPort, Cost: cost}
		t.graph[l.B][l.A] = Edge{LocalPort: l.BPort, RemotePort: l.APort, Cost: cost}
	}
	for hostName, hb := range tf.Hosts {
		if _, dup := t.hosts[hb.Subnet]; dup {
			return nil, util.NewValidationError(
				fmt.Sprintf("host %s: subnet %s bound more than once", hostName, hb.Subnet))
		}
		t.hosts[hb.Subnet] = hb
	}

	if err := validateGraph(t); err != nil {
		return nil, err
	}
	return t, nil
}

// validateFile checks the raw file before graph construction.
func validateFile(tf *topologyFile) error {
	var v util.ValidationBuilder

	v.Add(len(tf.Switches) > 0, "at least one switch is required")

	seenIDs := make(map[int]string)
	for name, sw := range tf.Switches {
		v.Add(sw.ID > 0, fmt.Sprintf("switch %s: id must be positive", name))
		v.Add(sw.Runtime != "", fmt.Sprintf("switch %s: runtime address is required", name))
		if prev, dup := seenIDs[sw.ID]; dup {
			v.AddErrorf("switch %s: id %d already used by %s", name, sw.ID, prev)
		} else {
			seenIDs[sw.ID] = name
		}
	}

	for i, l := range tf.Links {
		if _, ok := tf.Switches[l.A]; !ok {
			v.AddErrorf("link %d: unknown switch %q", i, l.A)
		}
		if _, ok := tf.Switches[l.B]; !ok {
			v.AddErrorf("link %d: unknown switch %q", i, l.B)
		}
		v.Add(l.A != l.B, fmt.Sprintf("link %d: self-loop at %s", i, l.A))
		v.Add(l.APort > 0 && l.BPort > 0, fmt.Sprintf("link %d (%s-%s): ports must be positive", i, l.A, l.B))
		v.Add(l.Cost >= 0, fmt.Sprintf("link %d (%s-%s): cost must not be negative", i, l.A, l.B))
	}

	for name, hb := range tf.Hosts {
		if _, ok := tf.Switches[hb.Switch]; !ok {
			v.AddErrorf("host %s: unknown switch %q", name, hb.Switch)
		}
		v.Add(hb.Subnet != "", fmt.Sprintf("host %s: subnet is required", name))
		if hb.Subnet != "" {
			if _, err := util.ParseSubnet(hb.Subnet); err != nil {
				v.AddErrorf("host %s: %v", name, err)
			} else if hb.Gateway != "" && !util.AddrInSubnet(hb.Gateway, hb.Subnet) {
				v.AddErrorf("host %s: gateway %s outside subnet %s", name, hb.Gateway, hb.Subnet)
			}
		}
		v.Add(hb.Port > 0, fmt.Sprintf("host %s: port must be positive", name))
		v.Add(hb.MAC != "", fmt.Sprintf("host %s: mac is required", name))
		if hb.MAC != "" && !util.ValidMAC(hb.MAC) {
			v.AddErrorf("host %s: invalid mac %q", name, hb.MAC)
		}
	}

	return v.Build()
}

// validateGraph checks invariants that only hold on the assembled graph:
// no two edges from one switch may share a local port, and host attachment
// ports must not collide with link ports.
func validateGraph(t *Topology) error {
	var v util.ValidationBuilder

	for sw, adj := range t.graph {
		used := make(map[int]string)
		for neighbor, e := range adj {
			if prev, dup := used[e.LocalPort]; dup {
				v.AddErrorf("switch %s: local port %d used for both %s and %s",
					sw, e.LocalPort, prev, neighbor)
			} else {
				used[e.LocalPort] = neighbor
			}
		}
		for _, hb := range t.hosts {
			if hb.Switch != sw {
				continue
			}
			if prev, dup := used[hb.Port]; dup {
				v.AddErrorf("switch %s: host port %d collides with link to %s",
					sw, hb.Port, prev)
			}
		}
	}

	return v.Build()
}
