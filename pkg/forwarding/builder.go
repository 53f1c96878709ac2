package forwarding

import (
	"fmt"

	"github.com/flowplane-net/flowplane/pkg/routing"
	"github.com/flowplane-net/flowplane/pkg/topology"
	"github.com/flowplane-net/flowplane/pkg/util"
)

// Builder derives a Plan for one switch. Each Builder belongs to one
// programming session; group IDs never leak between sessions because the
// counter lives here, not in package state.
type Builder struct {
	switchName string
}

// NewBuilder creates a builder for the named switch.
func NewBuilder(switchName string) *Builder {
	return &Builder{switchName: switchName}
}

// Build walks every known subnet in sorted order and emits its forwarding
// state. Identical inputs produce bit-identical plans.
func (b *Builder) Build(topo *topology.Topology, nextHops routing.NextHopSet) (*Plan, error) {
	plan := &Plan{
		Switch:       b.switchName,
		AltHops:      make(map[int]routing.NextHop),
		SMACRewrites: make(map[int]string),
	}

	nextGroupID := 1
	altOwner := make(map[int]int) // member port -> owning group, for collision detection

	for _, hb := range topo.Bindings() {
		switch {
		case hb.Switch == b.switchName:
			plan.Entries = append(plan.Entries, Entry{
				Kind:     EntryLocal,
				Prefix:   hb.Subnet,
				HostMAC:  hb.MAC,
				HostPort: hb.Port,
			})

		default:
			hops := nextHops[hb.Switch]
			if len(hops) == 0 {
				plan.Unreachable = append(plan.Unreachable, hb.Subnet)
				continue
			}
			if len(hops) == 1 {
				plan.Entries = append(plan.Entries, Entry{
					Kind:    EntryDirect,
					Prefix:  hb.Subnet,
					NextHop: hops[0],
				})
				continue
			}

			gid := nextGroupID
			nextGroupID++
			plan.Entries = append(plan.Entries, Entry{
				Kind:    EntryECMP,
				Prefix:  hb.Subnet,
				GroupID: gid,
			})
			plan.Groups = append(plan.Groups, Group{ID: gid, Members: hops})

			// Alternate next hop: the cyclic successor by member index.
			// On transit switches a port can belong to the groups of
			// several destinations. An identical alternate is fine; a
			// differing one is a reported conflict, and the first
			// assignment stays in effect.
			for i, m := range hops {
				alt := hops[(i+1)%len(hops)]
				if owner, claimed := altOwner[m.Port]; claimed {
					if plan.AltHops[m.Port] != alt {
						plan.Conflicts = append(plan.Conflicts, &util.InvariantError{
							Switch:    b.switchName,
							Invariant: "port claimed by two ECMP groups with different alternates",
							Details: fmt.Sprintf("port %d: keeping alternate from group %d, ignoring group %d",
								m.Port, owner, gid),
						})
					}
					continue
				}
				altOwner[m.Port] = gid
				plan.AltHops[m.Port] = alt
			}
		}
	}

	// Source-MAC rewrite per egress port: every inter-switch link port,
	// plus the host-facing ports on edge switches.
	for _, neighbor := range topo.Graph().Neighbors(b.switchName) {
		e, _ := topo.Graph().Edge(b.switchName, neighbor)
		mac, err := topo.PortMAC(b.switchName, e.LocalPort)
		if err != nil {
			return nil, err
		}
		plan.SMACRewrites[e.LocalPort] = mac
	}
	for _, hb := range topo.BindingsOn(b.switchName) {
		mac, err := topo.PortMAC(b.switchName, hb.Port)
		if err != nil {
			return nil, err
		}
		plan.SMACRewrites[hb.Port] = mac
	}

	return plan, nil
}
