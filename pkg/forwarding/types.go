// Package forwarding derives the concrete forwarding state for one switch
// from its next-hop sets: route entries, ECMP group descriptors, alternate
// next hops for adaptive rerouting, and source-MAC rewrites.
package forwarding

import (
	"fmt"

	"github.com/flowplane-net/flowplane/pkg/routing"
	"github.com/flowplane-net/flowplane/pkg/util"
)

// EntryKind discriminates the route entry variants.
type EntryKind int

const (
	// EntryLocal forwards a subnet hosted on this switch straight to the host port.
	EntryLocal EntryKind = iota
	// EntryDirect forwards via the single next hop.
	EntryDirect
	// EntryECMP forwards via an ECMP group.
	EntryECMP
)

func (k EntryKind) String() string {
	switch k {
	case EntryLocal:
		return "local"
	case EntryDirect:
		return "direct"
	case EntryECMP:
		return "ecmp"
	default:
		return fmt.Sprintf("EntryKind(%d)", int(k))
	}
}

// Entry is one route entry. The populated fields depend on Kind.
type Entry struct {
	Kind   EntryKind
	Prefix string

	// EntryLocal
	HostMAC  string
	HostPort int

	// EntryDirect
	NextHop routing.NextHop

	// EntryECMP
	GroupID int
}

// Group is an ECMP group: an ID unique within one programming session and
// its members in the resolver's deterministic order. Member index is
// observable state on the switch.
type Group struct {
	ID      int
	Members []routing.NextHop
}

// Plan is the complete forwarding state for one switch, ready to install.
// Building it performs no I/O.
type Plan struct {
	Switch  string
	Entries []Entry
	Groups  []Group

	// AltHops maps each ECMP member port to its alternate next hop: the
	// cyclic successor within the member's group. Ports of single-hop
	// routes have no entry (no rerouting target).
	AltHops map[int]routing.NextHop

	// SMACRewrites maps each egress port to the source MAC the data plane
	// stamps on outgoing frames.
	SMACRewrites map[int]string

	// Unreachable lists subnets skipped because no path exists to their
	// switch. Reported, not fatal.
	Unreachable []string

	// Conflicts lists alt-hop assignments that could not be honored because
	// the port already carries a different alternate from an earlier group.
	// The first assignment stays in effect; the conflict is surfaced instead
	// of silently overwritten.
	Conflicts []*util.InvariantError
}

// EntryCount returns the number of route entries in the plan.
func (p *Plan) EntryCount() int {
	return len(p.Entries)
}
