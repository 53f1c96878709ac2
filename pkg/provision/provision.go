package provision

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/flowplane-net/flowplane/pkg/device"
	"github.com/flowplane-net/flowplane/pkg/forwarding"
	"github.com/flowplane-net/flowplane/pkg/routing"
	"github.com/flowplane-net/flowplane/pkg/topology"
	"github.com/flowplane-net/flowplane/pkg/util"
)

// DefaultThresholdBytes is the adaptive rerouting threshold written to
// load_threshold when none is configured.
const DefaultThresholdBytes = 500000

// DefaultWorkers bounds concurrent switch programming.
const DefaultWorkers = 4

// Connector opens the control channel to one switch runtime.
type Connector func(ctx context.Context, name, addr string) (device.RuntimeClient, error)

// RuntimeConnector returns the production Connector, dialing switch runtimes
// directly or through SSH tunnels.
func RuntimeConnector(opts device.ConnectOptions) Connector {
	return func(ctx context.Context, name, addr string) (device.RuntimeClient, error) {
		return device.Connect(ctx, name, addr, opts)
	}
}

// Options configures a programming session.
type Options struct {
	// ThresholdBytes is written to load_threshold[0] on every programmed
	// switch. Zero means DefaultThresholdBytes.
	ThresholdBytes uint64

	// Workers bounds how many switches are programmed concurrently.
	// Zero means DefaultWorkers.
	Workers int

	// Connect opens runtime channels. Nil means RuntimeConnector with
	// direct dialing.
	Connect Connector
}

// Provisioner runs build-and-program sessions against one topology.
type Provisioner struct {
	topo *topology.Topology
	opts Options
}

// NewProvisioner creates a Provisioner, applying option defaults.
func NewProvisioner(topo *topology.Topology, opts Options) *Provisioner {
	if opts.ThresholdBytes == 0 {
		opts.ThresholdBytes = DefaultThresholdBytes
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Connect == nil {
		opts.Connect = RuntimeConnector(device.ConnectOptions{})
	}
	return &Provisioner{topo: topo, opts: opts}
}

// SwitchResult is the outcome of programming one switch.
type SwitchResult struct {
	Switch      string
	Entries     int
	Groups      int
	Unreachable []string
	Conflicts   []*util.InvariantError
	Err         error
}

// Result is the outcome of one session across all switches.
type Result struct {
	Switches []SwitchResult
}

// Failed returns the names of switches whose programming failed.
func (r *Result) Failed() []string {
	var out []string
	for _, sr := range r.Switches {
		if sr.Err != nil {
			out = append(out, sr.Switch)
		}
	}
	return out
}

// BuildPlans derives the forwarding plan of every named switch. This is the
// pure phase: group IDs are assigned here and the I/O phase never touches
// them. Any failure here aborts the session before a single command is sent.
func (p *Provisioner) BuildPlans(switches []string) (map[string]*forwarding.Plan, error) {
	plans := make(map[string]*forwarding.Plan, len(switches))
	for _, sw := range switches {
		if !p.topo.HasSwitch(sw) {
			return nil, fmt.Errorf("%w: switch %q not in topology", util.ErrNotFound, sw)
		}
		paths := routing.ComputeAllPaths(p.topo.Graph(), sw)
		hops, err := routing.ResolveNextHops(p.topo, sw, paths)
		if err != nil {
			return nil, fmt.Errorf("resolving next hops for %s: %w", sw, err)
		}
		plan, err := forwarding.NewBuilder(sw).Build(p.topo, hops)
		if err != nil {
			return nil, fmt.Errorf("building plan for %s: %w", sw, err)
		}
		plans[sw] = plan
	}
	return plans, nil
}

// Run builds and programs the named switches (all switches when names is
// empty). Switches are independent, so they are programmed in parallel;
// within one switch, clearing strictly precedes adding. A failure aborts
// only that switch's session, and the Result reports which switches
// succeeded.
func (p *Provisioner) Run(ctx context.Context, switches []string) (*Result, error) {
	if len(switches) == 0 {
		switches = p.topo.SwitchNames()
	}

	plans, err := p.BuildPlans(switches)
	if err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(p.opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]SwitchResult, len(switches))
	var wg sync.WaitGroup
	for i, sw := range switches {
		i, sw := i, sw
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			results[i] = p.programSwitch(ctx, sw, plans[sw])
		}); err != nil {
			wg.Done()
			results[i] = SwitchResult{Switch: sw, Err: fmt.Errorf("submitting to pool: %w", err)}
		}
	}
	wg.Wait()

	res := &Result{Switches: results}
	sort.Slice(res.Switches, func(i, j int) bool { return res.Switches[i].Switch < res.Switches[j].Switch })
	return res, nil
}

// programSwitch installs one plan on one switch.
func (p *Provisioner) programSwitch(ctx context.Context, sw string, plan *forwarding.Plan) SwitchResult {
	log := util.WithSwitch(sw)
	res := SwitchResult{
		Switch:      sw,
		Entries:     plan.EntryCount(),
		Groups:      len(plan.Groups),
		Unreachable: plan.Unreachable,
		Conflicts:   plan.Conflicts,
	}

	for _, subnet := range plan.Unreachable {
		log.Warnf("No path to subnet %s, left unprogrammed", subnet)
	}
	for _, c := range plan.Conflicts {
		log.Warnf("Alt-hop conflict: %v", c)
	}

	addr, ok := p.topo.RuntimeAddr(sw)
	if !ok {
		res.Err = fmt.Errorf("%w: no runtime address for %s", util.ErrNotFound, sw)
		return res
	}

	client, err := p.opts.Connect(ctx, sw, addr)
	if err != nil {
		res.Err = err
		return res
	}
	defer client.Close()

	if err := installPlan(ctx, client, plan); err != nil {
		res.Err = err
		return res
	}

	if err := client.WriteRegister(ctx, RegisterLoadThreshold, 0, p.opts.ThresholdBytes); err != nil {
		res.Err = err
		return res
	}

	log.Infof("Programmed: %d entries, %d groups, threshold %d bytes",
		res.Entries, res.Groups, p.opts.ThresholdBytes)
	return res
}

// installPlan issues the table commands for one plan in deterministic order:
// clear everything, routes, groups and members, alternates, SMAC rewrites.
// The first failed command aborts the switch; partially-programmed state is
// never silently extended.
func installPlan(ctx context.Context, client device.RuntimeClient, plan *forwarding.Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, table := range AllTables {
		if err := client.ClearTable(ctx, table); err != nil {
			return err
		}
	}

	for _, e := range plan.Entries {
		var err error
		switch e.Kind {
		case forwarding.EntryLocal:
			err = client.AddEntry(ctx, TableIPv4LPM, ActionSetNextHop,
				[]string{e.Prefix}, []string{e.HostMAC, strconv.Itoa(e.HostPort)})
		case forwarding.EntryDirect:
			err = client.AddEntry(ctx, TableIPv4LPM, ActionSetNextHop,
				[]string{e.Prefix}, []string{e.NextHop.MAC, strconv.Itoa(e.NextHop.Port)})
		case forwarding.EntryECMP:
			err = client.AddEntry(ctx, TableIPv4LPM, ActionSetECMPGroup,
				[]string{e.Prefix}, []string{strconv.Itoa(e.GroupID)})
		default:
			err = fmt.Errorf("unknown entry kind %v", e.Kind)
		}
		if err != nil {
			return err
		}
	}

	for _, g := range plan.Groups {
		gid := strconv.Itoa(g.ID)
		if err := client.AddEntry(ctx, TableECMPGroup, ActionSetECMPInfo,
			[]string{gid}, []string{strconv.Itoa(len(g.Members)), "0"}); err != nil {
			return err
		}
		for idx, m := range g.Members {
			if err := client.AddEntry(ctx, TableECMPNextHop, ActionSetECMPNextHop,
				[]string{gid, strconv.Itoa(idx)}, []string{m.MAC, strconv.Itoa(m.Port)}); err != nil {
				return err
			}
		}
	}

	for _, port := range sortedKeys(plan.AltHops) {
		alt := plan.AltHops[port]
		if err := client.AddEntry(ctx, TableAltNextHop, ActionSetAltNextHop,
			[]string{strconv.Itoa(port)}, []string{alt.MAC, strconv.Itoa(alt.Port)}); err != nil {
			return err
		}
	}

	for _, port := range sortedSMACKeys(plan.SMACRewrites) {
		if err := client.AddEntry(ctx, TableSMACRewrite, ActionSetSMAC,
			[]string{strconv.Itoa(port)}, []string{plan.SMACRewrites[port]}); err != nil {
			return err
		}
	}

	return nil
}

func sortedKeys(m map[int]routing.NextHop) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func sortedSMACKeys(m map[int]string) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
