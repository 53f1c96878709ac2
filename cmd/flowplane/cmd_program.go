package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/flowplane-net/flowplane/pkg/audit"
	"github.com/flowplane-net/flowplane/pkg/cli"
	"github.com/flowplane-net/flowplane/pkg/forwarding"
	"github.com/flowplane-net/flowplane/pkg/provision"
	"github.com/flowplane-net/flowplane/pkg/routing"
	"github.com/flowplane-net/flowplane/pkg/util"
)

var (
	thresholdBytes  uint64
	workers         int
	monitorAfter    bool
	monitorInterval time.Duration
	noReset         bool
)

var programCmd = &cobra.Command{
	Use:   "program [switch...]",
	Short: "Derive forwarding state and program switch runtimes",
	Long: `Derive the complete forwarding state of every switch and program it.

For each switch, minimal-cost path sets are computed to every other switch,
reduced to ECMP next-hop sets, and expanded into route entries, ECMP groups,
alternate next hops, and source MAC rewrites. State derivation is pure: any
error aborts the session before a single command reaches a switch.

Without args: programs ALL switches in the topology
With args:    programs the named switches only
Without -x:   dry-run (shows derived forwarding state)
With -x:      execute (clear and reprogram each switch)

Examples:
  flowplane program                 # Dry-run all switches
  flowplane program s1 s2           # Dry-run two switches
  flowplane program -x              # Program all switches
  flowplane program -x --threshold 800000
  flowplane program -x --monitor    # Program, then poll counters`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := connectOptions()
		if err != nil {
			return err
		}

		prov := provision.NewProvisioner(topo, provision.Options{
			ThresholdBytes: thresholdBytes,
			Workers:        workers,
			Connect:        provision.RuntimeConnector(opts),
		})

		switches := args
		if len(switches) == 0 {
			switches = topo.SwitchNames()
		}

		if !executeMode {
			plans, err := prov.BuildPlans(switches)
			if err != nil {
				return err
			}
			printPlans(plans)
			printDryRunNotice()
			return nil
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		fmt.Printf("Programming %d switch(es)\n\n", len(switches))
		start := time.Now()
		result, err := prov.Run(ctx, switches)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		for _, sr := range result.Switches {
			ev := audit.NewEvent(auditUser(), sr.Switch, audit.OpProgram).
				WithState(sr.Entries, sr.Groups, thresholdBytes).
				WithDuration(elapsed)
			if sr.Err != nil {
				ev.WithError(sr.Err)
			} else {
				ev.WithSuccess()
			}
			if err := audit.Log(ev); err != nil {
				util.Warnf("Recording audit event for %s: %v", sr.Switch, err)
			}
		}

		for _, sr := range result.Switches {
			if sr.Err != nil {
				fmt.Printf("  %s %s: %v\n", cli.DotPad(sr.Switch, 12), red("FAILED"), sr.Err)
				continue
			}
			fmt.Printf("  %s %s (%d entries, %d groups)\n",
				cli.DotPad(sr.Switch, 12), green("OK"), sr.Entries, sr.Groups)
			for _, subnet := range sr.Unreachable {
				fmt.Printf("    %s unreachable subnet %s\n", yellow("WARN"), subnet)
			}
			for _, c := range sr.Conflicts {
				fmt.Printf("    %s %s\n", yellow("WARN"), c.Error())
			}
		}

		if failed := result.Failed(); len(failed) > 0 {
			return fmt.Errorf("programming failed on: %s", strings.Join(failed, ", "))
		}

		if monitorAfter {
			fmt.Println()
			return runMonitor(ctx, switches)
		}
		return nil
	},
}

func init() {
	programCmd.Flags().BoolVarP(&executeMode, "execute", "x", false, "Execute (default is dry-run)")
	programCmd.Flags().Uint64Var(&thresholdBytes, "threshold", provision.DefaultThresholdBytes, "Adaptive rerouting threshold in bytes")
	programCmd.Flags().IntVar(&workers, "workers", provision.DefaultWorkers, "Concurrent switch programming limit")
	programCmd.Flags().BoolVar(&monitorAfter, "monitor", false, "Poll byte counters after programming")
	programCmd.Flags().DurationVar(&monitorInterval, "monitor-interval", 0, "Polling interval when --monitor is set")
	programCmd.Flags().BoolVar(&noReset, "no-reset", false, "Keep byte counters across polls instead of resetting")
}

// printPlans renders derived forwarding state, one section per switch.
func printPlans(plans map[string]*forwarding.Plan) {
	names := make([]string, 0, len(plans))
	for name := range plans {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		plan := plans[name]
		fmt.Printf("=== %s ===\n", bold(name))

		tbl := cli.NewTable("PREFIX", "KIND", "TARGET").WithPrefix("  ")
		for _, e := range plan.Entries {
			tbl.Row(e.Prefix, e.Kind.String(), entryTarget(e))
		}
		tbl.Flush()

		for _, g := range plan.Groups {
			members := make([]string, len(g.Members))
			for i, m := range g.Members {
				members[i] = fmt.Sprintf("%d:port %d (%s)", i, m.Port, m.MAC)
			}
			fmt.Printf("  group %d: %s\n", g.ID, strings.Join(members, ", "))
		}
		for _, port := range sortedPorts(plan.AltHops) {
			alt := plan.AltHops[port]
			fmt.Printf("  alt port %d -> port %d (%s)\n", port, alt.Port, alt.MAC)
		}
		for _, subnet := range plan.Unreachable {
			fmt.Printf("  %s unreachable subnet %s\n", yellow("WARN"), subnet)
		}
		for _, c := range plan.Conflicts {
			fmt.Printf("  %s %s\n", yellow("WARN"), c.Error())
		}
		fmt.Println()
	}
}

func entryTarget(e forwarding.Entry) string {
	switch e.Kind {
	case forwarding.EntryLocal:
		return fmt.Sprintf("port %d (%s)", e.HostPort, e.HostMAC)
	case forwarding.EntryDirect:
		return fmt.Sprintf("port %d (%s)", e.NextHop.Port, e.NextHop.MAC)
	case forwarding.EntryECMP:
		return "group " + strconv.Itoa(e.GroupID)
	}
	return ""
}

func sortedPorts(m map[int]routing.NextHop) []int {
	ports := make([]int, 0, len(m))
	for p := range m {
		ports = append(ports, p)
	}
	sort.Ints(ports)
	return ports
}
