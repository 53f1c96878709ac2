package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowplane-net/flowplane/pkg/cli"
	"github.com/flowplane-net/flowplane/pkg/routing"
	"github.com/flowplane-net/flowplane/pkg/util"
)

var pathsCmd = &cobra.Command{
	Use:   "paths [source...]",
	Short: "Show minimal-cost path sets and next hops",
	Long: `Show every minimal-cost path from a source switch, grouped by
destination, with the ECMP next hops each destination resolves to.

Without args: shows path sets from every switch
With args:    shows path sets from the named switches only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sources := args
		if len(sources) == 0 {
			sources = topo.SwitchNames()
		}
		for _, src := range sources {
			if !topo.HasSwitch(src) {
				return fmt.Errorf("%w: switch %s", util.ErrNotFound, src)
			}
		}

		g := topo.Graph()
		for _, src := range sources {
			paths := routing.ComputeAllPaths(g, src)
			hops, err := routing.ResolveNextHops(topo, src, paths)
			if err != nil {
				return err
			}

			fmt.Printf("=== %s ===\n", bold(src))
			dests := make([]string, 0, len(paths))
			for dst := range paths {
				dests = append(dests, dst)
			}
			sort.Strings(dests)

			tbl := cli.NewTable("DEST", "COST", "PATHS", "NEXT HOPS").WithPrefix("  ")
			for _, dst := range dests {
				if dst == src {
					continue
				}
				set := paths[dst]
				rendered := make([]string, len(set))
				for i, p := range set {
					rendered[i] = strings.Join(p, ">")
				}
				hopParts := make([]string, len(hops[dst]))
				for i, h := range hops[dst] {
					hopParts[i] = "port " + strconv.Itoa(h.Port)
				}
				tbl.Row(dst,
					strconv.Itoa(set[0].Cost(g)),
					strings.Join(rendered, " "),
					strings.Join(hopParts, ", "))
			}
			tbl.Flush()

			// Switches absent from the path set are unreachable
			for _, name := range topo.SwitchNames() {
				if name == src {
					continue
				}
				if _, ok := paths[name]; !ok {
					fmt.Printf("  %s %s unreachable\n", yellow("WARN"), name)
				}
			}
			fmt.Println()
		}
		return nil
	},
}
