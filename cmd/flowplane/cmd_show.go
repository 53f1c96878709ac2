package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowplane-net/flowplane/pkg/cli"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the loaded topology",
	Long: `Show the loaded topology: switches with their runtime addresses and
ports, fabric links with costs, and host subnet bindings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if topo.Name != "" {
			fmt.Printf("Topology: %s\n\n", bold(topo.Name))
		}

		g := topo.Graph()

		swTbl := cli.NewTable("SWITCH", "ID", "RUNTIME", "PORTS", "ROLE")
		for _, name := range topo.SwitchNames() {
			sw, _ := topo.GetSwitch(name)
			ports := topo.Ports(name)
			parts := make([]string, len(ports))
			for i, p := range ports {
				parts[i] = strconv.Itoa(p)
			}
			role := "transit"
			if topo.IsEdgeSwitch(name) {
				role = "edge"
			}
			swTbl.Row(name, strconv.Itoa(sw.ID), sw.Runtime, strings.Join(parts, ","), role)
		}
		swTbl.Flush()
		fmt.Println()

		linkTbl := cli.NewTable("LINK", "PORTS", "COST")
		seen := make(map[string]bool)
		for _, u := range topo.SwitchNames() {
			for _, v := range g.Neighbors(u) {
				key := u + "|" + v
				if v < u {
					key = v + "|" + u
				}
				if seen[key] {
					continue
				}
				seen[key] = true
				e, _ := g.Edge(u, v)
				linkTbl.Row(
					fmt.Sprintf("%s - %s", u, v),
					fmt.Sprintf("%d - %d", e.LocalPort, e.RemotePort),
					strconv.Itoa(e.Cost))
			}
		}
		linkTbl.Flush()
		fmt.Println()

		hostTbl := cli.NewTable("SUBNET", "SWITCH", "PORT", "MAC", "GATEWAY")
		for _, hb := range topo.Bindings() {
			hostTbl.Row(hb.Subnet, hb.Switch, strconv.Itoa(hb.Port), hb.MAC, hb.Gateway)
		}
		hostTbl.Flush()
		return nil
	},
}
