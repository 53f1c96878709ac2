package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/flowplane-net/flowplane/pkg/device"
	"github.com/flowplane-net/flowplane/pkg/monitor"
	"github.com/flowplane-net/flowplane/pkg/util"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor [switch...]",
	Short: "Poll per-port byte counters",
	Long: `Poll the per-port byte counters of switch runtimes at a fixed interval.

Counters are reset after each read so every snapshot shows bytes forwarded
during one interval. A failed read marks that port stale rather than
reporting a false zero. Runs until interrupted.

Examples:
  flowplane monitor                        # All switches, default interval
  flowplane monitor s1 s2 --interval 2s
  flowplane monitor --no-reset             # Cumulative counters`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		switches := args
		if len(switches) == 0 {
			switches = topo.SwitchNames()
		}
		return runMonitor(ctx, switches)
	},
}

func init() {
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 0, "Polling interval")
	monitorCmd.Flags().BoolVar(&noReset, "no-reset", false, "Keep byte counters across polls instead of resetting")
	monitorCmd.Flags().Uint64Var(&thresholdBytes, "threshold", 0, "Adaptive rerouting threshold in bytes")
}

// runMonitor connects to the named switches and polls until ctx is done.
// Shared by the monitor command and program --monitor.
func runMonitor(ctx context.Context, switches []string) error {
	opts, err := connectOptions()
	if err != nil {
		return err
	}

	clients := make(map[string]device.RuntimeClient, len(switches))
	defer func() {
		for _, c := range clients {
			c.Close()
		}
	}()
	for _, sw := range switches {
		addr, ok := topo.RuntimeAddr(sw)
		if !ok {
			return fmt.Errorf("%w: switch %s", util.ErrNotFound, sw)
		}
		dev, err := device.Connect(ctx, sw, addr, opts)
		if err != nil {
			return fmt.Errorf("connecting to %s: %w", sw, err)
		}
		clients[sw] = dev
	}

	mon := monitor.New(topo, clients, monitor.Options{
		Interval:       monitorInterval,
		Reset:          !noReset,
		ThresholdBytes: thresholdBytes,
		OnSnapshot: func(s *monitor.Snapshot) {
			fmt.Printf("[%s]\n%s", s.Time.Format("15:04:05"), s.Format())
		},
	})
	fmt.Printf("Polling %d switch(es), interrupt to stop\n", len(clients))
	return mon.Run(ctx)
}
