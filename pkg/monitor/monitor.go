// Package monitor implements the counter-driven utilization loop: it polls
// per-port byte counters from every switch on a fixed interval, reports each
// snapshot, and optionally resets the counters after reading.
package monitor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/flowplane-net/flowplane/pkg/device"
	"github.com/flowplane-net/flowplane/pkg/provision"
	"github.com/flowplane-net/flowplane/pkg/topology"
	"github.com/flowplane-net/flowplane/pkg/util"
)

// DefaultInterval is the polling interval when none is configured.
const DefaultInterval = 5 * time.Second

// PortReading is one polled counter value. Stale marks a reading whose
// poll failed: the value is unusable, not zero traffic.
type PortReading struct {
	Bytes uint64
	Stale bool
}

// Snapshot is one polling pass across all monitored switches.
type Snapshot struct {
	Time  time.Time
	Ports map[string]map[int]PortReading // switch -> port -> reading
}

// Format renders the snapshot sorted by switch then port.
func (s *Snapshot) Format() string {
	var b strings.Builder
	switches := make([]string, 0, len(s.Ports))
	for sw := range s.Ports {
		switches = append(switches, sw)
	}
	sort.Strings(switches)

	for _, sw := range switches {
		readings := s.Ports[sw]
		ports := make([]int, 0, len(readings))
		for p := range readings {
			ports = append(ports, p)
		}
		sort.Ints(ports)

		parts := make([]string, 0, len(ports))
		for _, p := range ports {
			r := readings[p]
			if r.Stale {
				parts = append(parts, fmt.Sprintf("p%d=?", p))
			} else {
				parts = append(parts, fmt.Sprintf("p%d=%d", p, r.Bytes))
			}
		}
		fmt.Fprintf(&b, "  %s: %s\n", sw, strings.Join(parts, ", "))
	}
	return b.String()
}

// Options configures a Monitor.
type Options struct {
	// Interval between polling passes. Zero means DefaultInterval.
	Interval time.Duration

	// Reset zeroes every switch's byte counters after each read pass.
	// Traffic arriving between read and reset goes unattributed; that is
	// acceptable for monitoring, not for byte-exact accounting.
	Reset bool

	// ThresholdBytes is written once to every switch's load_threshold at
	// startup. Zero means provision.DefaultThresholdBytes.
	ThresholdBytes uint64

	// OnSnapshot, when set, receives each snapshot instead of the default
	// log line.
	OnSnapshot func(*Snapshot)
}

// Monitor polls a set of already-connected switch runtimes. It does not own
// the connections; the caller closes them after Run returns.
type Monitor struct {
	topo    *topology.Topology
	clients map[string]device.RuntimeClient
	opts    Options
}

// New creates a Monitor over the given runtime channels.
func New(topo *topology.Topology, clients map[string]device.RuntimeClient, opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.ThresholdBytes == 0 {
		opts.ThresholdBytes = provision.DefaultThresholdBytes
	}
	return &Monitor{topo: topo, clients: clients, opts: opts}
}

// Run writes the adaptive threshold once, then polls until the context is
// cancelled. Poll failures degrade single readings to stale; they never
// abort the loop.
func (m *Monitor) Run(ctx context.Context) error {
	m.writeThresholds(ctx)

	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		snap := m.poll(ctx)
		if m.opts.OnSnapshot != nil {
			m.opts.OnSnapshot(snap)
		} else {
			util.Infof("Port byte counters:\n%s", snap.Format())
		}
		if m.opts.Reset {
			m.resetCounters(ctx)
		}

		select {
		case <-ctx.Done():
			util.Info("Monitoring stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// writeThresholds performs the one-time load_threshold write. This register
// is the only coupling to the data plane's rerouting decision: the pipeline
// compares it against the same byte counters this loop reads.
func (m *Monitor) writeThresholds(ctx context.Context) {
	for _, sw := range m.switchNames() {
		client := m.clients[sw]
		if err := client.WriteRegister(ctx, provision.RegisterLoadThreshold, 0, m.opts.ThresholdBytes); err != nil {
			util.WithSwitch(sw).Warnf("Writing load threshold: %v", err)
			continue
		}
		util.WithSwitch(sw).Infof("Load threshold set to %d bytes", m.opts.ThresholdBytes)
	}
}

// poll reads every switch concurrently; per-switch latency must not block
// the others.
func (m *Monitor) poll(ctx context.Context) *Snapshot {
	snap := &Snapshot{
		Time:  time.Now(),
		Ports: make(map[string]map[int]PortReading, len(m.clients)),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, sw := range m.switchNames() {
		sw := sw
		wg.Add(1)
		go func() {
			defer wg.Done()
			readings := m.pollSwitch(ctx, sw)
			mu.Lock()
			snap.Ports[sw] = readings
			mu.Unlock()
		}()
	}
	wg.Wait()

	return snap
}

func (m *Monitor) pollSwitch(ctx context.Context, sw string) map[int]PortReading {
	client := m.clients[sw]
	readings := make(map[int]PortReading)
	for _, port := range m.topo.Ports(sw) {
		val, err := client.ReadRegister(ctx, provision.RegisterByteCounter, port)
		if err != nil {
			util.WithSwitch(sw).Warnf("Reading byte_counter[%d]: %v", port, err)
			readings[port] = PortReading{Stale: true}
			continue
		}
		readings[port] = PortReading{Bytes: val}
	}
	return readings
}

func (m *Monitor) resetCounters(ctx context.Context) {
	for _, sw := range m.switchNames() {
		if err := m.clients[sw].ResetRegister(ctx, provision.RegisterByteCounter); err != nil {
			util.WithSwitch(sw).Warnf("Resetting byte_counter: %v", err)
		}
	}
}

func (m *Monitor) switchNames() []string {
	names := make([]string, 0, len(m.clients))
	for sw := range m.clients {
		names = append(names, sw)
	}
	sort.Strings(names)
	return names
}
