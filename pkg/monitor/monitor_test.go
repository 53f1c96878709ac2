package monitor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/flowplane-net/flowplane/internal/testutil"
	"github.com/flowplane-net/flowplane/pkg/device"
	"github.com/flowplane-net/flowplane/pkg/provision"
)

func fakeClients(switches ...string) (map[string]*testutil.FakeRuntime, map[string]device.RuntimeClient) {
	fakes := make(map[string]*testutil.FakeRuntime, len(switches))
	clients := make(map[string]device.RuntimeClient, len(switches))
	for _, sw := range switches {
		f := testutil.NewFakeRuntime()
		fakes[sw] = f
		clients[sw] = f
	}
	return fakes, clients
}

// runTicks runs the monitor until want snapshots arrived, then cancels.
func runTicks(t *testing.T, m *Monitor, snaps chan *Snapshot, want int) []*Snapshot {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	var got []*Snapshot
	timeout := time.After(5 * time.Second)
	for len(got) < want {
		select {
		case s := <-snaps:
			got = append(got, s)
		case <-timeout:
			t.Fatalf("timed out after %d of %d snapshots", len(got), want)
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
	return got
}

func TestMonitorReadsAllKnownPorts(t *testing.T) {
	topo := testutil.SixSwitchTopology(t)
	fakes, clients := fakeClients("s1", "s3")

	fakes["s1"].SetRegister(provision.RegisterByteCounter, 2, 1500)
	fakes["s1"].SetRegister(provision.RegisterByteCounter, 4, 9000)

	snaps := make(chan *Snapshot, 4)
	m := New(topo, clients, Options{
		Interval:   10 * time.Millisecond,
		OnSnapshot: func(s *Snapshot) { snaps <- s },
	})
	got := runTicks(t, m, snaps, 1)

	s := got[0]
	// s1 is an edge switch: host port 1 plus link ports 2-4.
	if len(s.Ports["s1"]) != 4 {
		t.Errorf("s1 readings = %v, want 4 ports", s.Ports["s1"])
	}
	if r := s.Ports["s1"][2]; r.Bytes != 1500 || r.Stale {
		t.Errorf("s1 port 2 = %+v, want 1500 bytes", r)
	}
	if r := s.Ports["s1"][4]; r.Bytes != 9000 || r.Stale {
		t.Errorf("s1 port 4 = %+v, want 9000 bytes", r)
	}
	// Unseeded counters read as zero, not stale.
	if r := s.Ports["s1"][1]; r.Bytes != 0 || r.Stale {
		t.Errorf("s1 port 1 = %+v, want zero reading", r)
	}
	// s3 is a core switch: three link ports.
	if len(s.Ports["s3"]) != 3 {
		t.Errorf("s3 readings = %v, want 3 ports", s.Ports["s3"])
	}
}

func TestMonitorWritesThresholdOnce(t *testing.T) {
	topo := testutil.SixSwitchTopology(t)
	fakes, clients := fakeClients("s1", "s2")

	snaps := make(chan *Snapshot, 8)
	m := New(topo, clients, Options{
		Interval:       10 * time.Millisecond,
		ThresholdBytes: 777,
		OnSnapshot:     func(s *Snapshot) { snaps <- s },
	})
	runTicks(t, m, snaps, 3)

	for sw, f := range fakes {
		if got := f.Registers[provision.RegisterLoadThreshold][0]; got != 777 {
			t.Errorf("%s: load_threshold = %d, want 777", sw, got)
		}
		writes := 0
		for _, op := range f.OpLog() {
			if op == "write "+provision.RegisterLoadThreshold {
				writes++
			}
		}
		if writes != 1 {
			t.Errorf("%s: threshold written %d times, want once", sw, writes)
		}
	}
}

func TestMonitorResetsAfterRead(t *testing.T) {
	topo := testutil.SixSwitchTopology(t)
	fakes, clients := fakeClients("s1")

	fakes["s1"].SetRegister(provision.RegisterByteCounter, 2, 42)

	snaps := make(chan *Snapshot, 8)
	m := New(topo, clients, Options{
		Interval:   10 * time.Millisecond,
		Reset:      true,
		OnSnapshot: func(s *Snapshot) { snaps <- s },
	})
	got := runTicks(t, m, snaps, 2)

	if r := got[0].Ports["s1"][2]; r.Bytes != 42 {
		t.Errorf("first tick port 2 = %+v, want 42", r)
	}
	// Counters were reset after the first read.
	if r := got[1].Ports["s1"][2]; r.Bytes != 0 {
		t.Errorf("second tick port 2 = %+v, want 0 after reset", r)
	}

	// Reset follows the reads in the op log.
	ops := fakes["s1"].OpLog()
	sawRead := false
	sawResetAfterRead := false
	for _, op := range ops {
		if op == "read "+provision.RegisterByteCounter {
			sawRead = true
		}
		if sawRead && op == "reset "+provision.RegisterByteCounter {
			sawResetAfterRead = true
			break
		}
	}
	if !sawResetAfterRead {
		t.Errorf("no reset after read in op log: %v", ops)
	}
}

func TestMonitorFailedReadIsStaleNotZero(t *testing.T) {
	topo := testutil.SixSwitchTopology(t)
	fakes, clients := fakeClients("s1", "s2")

	fakes["s2"].FailOn["read:"+provision.RegisterByteCounter] = errors.New("runtime timeout")
	fakes["s1"].SetRegister(provision.RegisterByteCounter, 2, 10)

	snaps := make(chan *Snapshot, 8)
	m := New(topo, clients, Options{
		Interval:   10 * time.Millisecond,
		OnSnapshot: func(s *Snapshot) { snaps <- s },
	})
	// The loop survives the failing switch for multiple ticks.
	got := runTicks(t, m, snaps, 3)

	for i, s := range got {
		for port, r := range s.Ports["s2"] {
			if !r.Stale {
				t.Errorf("tick %d: s2 port %d = %+v, want stale", i, port, r)
			}
		}
		if r := s.Ports["s1"][2]; r.Stale || r.Bytes != 10 {
			t.Errorf("tick %d: healthy switch reading = %+v", i, r)
		}
	}
}

func TestSnapshotFormatSortedAndMarksStale(t *testing.T) {
	s := &Snapshot{
		Time: time.Now(),
		Ports: map[string]map[int]PortReading{
			"s2": {3: {Bytes: 7}, 1: {Stale: true}},
			"s1": {2: {Bytes: 100}},
		},
	}
	out := s.Format()

	if !strings.Contains(out, "s1: p2=100") {
		t.Errorf("missing s1 line: %q", out)
	}
	if !strings.Contains(out, "s2: p1=?, p3=7") {
		t.Errorf("s2 line wrong (want sorted ports, stale marker): %q", out)
	}
	if strings.Index(out, "s1:") > strings.Index(out, "s2:") {
		t.Errorf("switches not sorted: %q", out)
	}
}
