// Package testutil provides shared fixtures for flowplane tests: the
// canonical six-switch testbed topology and an in-memory switch runtime.
package testutil

import (
	"testing"

	"github.com/flowplane-net/flowplane/pkg/topology"
)

// SixSwitchYAML is the canonical testbed: four edge switches (s1, s2, s5, s6)
// each hosting one subnet, two core switches (s3, s4), all links cost 1.
//
//	h1 -- s1 ========= s2 -- h2
//	       |  \      /  |
//	       |   s3--s4   |
//	       |  /      \  |
//	h3 -- s5 ========= s6 -- h4
const SixSwitchYAML = `
name: adaptive-6sw
switches:
  s1: {id: 1, runtime: "127.0.0.1:9090"}
  s2: {id: 2, runtime: "127.0.0.1:9091"}
  s3: {id: 3, runtime: "127.0.0.1:9092"}
  s4: {id: 4, runtime: "127.0.0.1:9093"}
  s5: {id: 5, runtime: "127.0.0.1:9094"}
  s6: {id: 6, runtime: "127.0.0.1:9095"}
links:
  - {a: s1, a_port: 2, b: s2, b_port: 2}
  - {a: s1, a_port: 3, b: s3, b_port: 1}
  - {a: s1, a_port: 4, b: s5, b_port: 2}
  - {a: s2, a_port: 3, b: s4, b_port: 2}
  - {a: s2, a_port: 4, b: s6, b_port: 3}
  - {a: s3, a_port: 2, b: s4, b_port: 1}
  - {a: s3, a_port: 3, b: s5, b_port: 4}
  - {a: s4, a_port: 3, b: s6, b_port: 4}
  - {a: s5, a_port: 3, b: s6, b_port: 2}
hosts:
  h1: {subnet: 10.0.1.0/24, switch: s1, port: 1, mac: "00:00:00:00:01:01", gateway: 10.0.1.254}
  h2: {subnet: 10.0.2.0/24, switch: s2, port: 1, mac: "00:00:00:00:02:01", gateway: 10.0.2.254}
  h3: {subnet: 10.0.5.0/24, switch: s5, port: 1, mac: "00:00:00:00:05:01", gateway: 10.0.5.254}
  h4: {subnet: 10.0.6.0/24, switch: s6, port: 1, mac: "00:00:00:00:06:01", gateway: 10.0.6.254}
`

// SixSwitchTopology parses SixSwitchYAML, failing the test on error.
func SixSwitchTopology(t *testing.T) *topology.Topology {
	t.Helper()
	topo, err := topology.Parse([]byte(SixSwitchYAML))
	if err != nil {
		t.Fatalf("parsing six-switch fixture: %v", err)
	}
	return topo
}
